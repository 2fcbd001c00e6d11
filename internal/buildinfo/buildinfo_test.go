package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrintBuildData(t *testing.T) {
	var buf bytes.Buffer
	PrintBuildData(&buf)
	require.Equal(t, "Build version: N/A\nBuild date: N/A\nBuild commit: N/A\n", buf.String())

	old := buildVersion
	t.Cleanup(func() { buildVersion = old })
	buildVersion = "v1.2.3"

	buf.Reset()
	PrintBuildData(&buf)
	require.Contains(t, buf.String(), "Build version: v1.2.3\n")
}

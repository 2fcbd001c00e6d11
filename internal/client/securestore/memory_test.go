package securestore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.Set(ctx, TokenKey, "a"))
	v, found, err := m.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "a", v)

	boom := errors.New("keychain locked")
	m.FailOn("delete", boom)
	assert.ErrorIs(t, m.Delete(ctx, TokenKey), boom)

	m.FailOn("delete", nil)
	require.NoError(t, m.Delete(ctx, TokenKey))
	_, found, err = m.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.False(t, found)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() Config {
	var c Config
	c.LoadDefaults()
	return c
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://localhost:3001/api/v1", c.AuthAPI)
	assert.Equal(t, "http://localhost:3000/api/v1", c.MediaAPI)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, UploadHTTP, c.UploadBackend)
	assert.NoError(t, c.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	t.Chdir(t.TempDir())

	envFile := writeFile(t, "test.env", `
MEDIASHARE_AUTH_API=http://env-auth
MEDIASHARE_MEDIA_API=http://env-media
MEDIASHARE_REQUEST_TIMEOUT=3s
MEDIASHARE_DEDUPE_OWNER_LOOKUPS=true
`)
	jsonFile := writeFile(t, "cfg.json", `{
  "media_api": "http://json-media",
  "upload_api": "http://json-upload",
  "request_timeout": "7s",
  "requests_per_second": 4
}`)
	t.Setenv("MEDIASHARE_LOG_LEVEL", "debug")

	got, err := Load([]string{"-e", envFile, "-c", jsonFile, "-upload", "http://flag-upload", "-optimistic"})
	require.NoError(t, err)

	want := defaults()
	want.AuthAPI = "http://env-auth"
	want.MediaAPI = "http://json-media"
	want.UploadAPI = "http://flag-upload"
	want.RequestTimeout = 7 * time.Second
	want.RequestsPerSecond = 4
	want.LogLevel = "debug"
	want.DedupeOwnerLookups = true
	want.OptimisticLikes = true

	if diff := cmp.Diff(&want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEnv_ProcessEnvWinsOverFile(t *testing.T) {
	envFile := writeFile(t, "a.env", "MEDIASHARE_AUTH_API=http://file\n")
	t.Setenv("MEDIASHARE_AUTH_API", "http://process")

	lookup, err := envLookup(envFile)
	require.NoError(t, err)

	c := defaults()
	require.NoError(t, parseEnv(&c, lookup))
	assert.Equal(t, "http://process", c.AuthAPI)
}

func TestParseEnv_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"MEDIASHARE_REQUEST_TIMEOUT":     "soon",
		"MEDIASHARE_REQUESTS_PER_SECOND": "fast",
		"MEDIASHARE_OPTIMISTIC_LIKES":    "maybe",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			lookup := func(k string) (string, bool) {
				if k == key {
					return val, true
				}
				return "", false
			}
			c := defaults()
			assert.ErrorContains(t, parseEnv(&c, lookup), key)
		})
	}
}

func TestEnvLookup_MissingExplicitFile(t *testing.T) {
	_, err := envLookup(filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}

func TestEnvLookup_MissingImplicitFileIsFine(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := envLookup("")
	assert.NoError(t, err)
}

func TestParseJSON_Errors(t *testing.T) {
	c := defaults()
	assert.Error(t, parseJSON(&c, filepath.Join(t.TempDir(), "missing.json")))
	assert.Error(t, parseJSON(&c, writeFile(t, "bad.json", "{")))
	assert.NoError(t, parseJSON(&c, ""))
}

func TestParseJSON_IntegerDuration(t *testing.T) {
	c := defaults()
	require.NoError(t, parseJSON(&c, writeFile(t, "c.json", `{"request_timeout": 2000000000}`)))
	assert.Equal(t, 2*time.Second, c.RequestTimeout)
	assert.Equal(t, defaults().AuthAPI, c.AuthAPI)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"no auth", func(c *Config) { c.AuthAPI = "" }, "auth api"},
		{"negative rps", func(c *Config) { c.RequestsPerSecond = -1 }, "requests per second"},
		{"s3 without bucket", func(c *Config) { c.UploadBackend = UploadS3 }, "s3 bucket"},
		{"unknown backend", func(c *Config) { c.UploadBackend = "ftp" }, "unknown upload backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			tt.mutate(&c)
			assert.ErrorContains(t, c.Validate(), tt.errMsg)
		})
	}
}

func TestParseFlags_Unknown(t *testing.T) {
	c := defaults()
	require.NoError(t, parseFlags(&c, []string{"-zzz", "1", "-rps", "2.5", "-t", "1m"}))
	assert.Equal(t, 2.5, c.RequestsPerSecond)
	assert.Equal(t, time.Minute, c.RequestTimeout)
}

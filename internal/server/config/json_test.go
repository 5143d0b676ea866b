package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	dir := t.TempDir()
	path := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"endpoint_addr_grpc":             ":6000",
		"database_dsn":                   "postgres://x",
		"secret_key":                     "k",
		"access_token_validity_duration": "1h",
		"presign_validity_duration":      60_000_000_000,
		"s3_bucket":                      "bucket",
		"s3_region":                      "region",
		"s3_base_endpoint":               "base_endpoint",
	})

	t.Run("loads from -c", func(t *testing.T) {
		cfg := &Config{S3RootUser: "keep"}
		parseJson(cfg, []string{"-c", path})

		assert.Equal(t, ":6000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
		assert.Equal(t, "k", cfg.SecretKey)
		assert.Equal(t, time.Hour, cfg.AccessTokenValidityDuration)
		assert.Equal(t, time.Minute, cfg.PresignValidityDuration)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
		assert.Equal(t, "keep", cfg.S3RootUser, "absent keys keep their value")
	})

	t.Run("no config flag, no changes", func(t *testing.T) {
		cfg := &Config{EndpointAddrGRPC: "defaults:1234", AccessTokenValidityDuration: 2 * time.Minute}
		parseJson(cfg, []string{"-a", ":1"})

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrGRPC)
		assert.Equal(t, 2*time.Minute, cfg.AccessTokenValidityDuration)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Panics(t, func() { parseJson(&Config{}, []string{"-config", bad}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		require.Panics(t, func() { parseJson(&Config{}, []string{"-c", filepath.Join(dir, "nope.json")}) })
	})
}

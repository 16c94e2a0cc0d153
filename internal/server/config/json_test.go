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

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"addr":                            "www.example:9000",
		"database":                        "demo",
		"admin_login":                     "jane",
		"admin_password":                  "pw",
		"secret_key":                      "my_secret_key",
		"access_token_validity_duration":  "1m",
		"refresh_token_validity_duration": 180000000000,
		"uid_false_on_failure":            true,
		"log_level":                       "warn",
	})

	cfg := &Config{}
	require.NoError(t, parseJson(cfg, []string{"-config", path}))

	assert.Equal(t, "www.example:9000", cfg.Addr)
	assert.Equal(t, "demo", cfg.Database)
	assert.Equal(t, "jane", cfg.AdminLogin)
	assert.Equal(t, "pw", cfg.AdminPassword)
	assert.Equal(t, "my_secret_key", cfg.SecretKey)
	assert.Equal(t, 1*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 3*time.Minute, cfg.RefreshTokenValidityDuration)
	assert.True(t, cfg.UIDFalseOnFailure)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func Test_parseJson_NoFlagLeavesConfig(t *testing.T) {
	cfg := &Config{Addr: ":1"}
	require.NoError(t, parseJson(cfg, nil))
	assert.Equal(t, ":1", cfg.Addr)
}

func Test_parseJson_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	require.Error(t, parseJson(&Config{}, []string{"-c", path}))
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8069", c.Addr)
	assert.Equal(t, "acme", c.Database)
	assert.Equal(t, "admin", c.AdminLogin)
	assert.Equal(t, "admin", c.AdminPassword)
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, 1*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 60*time.Minute, c.RefreshTokenValidityDuration)
	assert.False(t, c.UIDFalseOnFailure)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoad_FlagsOverrideJSON(t *testing.T) {
	path := writeTempJSON(t, map[string]any{"addr": ":9000", "database": "demo"})

	c, err := Load([]string{"-c", path, "-a", ":7000", "-x", "ignored"})
	require.NoError(t, err)

	assert.Equal(t, ":7000", c.Addr)
	assert.Equal(t, "demo", c.Database)
	assert.Equal(t, "admin", c.AdminLogin)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load([]string{"-c", "/does/not/exist.json"})
	require.Error(t, err)
}

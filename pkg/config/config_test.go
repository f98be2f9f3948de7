package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, int64(24*60*60), cfg.JWTExpiry)
	assert.Equal(t, int64(25), cfg.SSEKeepaliveSecs)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("JWT_EXPIRY", "600")
	t.Setenv("SSE_KEEPALIVE_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, int64(600), cfg.JWTExpiry)
	assert.Equal(t, int64(5), cfg.SSEKeepaliveSecs)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(24*60*60), cfg.JWTExpiry)
}

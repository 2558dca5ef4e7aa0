package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("SESSION_PURGE_SPEC", "")

	cfg := Load()
	require.NotEmpty(t, cfg.DatabaseURL)
	require.Equal(t, 5000, cfg.Port)
	require.Equal(t, 100, cfg.EventBufferSize)
	require.Equal(t, "0 4 * * *", cfg.SessionPurgeSpec)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "host=db port=5432 dbname=test")
	t.Setenv("PORT", "8080")
	t.Setenv("EVENT_BUFFER_SIZE", "25")

	cfg := Load()
	require.Equal(t, "host=db port=5432 dbname=test", cfg.DatabaseURL)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 25, cfg.EventBufferSize)
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	cfg := Load()
	require.Equal(t, 5000, cfg.Port)
}

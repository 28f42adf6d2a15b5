package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-connectedcar/internal/config"
	"github.com/stretchr/testify/require"
)

func TestHTTPTimeout(t *testing.T) {
	c := config.New()

	t.Setenv("HTTP_TIMEOUT", "")
	require.Equal(t, 30*time.Second, c.GetHTTPTimeout())

	t.Setenv("HTTP_TIMEOUT", "45s")
	require.Equal(t, 45*time.Second, c.GetHTTPTimeout())

	t.Setenv("HTTP_TIMEOUT", "12")
	require.Equal(t, 12*time.Second, c.GetHTTPTimeout())

	t.Setenv("HTTP_TIMEOUT", "soon")
	require.Equal(t, 30*time.Second, c.GetHTTPTimeout())
}

func TestPrettyLogs(t *testing.T) {
	c := config.New()

	t.Setenv("LOG_PRETTY", "")
	t.Setenv("ENV", "")
	require.Equal(t, "DEV", c.GetEnv())
	require.True(t, c.GetPrettyLogs())

	t.Setenv("ENV", "prod")
	require.False(t, c.GetPrettyLogs())

	t.Setenv("LOG_PRETTY", "true")
	require.True(t, c.GetPrettyLogs())

	t.Setenv("ENV", "")
	t.Setenv("LOG_PRETTY", "false")
	require.False(t, c.GetPrettyLogs())
}

func TestLoad(t *testing.T) {
	t.Run("missing env file is ignored", func(t *testing.T) {
		c, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)
		require.Equal(t, "fr-FR", c.GetLegacyCulture())
	})

	t.Run("env file populates the environment", func(t *testing.T) {
		t.Setenv("CONNECTEDCAR_SESSION_FILE", "")
		os.Unsetenv("CONNECTEDCAR_SESSION_FILE")
		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("CONNECTEDCAR_SESSION_FILE=/tmp/session.yaml\n"), 0o600))

		c, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, "/tmp/session.yaml", c.GetSessionFile())
	})
}

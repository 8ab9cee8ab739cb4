package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setupConfigTest(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmp, "state"))
	t.Setenv(EnvPrefix+"CONFIG_PATH", "")
	reset()
	return tmp
}

func TestLoadAndGet(t *testing.T) {
	setupConfigTest(t)
	Load()

	require.Equal(t, "default", Get("missing", "default"))
	require.Equal(t, 120, GetInt("initial_rows", 0))
	require.Equal(t, 20, GetInt("preload_rows", 0))
	require.Equal(t, 100, GetInt("delta_rows", 0))
	require.Equal(t, 30*time.Second, GetDuration("fetch_timeout", 0))
	require.True(t, GetBool("page_cache_enabled", false))
	require.Equal(t, "http://localhost:8000", Get("server_url", ""))
}

func TestLoadingPrecedence(t *testing.T) {
	tmp := setupConfigTest(t)

	configFile := filepath.Join(tmp, "custom.toml")
	content := `
server_url = "https://workbench.example.com/"
initial_rows = 200
delta_rows = 50
websocket_enabled = false
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))
	t.Setenv(EnvPrefix+"CONFIG_PATH", configFile)
	t.Setenv(EnvPrefix+"DELTA_ROWS", "75")

	Load()

	require.Equal(t, "https://workbench.example.com", Get("server_url", ""), "file value, normalized")
	require.Equal(t, 200, GetInt("initial_rows", 0), "file value")
	require.Equal(t, 75, GetInt("delta_rows", 0), "environment wins over file")
	require.False(t, GetBool("websocket_enabled", true))
}

func TestInvalidValuesFallBackToDefaults(t *testing.T) {
	setupConfigTest(t)
	t.Setenv(EnvPrefix+"INITIAL_ROWS", "-4")
	t.Setenv(EnvPrefix+"PRELOAD_ROWS", "0")
	t.Setenv(EnvPrefix+"FETCH_TIMEOUT", "soon")
	t.Setenv(EnvPrefix+"SERVER_URL", "ftp://nope")
	t.Setenv(EnvPrefix+"TABLE_FORMAT", "JSON")
	t.Setenv(EnvPrefix+"DEBUG", "yes")

	Load()

	require.Equal(t, 120, GetInt("initial_rows", 0))
	require.Equal(t, 0, GetInt("preload_rows", -1), "zero preload is allowed")
	require.Equal(t, 30*time.Second, GetDuration("fetch_timeout", 0))
	require.Equal(t, "http://localhost:8000", Get("server_url", ""))
	require.Equal(t, "json", Get("table_format", ""))
	require.Equal(t, "true", Get("debug", ""))
}

func TestDurationAcceptsBareSeconds(t *testing.T) {
	setupConfigTest(t)
	t.Setenv(EnvPrefix+"FETCH_TIMEOUT", "5")

	Load()

	require.Equal(t, 5*time.Second, GetDuration("fetch_timeout", 0))
}

func TestSampleConfigOmitsCredentials(t *testing.T) {
	tmp := setupConfigTest(t)
	t.Setenv(EnvPrefix+"CSRF_TOKEN", "secret-token")

	Load()

	data, err := os.ReadFile(filepath.Join(tmp, "config", "workbench", "config.toml"))
	require.NoError(t, err)
	require.Contains(t, string(data), "delta_rows = 100")
	require.NotContains(t, string(data), "csrf_token =")
	require.NotContains(t, string(data), "session_cookie =")
	require.NotContains(t, string(data), "secret-token")
}

func TestRegisterValidatorPanicsOnDuplicate(t *testing.T) {
	require.Panics(t, func() {
		RegisterValidator("initial_rows", PositiveIntValidator())
	})
}

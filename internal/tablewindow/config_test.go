package tablewindow

import (
	"testing"
	"time"

	"github.com/cristianoliveira/workbench/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestConfigFromGlobal(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("XDG_STATE_HOME", tmp)
	t.Setenv("WORKBENCH_CONFIG_PATH", "")
	t.Setenv("WORKBENCH_INITIAL_ROWS", "50")
	t.Setenv("WORKBENCH_PRELOAD_ROWS", "5")
	t.Setenv("WORKBENCH_DELTA_ROWS", "25")
	t.Setenv("WORKBENCH_FETCH_TIMEOUT", "3s")
	t.Setenv("WORKBENCH_RETRY_BACKOFF", "500ms")
	config.Load()

	assert.Equal(t, Config{
		InitialWindowSize: 50,
		PreloadThreshold:  5,
		DeltaRows:         25,
		FetchTimeout:      3 * time.Second,
		RetryBackoff:      500 * time.Millisecond,
	}, ConfigFromGlobal())
}

func TestConfigFromGlobalDefaults(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("XDG_STATE_HOME", tmp)
	t.Setenv("WORKBENCH_CONFIG_PATH", "")
	config.Load()

	assert.Equal(t, DefaultConfig(), ConfigFromGlobal())
}

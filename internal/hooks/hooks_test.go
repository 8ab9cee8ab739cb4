package hooks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, point, name, body string, mode os.FileMode) {
	t.Helper()
	pointDir := filepath.Join(dir, point)
	require.NoError(t, os.MkdirAll(pointDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pointDir, name), []byte("#!/bin/sh\n"+body+"\n"), mode))
}

func TestScriptsSortedAndExecutableOnly(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, PointModuleStatus, "20-second.sh", "exit 0", 0o755)
	writeScript(t, dir, PointModuleStatus, "10-first.sh", "exit 0", 0o755)
	writeScript(t, dir, PointModuleStatus, "README", "not a script", 0o644)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, PointModuleStatus, "nested"), 0o755))

	r := &Runner{Dir: dir}
	scripts := r.Scripts(PointModuleStatus)
	require.Len(t, scripts, 2)
	assert.Equal(t, "10-first.sh", filepath.Base(scripts[0]))
	assert.Equal(t, "20-second.sh", filepath.Base(scripts[1]))

	assert.Empty(t, r.Scripts(PointWorkflowReload))
	assert.Empty(t, (&Runner{}).Scripts(PointModuleStatus))
}

func TestRunPassesEnvironment(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(t.TempDir(), "out.txt")
	writeScript(t, dir, PointModuleStatus, "record.sh",
		`echo "$WORKBENCH_HOOK_POINT $WORKBENCH_MODULE_ID $WORKBENCH_MODULE_STATUS" >> "`+out+`"`, 0o755)

	r := &Runner{Dir: dir, FailureMode: FailureAbort, Timeout: 5 * time.Second}
	err := r.Run(context.Background(), PointModuleStatus, map[string]string{
		"WORKBENCH_MODULE_ID":     "11",
		"WORKBENCH_MODULE_STATUS": "ready",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "module-status 11 ready\n", string(data))
}

func TestRunFailureModes(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(t.TempDir(), "ran")
	writeScript(t, dir, PointWorkflowReload, "10-fail.sh", "echo broken; exit 3", 0o755)
	writeScript(t, dir, PointWorkflowReload, "20-after.sh", `touch "`+marker+`"`, 0o755)

	t.Run("abort stops at the failing script", func(t *testing.T) {
		r := &Runner{Dir: dir, FailureMode: FailureAbort}
		err := r.Run(context.Background(), PointWorkflowReload, nil)
		assert.ErrorIs(t, err, ErrHookFailed)
		assert.ErrorContains(t, err, "workflow-reload/10-fail.sh")
		assert.ErrorContains(t, err, "broken")
		assert.NoFileExists(t, marker)
	})

	t.Run("warn reports and continues", func(t *testing.T) {
		var warnings []string
		r := &Runner{Dir: dir, FailureMode: FailureWarn, Warn: func(msg string) { warnings = append(warnings, msg) }}
		require.NoError(t, r.Run(context.Background(), PointWorkflowReload, nil))
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "hook workflow-reload/10-fail.sh failed")
		assert.FileExists(t, marker)
	})

	t.Run("ignore stays quiet", func(t *testing.T) {
		require.NoError(t, os.Remove(marker))
		called := false
		r := &Runner{Dir: dir, FailureMode: FailureIgnore, Warn: func(string) { called = true }}
		require.NoError(t, r.Run(context.Background(), PointWorkflowReload, nil))
		assert.False(t, called)
		assert.FileExists(t, marker)
	})
}

func TestRunTimeout(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, PointModuleStatus, "slow.sh", "exec sleep 5", 0o755)

	r := &Runner{Dir: dir, FailureMode: FailureAbort, Timeout: 50 * time.Millisecond}
	err := r.Run(context.Background(), PointModuleStatus, nil)
	assert.ErrorIs(t, err, ErrHookFailed)
	assert.ErrorContains(t, err, "timed out after 50ms")
}

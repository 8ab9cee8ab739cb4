// Package hooks runs user scripts when workflow events arrive.
//
// Scripts live in <hooks_dir>/<hook point>/ and run in name order. Every
// executable file is started with the hook variables added to the
// environment.
package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"github.com/cristianoliveira/workbench/internal/config"
	"github.com/cristianoliveira/workbench/internal/logging"
)

// Hook points.
const (
	PointModuleStatus   = "module-status"
	PointWorkflowReload = "workflow-reload"
)

// Failure modes decide what a failed script does to the caller.
const (
	FailureAbort  = "abort"
	FailureWarn   = "warn"
	FailureIgnore = "ignore"
)

// ErrHookFailed wraps the error of a script run in abort mode.
var ErrHookFailed = errors.New("hook failed")

// Runner executes the scripts of a hook point.
type Runner struct {
	Dir         string
	FailureMode string
	Timeout     time.Duration
	Logger      logging.Logger

	// Warn receives failures in warn mode. Nil means the logger only.
	Warn func(msg string)
}

// NewFromConfig builds a Runner from the global configuration.
func NewFromConfig() *Runner {
	return &Runner{
		Dir:         config.Get("hooks_dir", ""),
		FailureMode: config.Get("hooks_failure_mode", FailureWarn),
		Timeout:     config.GetDuration("hooks_timeout", 30*time.Second),
		Logger:      logging.With("component", "hooks"),
	}
}

func (r *Runner) logger() logging.Logger {
	if r.Logger == nil {
		return logging.GetGlobal()
	}
	return r.Logger
}

// Scripts lists the executable scripts of point sorted by name. A missing
// directory has no scripts.
func (r *Runner) Scripts(point string) []string {
	if r.Dir == "" {
		return nil
	}
	dir := filepath.Join(r.Dir, point)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var scripts []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.Mode()&0o111 == 0 {
			continue
		}
		scripts = append(scripts, filepath.Join(dir, e.Name()))
	}
	sort.Strings(scripts)
	return scripts
}

// Run executes every script of point with vars in its environment. In abort
// mode the first failing script stops the run and its error is returned.
func (r *Runner) Run(ctx context.Context, point string, vars map[string]string) error {
	scripts := r.Scripts(point)
	if len(scripts) == 0 {
		return nil
	}
	env := r.environment(point, vars)
	r.logger().Debug("running hooks", "point", point, "scripts", len(scripts))

	for _, script := range scripts {
		start := time.Now()
		out, err := r.runScript(ctx, script, env)
		name := filepath.Base(script)
		if err == nil {
			r.logger().Debug("hook completed", "point", point, "script", name, "duration", time.Since(start))
			continue
		}
		if len(out) > 0 {
			err = fmt.Errorf("%w: %s", err, bytes.TrimSpace(out))
		}
		switch r.FailureMode {
		case FailureAbort:
			return fmt.Errorf("%w: %s/%s: %v", ErrHookFailed, point, name, err)
		case FailureIgnore:
			r.logger().Debug("hook failed", "point", point, "script", name, "error", err)
		default:
			r.logger().Warn("hook failed", "point", point, "script", name, "error", err)
			if r.Warn != nil {
				r.Warn(fmt.Sprintf("hook %s/%s failed: %v", point, name, err))
			}
		}
	}
	return nil
}

func (r *Runner) runScript(ctx context.Context, script string, env []string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	c := exec.CommandContext(ctx, script)
	c.Env = env
	c.WaitDelay = time.Second
	out, err := c.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return out, fmt.Errorf("timed out after %s", r.Timeout)
	}
	return out, err
}

func (r *Runner) environment(point string, vars map[string]string) []string {
	env := os.Environ()
	env = append(env,
		"WORKBENCH_HOOK_POINT="+point,
		"WORKBENCH_HOOK_TIMESTAMP="+time.Now().Format(time.RFC3339),
	)
	if exe, err := os.Executable(); err == nil {
		env = append(env, "WORKBENCH_BINARY="+exe)
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+vars[k])
	}
	return env
}

package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/vanderheijden86/foodgalaxy/pkg/debug"
)

const maxSummaryStderr = 200

// Result is the outcome of one hook run.
type Result struct {
	Hook     Hook
	Phase    Phase
	Success  bool
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// Executor runs the hooks of one export.
type Executor struct {
	set     Set
	env     []string
	results []Result
}

// NewExecutor returns an executor for set. The context is exported to
// every hook as FG_* variables.
func NewExecutor(set Set, ctx ExportContext) *Executor {
	return &Executor{set: set, env: ctx.ToEnv()}
}

// RunPreExport runs the pre-export hooks in order and stops at the first
// fatal failure.
func (e *Executor) RunPreExport() error {
	for _, h := range e.set.Pre {
		if r := e.run(h, PreExport); r.Error != nil && h.fatal() {
			return fmt.Errorf("pre-export hook %q failed: %w", h.Name, r.Error)
		}
	}
	return nil
}

// RunPostExport runs every post-export hook and joins the fatal failures.
func (e *Executor) RunPostExport() error {
	var errs []error
	for _, h := range e.set.Post {
		if r := e.run(h, PostExport); r.Error != nil && h.fatal() {
			errs = append(errs, fmt.Errorf("post-export hook %q failed: %w", h.Name, r.Error))
		}
	}
	return errors.Join(errs...)
}

func (e *Executor) run(h Hook, phase Phase) Result {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", h.Command)
	cmd.Env = append(os.Environ(), e.env...)
	for k, v := range h.Env {
		cmd.Env = append(cmd.Env, k+"="+os.ExpandEnv(v))
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r := Result{
		Hook:     h,
		Phase:    phase,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
	}
	switch {
	case ctx.Err() == context.DeadlineExceeded:
		r.Error = fmt.Errorf("timed out after %v", timeout)
	case err != nil:
		r.Error = err
	default:
		r.Success = true
	}
	debug.Log("hooks: %s %q finished in %v (ok=%v)", phase, h.Name, r.Duration, r.Success)
	e.results = append(e.results, r)
	return r
}

// Results returns the results of the hooks run so far.
func (e *Executor) Results() []Result {
	return e.results
}

// Summary describes the hook runs, with the stderr of failed hooks.
func (e *Executor) Summary() string {
	if len(e.results) == 0 {
		return ""
	}
	var ok, failed int
	var b strings.Builder
	for _, r := range e.results {
		if r.Success {
			ok++
			continue
		}
		failed++
		fmt.Fprintf(&b, "\n  ✗ %s (%s): %v", r.Hook.Name, r.Phase, r.Error)
		if r.Stderr != "" {
			fmt.Fprintf(&b, "\n    stderr: %s", truncate(r.Stderr, maxSummaryStderr))
		}
	}
	return fmt.Sprintf("hooks: %d succeeded, %d failed", ok, failed) + b.String()
}

// RunHooks loads the hooks of projectDir. It returns a nil executor when
// hooks are disabled or none are configured.
func RunHooks(projectDir string, ctx ExportContext, noHooks bool) (*Executor, error) {
	if noHooks {
		return nil, nil
	}
	set, warnings, err := Load(projectDir)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		debug.Log("hooks: %s", w)
	}
	if set.Empty() {
		return nil, nil
	}
	return NewExecutor(set, ctx), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

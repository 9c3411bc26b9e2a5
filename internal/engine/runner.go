package engine

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"time"
)

// Defaults for the regeneration command.
const (
	DefaultBin     = "godot"
	DefaultScript  = "tools/regenerate_module.gd"
	DefaultTimeout = 30 * time.Second

	// waitDelay bounds how long output pipes may stay open after the engine
	// exits or is killed. Grandchildren holding them are abandoned.
	waitDelay = 2 * time.Second
)

// Outcome classifies a regeneration attempt.
type Outcome int

// Regeneration outcomes.
const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
	OutcomeTimeout
	OutcomeSpawnError
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeSpawnError:
		return "spawn-error"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result is the outcome of a single regeneration.
type Result struct {
	Outcome Outcome
	// Command is the argument vector that was executed.
	Command []string
	// ExitCode is the engine's exit status, or -1 when it did not exit on
	// its own.
	ExitCode int
	Stdout   string
	Stderr   string
	// Err is set for OutcomeSpawnError, OutcomeTimeout and OutcomeCancelled.
	Err      error
	Duration time.Duration
}

// OK reports whether the engine exited with status 0.
func (r Result) OK() bool { return r.Outcome == OutcomeSuccess }

// Options configures a Runner.
type Options struct {
	// Bin is the engine executable.
	Bin string
	// Script is the engine script passed via --script.
	Script string
	// Dir is the working directory for the engine; empty means the
	// current directory.
	Dir string
	// Timeout bounds a single regeneration.
	Timeout time.Duration
}

// DefaultOptions returns the stock regeneration settings.
func DefaultOptions() Options {
	return Options{
		Bin:     DefaultBin,
		Script:  DefaultScript,
		Timeout: DefaultTimeout,
	}
}

// Runner executes regeneration commands.
type Runner struct {
	opts Options
}

// NewRunner returns a Runner. Zero fields in opts take their defaults.
func NewRunner(opts Options) *Runner {
	d := DefaultOptions()

	if opts.Bin == "" {
		opts.Bin = d.Bin
	}

	if opts.Script == "" {
		opts.Script = d.Script
	}

	if opts.Timeout <= 0 {
		opts.Timeout = d.Timeout
	}

	return &Runner{opts: opts}
}

// Bin returns the engine executable the runner invokes.
func (r *Runner) Bin() string { return r.opts.Bin }

// Command returns the argument vector used to regenerate moduleDir.
func (r *Runner) Command(moduleDir string) []string {
	return Command(r.opts.Bin, r.opts.Script, moduleDir)
}

// Command builds the headless regeneration command line:
//
//	<bin> --headless --script <script> -- <moduleDir>
func Command(bin, script, moduleDir string) []string {
	return []string{bin, "--headless", "--script", script, "--", moduleDir}
}

// Regenerate runs the engine for moduleDir and blocks until it exits, the
// timeout expires, or ctx is cancelled. Output is captured, never streamed.
func (r *Runner) Regenerate(ctx context.Context, moduleDir string) Result {
	argv := r.Command(r.moduleArg(moduleDir))

	runCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...) //nolint:gosec
	cmd.Dir = r.opts.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()

	res := Result{
		Command:  argv,
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	// The engine itself finished cleanly; only a lingering child kept the
	// pipes open.
	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil && cmd.ProcessState.Success() {
		err = nil
	}

	classify(&res, err, runCtx, ctx)

	return res
}

// moduleArg keeps moduleDir as given unless the engine runs in another
// directory, where a relative path would no longer resolve.
func (r *Runner) moduleArg(moduleDir string) string {
	if r.opts.Dir == "" || filepath.IsAbs(moduleDir) {
		return moduleDir
	}

	abs, err := filepath.Abs(moduleDir)
	if err != nil {
		return moduleDir
	}

	return abs
}

func classify(res *Result, err error, runCtx, parent context.Context) {
	var exitErr *exec.ExitError

	switch {
	case err == nil:
		res.Outcome = OutcomeSuccess
		res.ExitCode = 0
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.Outcome = OutcomeTimeout
		res.Err = context.DeadlineExceeded
	case parent.Err() != nil:
		res.Outcome = OutcomeCancelled
		res.Err = parent.Err()
	case errors.As(err, &exitErr):
		res.Outcome = OutcomeFailure
		res.ExitCode = exitErr.ExitCode()
	default:
		res.Outcome = OutcomeSpawnError
		res.Err = err
	}
}

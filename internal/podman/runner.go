// Package podman is the subprocess boundary to the podman and buildah
// executables. It runs commands, captures their output, and parses
// inspect JSON into normalized state records. Nothing here interprets
// desired state; that belongs to the reconcile package.
package podman

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/podtend/podtend/internal/logger"
	pterrors "github.com/podtend/podtend/pkg/errors"
)

// Result captures one finished invocation. RC is the process exit code;
// Cmd is the shell-quoted command line for logs and action traces.
type Result struct {
	Cmd    string
	RC     int
	Stdout string
	Stderr string
}

// OK reports whether the invocation exited zero.
func (r Result) OK() bool {
	return r.RC == 0
}

// PrimaryOutput returns stderr if present, otherwise stdout.
func (r Result) PrimaryOutput() string {
	if r.Stderr != "" {
		return r.Stderr
	}
	return r.Stdout
}

// Runner executes external tool invocations. A non-zero exit is not an
// error at this layer: the Result carries the exit code and the caller
// decides whether it means "absent", "failed", or "fine".
type Runner interface {
	Run(ctx context.Context, args ...string) (Result, error)
}

// CLIOptions configures a CLI runner. Timeout zero means no timeout.
type CLIOptions struct {
	Executable string
	GlobalArgs []string
	Timeout    time.Duration
	Logger     *logger.Logger
}

// CLI is the production Runner. All state is fixed at construction;
// one CLI value is scoped to one reconciliation run.
type CLI struct {
	executable string
	globalArgs []string
	timeout    time.Duration
	log        *logger.Logger
}

// NewCLI creates a runner for the given executable.
func NewCLI(opts CLIOptions) *CLI {
	executable := opts.Executable
	if executable == "" {
		executable = "podman"
	}
	return &CLI{
		executable: executable,
		globalArgs: append([]string(nil), opts.GlobalArgs...),
		timeout:    opts.Timeout,
		log:        opts.Logger,
	}
}

// Executable returns the configured executable name or path.
func (c *CLI) Executable() string {
	return c.executable
}

// Run executes the command, blocking until it finishes or the timeout
// expires. On timeout the subprocess is killed and a TimeoutError is
// returned. A missing or unrunnable executable yields a ProbeError.
func (c *CLI) Run(ctx context.Context, args ...string) (Result, error) {
	return c.run(ctx, nil, args)
}

// RunInput is Run with data fed to the subprocess on stdin, used for
// values that must not appear on a command line (secrets).
func (c *CLI) RunInput(ctx context.Context, input []byte, args ...string) (Result, error) {
	return c.run(ctx, input, args)
}

func (c *CLI) run(ctx context.Context, input []byte, args []string) (Result, error) {
	argv := append(append([]string(nil), c.globalArgs...), args...)
	quoted := shellquote.Join(append([]string{c.executable}, argv...)...)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.executable, argv...)
	cmd.Env = os.Environ()
	if len(input) > 0 {
		cmd.Stdin = bytes.NewReader(input)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.log.WithFields(map[string]any{"cmd": quoted}).Debug("running command")

	err := cmd.Run()
	res := Result{
		Cmd:    quoted,
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}

	if err == nil {
		return res, nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.RC = -1
		return res, pterrors.NewTimeoutError(quoted, c.timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.RC = exitErr.ExitCode()
		return res, nil
	}

	return res, pterrors.NewProbeError(c.executable, "cannot run executable", err)
}

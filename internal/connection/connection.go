// Package connection runs commands in and transfers files to and from
// running containers (podman exec/cp) and buildah working containers
// (buildah run/copy/mount).
package connection

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/podtend/podtend/internal/logger"
	"github.com/podtend/podtend/internal/podman"
	pterrors "github.com/podtend/podtend/pkg/errors"
)

// Tool selects the executable family a connection drives.
const (
	ToolPodman  = "podman"
	ToolBuildah = "buildah"
)

// Options configures a connection.
type Options struct {
	// Tool is ToolPodman or ToolBuildah; empty means podman.
	Tool       string
	Executable string
	GlobalArgs []string
	Timeout    time.Duration
	Logger     *logger.Logger
	// Runner overrides the CLI runner; tests inject a scripted one.
	Runner podman.Runner
}

// ExecOptions tunes a single RunCommand invocation.
type ExecOptions struct {
	Env  map[string]string
	Cwd  string
	User string
}

// Connection is a handle to one target tool. It holds no per-target
// state; the target name is passed per call.
type Connection struct {
	tool   string
	runner podman.Runner
	log    *logger.Logger
}

// New constructs a Connection.
func New(opts Options) (*Connection, error) {
	tool := opts.Tool
	if tool == "" {
		tool = ToolPodman
	}
	if tool != ToolPodman && tool != ToolBuildah {
		return nil, pterrors.NewValidationError("tool", "tool must be podman or buildah", nil)
	}

	runner := opts.Runner
	if runner == nil {
		executable := opts.Executable
		if executable == "" {
			executable = tool
		}
		runner = podman.NewCLI(podman.CLIOptions{
			Executable: executable,
			GlobalArgs: opts.GlobalArgs,
			Timeout:    opts.Timeout,
			Logger:     opts.Logger,
		})
	}
	return &Connection{tool: tool, runner: runner, log: opts.Logger}, nil
}

// RunCommand executes argv inside the target. The exit code is part of
// the result, not an error: callers decide what a non-zero rc means.
func (c *Connection) RunCommand(ctx context.Context, target string, argv []string, opts ExecOptions) (podman.Result, error) {
	if target == "" {
		return podman.Result{}, pterrors.NewValidationError("target", "target container is required", nil)
	}
	if len(argv) == 0 {
		return podman.Result{}, pterrors.NewValidationError("argv", "command is required", nil)
	}

	var args []string
	switch c.tool {
	case ToolBuildah:
		args = []string{"run"}
		if opts.User != "" {
			args = append(args, "--user", opts.User)
		}
		if opts.Cwd != "" {
			args = append(args, "--workingdir", opts.Cwd)
		}
		for _, kv := range sortedEnv(opts.Env) {
			args = append(args, "--env", kv)
		}
		args = append(args, target, "--")
		args = append(args, argv...)
	default:
		args = []string{"exec"}
		if opts.User != "" {
			args = append(args, "--user", opts.User)
		}
		if opts.Cwd != "" {
			args = append(args, "--workdir", opts.Cwd)
		}
		for _, kv := range sortedEnv(opts.Env) {
			args = append(args, "--env", kv)
		}
		args = append(args, target)
		args = append(args, argv...)
	}

	c.log.WithResource(c.tool, target).Debug("running command in target")
	return c.runner.Run(ctx, args...)
}

// PutFile copies a local file into the target.
func (c *Connection) PutFile(ctx context.Context, target, src, dst string) error {
	var args []string
	switch c.tool {
	case ToolBuildah:
		args = []string{"copy", target, src, dst}
	default:
		args = []string{"cp", src, target + ":" + dst}
	}

	res, err := c.runner.Run(ctx, args...)
	if err != nil {
		return err
	}
	if !res.OK() {
		return pterrors.NewExecutionError(res.Cmd, res.RC, res.Stdout, res.Stderr)
	}
	return nil
}

// FetchFile copies a file out of the target onto the local filesystem.
// Buildah has no copy-out verb; the working container's root is mounted
// and the file read through the mount, then unmounted.
func (c *Connection) FetchFile(ctx context.Context, target, src, dst string) error {
	if c.tool == ToolBuildah {
		return c.fetchViaMount(ctx, target, src, dst)
	}

	res, err := c.runner.Run(ctx, "cp", target+":"+src, dst)
	if err != nil {
		return err
	}
	if !res.OK() {
		return pterrors.NewExecutionError(res.Cmd, res.RC, res.Stdout, res.Stderr)
	}
	return nil
}

func (c *Connection) fetchViaMount(ctx context.Context, target, src, dst string) error {
	res, err := c.runner.Run(ctx, "mount", target)
	if err != nil {
		return err
	}
	if !res.OK() || res.Stdout == "" {
		return pterrors.NewExecutionError(res.Cmd, res.RC, res.Stdout, res.Stderr)
	}
	root := res.Stdout

	defer func() {
		if _, umountErr := c.runner.Run(ctx, "umount", target); umountErr != nil {
			c.log.WithResource(c.tool, target).Warn("cannot unmount working container")
		}
	}()

	return copyFile(filepath.Join(root, src), dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

func sortedEnv(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

package podman

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pterrors "github.com/podtend/podtend/pkg/errors"
)

func TestCLIRunCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}
	t.Parallel()

	cli := NewCLI(CLIOptions{Executable: "sh"})
	res, err := cli.Run(context.Background(), "-c", "echo out; echo err >&2")
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, "out", res.Stdout)
	assert.Equal(t, "err", res.Stderr)
	assert.Contains(t, res.Cmd, "sh -c")
}

func TestCLIRunNonZeroExitIsNotAnError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}
	t.Parallel()

	cli := NewCLI(CLIOptions{Executable: "sh"})
	res, err := cli.Run(context.Background(), "-c", "echo 'no such container' >&2; exit 125")
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, 125, res.RC)
	assert.Equal(t, "no such container", res.PrimaryOutput())
}

func TestCLIRunMissingExecutable(t *testing.T) {
	t.Parallel()

	cli := NewCLI(CLIOptions{Executable: "definitely-not-a-real-binary-xyz"})
	_, err := cli.Run(context.Background())

	var perr *pterrors.ProbeError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "definitely-not-a-real-binary-xyz", perr.Executable)
}

func TestCLIRunTimeoutKillsProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}
	t.Parallel()

	cli := NewCLI(CLIOptions{Executable: "sleep", Timeout: 50 * time.Millisecond})
	start := time.Now()
	_, err := cli.Run(context.Background(), "10")

	require.True(t, pterrors.IsTimeout(err), "expected timeout error, got %v", err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestCLIRunPrependsGlobalArgs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}
	t.Parallel()

	cli := NewCLI(CLIOptions{Executable: "echo", GlobalArgs: []string{"--remote"}})
	res, err := cli.Run(context.Background(), "ps")
	require.NoError(t, err)
	assert.Equal(t, "--remote ps", res.Stdout)
}

func TestNewCLIDefaultsToPodman(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "podman", NewCLI(CLIOptions{}).Executable())
}

package connection

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podtend/podtend/internal/podman"
	pterrors "github.com/podtend/podtend/pkg/errors"
)

func TestRunCommandPodmanExec(t *testing.T) {
	t.Parallel()

	script := podman.NewScript().
		On("exec --workdir /srv --env APP_MODE=prod web cat /etc/hostname",
			podman.Result{Stdout: "web"}, nil)
	conn, err := New(Options{Runner: script})
	require.NoError(t, err)

	res, err := conn.RunCommand(context.Background(), "web", []string{"cat", "/etc/hostname"}, ExecOptions{
		Cwd: "/srv",
		Env: map[string]string{"APP_MODE": "prod"},
	})
	require.NoError(t, err)
	assert.Equal(t, "web", res.Stdout)
	assert.True(t, res.OK())
}

func TestRunCommandReturnsExitCodeNotError(t *testing.T) {
	t.Parallel()

	script := podman.NewScript().
		On("exec web false", podman.Result{RC: 1}, nil)
	conn, err := New(Options{Runner: script})
	require.NoError(t, err)

	res, err := conn.RunCommand(context.Background(), "web", []string{"false"}, ExecOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.RC)
}

func TestRunCommandBuildahRun(t *testing.T) {
	t.Parallel()

	script := podman.NewScript()
	conn, err := New(Options{Tool: ToolBuildah, Runner: script})
	require.NoError(t, err)

	_, err = conn.RunCommand(context.Background(), "working-container", []string{"ls", "/"}, ExecOptions{
		User: "root",
		Cwd:  "/srv",
	})
	require.NoError(t, err)
	assert.Contains(t, script.Calls(), "run --user root --workingdir /srv working-container -- ls /")
}

func TestRunCommandValidatesInput(t *testing.T) {
	t.Parallel()

	conn, err := New(Options{Runner: podman.NewScript()})
	require.NoError(t, err)

	_, err = conn.RunCommand(context.Background(), "", []string{"ls"}, ExecOptions{})
	var verr *pterrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "target", verr.Key)

	_, err = conn.RunCommand(context.Background(), "web", nil, ExecOptions{})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "argv", verr.Key)
}

func TestNewRejectsUnknownTool(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Tool: "docker"})
	var verr *pterrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "tool", verr.Key)
}

func TestPutFile(t *testing.T) {
	t.Parallel()

	script := podman.NewScript()
	conn, err := New(Options{Runner: script})
	require.NoError(t, err)

	require.NoError(t, conn.PutFile(context.Background(), "web", "/tmp/app.conf", "/etc/app.conf"))
	assert.Contains(t, script.Calls(), "cp /tmp/app.conf web:/etc/app.conf")

	buildah, err := New(Options{Tool: ToolBuildah, Runner: script})
	require.NoError(t, err)
	require.NoError(t, buildah.PutFile(context.Background(), "wc", "/tmp/app.conf", "/etc/app.conf"))
	assert.Contains(t, script.Calls(), "copy wc /tmp/app.conf /etc/app.conf")
}

func TestPutFileSurfacesFailure(t *testing.T) {
	t.Parallel()

	script := podman.NewScript().
		On("cp /tmp/x web:/x", podman.Result{RC: 125, Stderr: "no such container"}, nil)
	conn, err := New(Options{Runner: script})
	require.NoError(t, err)

	err = conn.PutFile(context.Background(), "web", "/tmp/x", "/x")
	var xerr *pterrors.ExecutionError
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, 125, xerr.RC)
}

func TestFetchFilePodman(t *testing.T) {
	t.Parallel()

	script := podman.NewScript()
	conn, err := New(Options{Runner: script})
	require.NoError(t, err)

	require.NoError(t, conn.FetchFile(context.Background(), "web", "/etc/app.conf", "/tmp/out.conf"))
	assert.Contains(t, script.Calls(), "cp web:/etc/app.conf /tmp/out.conf")
}

func TestFetchFileBuildahReadsThroughMount(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "etc"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "etc", "app.conf"), []byte("mode=prod\n"), 0o644))

	script := podman.NewScript().
		On("mount wc", podman.Result{Stdout: root}, nil)
	conn, err := New(Options{Tool: ToolBuildah, Runner: script})
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "fetched.conf")
	require.NoError(t, conn.FetchFile(context.Background(), "wc", "/etc/app.conf", dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "mode=prod\n", string(data))
	assert.Contains(t, script.Calls(), "umount wc")
}

package podman

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pterrors "github.com/podtend/podtend/pkg/errors"
)

func TestProberInspectLowersKeys(t *testing.T) {
	t.Parallel()

	script := NewScript().On("container inspect web", Result{
		Stdout: `[{"Id": "abc", "HostConfig": {"Memory": 104857600, "Devices": [{"PathOnHost": "/dev/fuse"}]}}]`,
	}, nil)

	state, err := NewProber(script, nil).Inspect(context.Background(), "container", "web")
	require.NoError(t, err)

	hostConfig, ok := state["hostconfig"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 104857600, hostConfig["memory"])

	devices, ok := hostConfig["devices"].([]any)
	require.True(t, ok)
	device, ok := devices[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/dev/fuse", device["pathonhost"])
}

func TestProberInspectNonZeroExitMeansAbsent(t *testing.T) {
	t.Parallel()

	script := NewScript().On("network inspect backend", Result{RC: 125, Stderr: "network not found"}, nil)

	_, err := NewProber(script, nil).Inspect(context.Background(), "network", "backend")
	assert.True(t, pterrors.IsNotFound(err))
}

func TestProberInspectEmptyListMeansAbsent(t *testing.T) {
	t.Parallel()

	script := NewScript().On("volume inspect data", Result{Stdout: "[]"}, nil)

	_, err := NewProber(script, nil).Inspect(context.Background(), "volume", "data")
	assert.True(t, pterrors.IsNotFound(err))
}

func TestProberInspectBareObject(t *testing.T) {
	t.Parallel()

	script := NewScript().On("pod inspect db", Result{Stdout: `{"Name": "db", "State": "Running"}`}, nil)

	state, err := NewProber(script, nil).Inspect(context.Background(), "pod", "db")
	require.NoError(t, err)
	assert.Equal(t, "db", state["name"])
}

func TestProberInspectMalformedOutput(t *testing.T) {
	t.Parallel()

	script := NewScript().On("container inspect web", Result{Stdout: "{not json"}, nil)

	_, err := NewProber(script, nil).Inspect(context.Background(), "container", "web")
	var perr *pterrors.ProbeError
	require.ErrorAs(t, err, &perr)
	assert.False(t, pterrors.IsNotFound(err))
}

func TestProberInspectUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := NewProber(NewScript(), nil).Inspect(context.Background(), "machine", "x")
	var perr *pterrors.ProbeError
	require.ErrorAs(t, err, &perr)
}

func TestProberExists(t *testing.T) {
	t.Parallel()

	script := NewScript().
		On("container inspect web", Result{Stdout: `[{"Id": "abc"}]`}, nil).
		On("container inspect gone", Result{RC: 1}, nil)

	prober := NewProber(script, nil)

	ok, err := prober.Exists(context.Background(), "container", "web")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = prober.Exists(context.Background(), "container", "gone")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProberImageExists(t *testing.T) {
	t.Parallel()

	script := NewScript().
		On("image exists alpine", Result{RC: 0}, nil).
		On("image exists nope", Result{RC: 1}, nil)

	prober := NewProber(script, nil)

	ok, err := prober.ImageExists(context.Background(), "alpine")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = prober.ImageExists(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProberVersion(t *testing.T) {
	t.Parallel()

	script := NewScript().On("--version", Result{Stdout: "podman version 4.9.3"}, nil)

	version, err := NewProber(script, nil).Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4.9.3", version)
}

func TestProberVersionUnreadable(t *testing.T) {
	t.Parallel()

	script := NewScript().On("--version", Result{Stdout: "garbage"}, nil)

	_, err := NewProber(script, nil).Version(context.Background())
	var perr *pterrors.ProbeError
	require.ErrorAs(t, err, &perr)
}

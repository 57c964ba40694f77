package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pterrors "github.com/podtend/podtend/pkg/errors"
)

const sampleManifest = `
version: "1"
name: web-stack
settings:
  executable: podman
  timeout: 120
resources:
  - kind: network
    name: backend
    network:
      subnet: 10.89.0.0/24
  - kind: container
    name: web
    state: started
    container:
      image: nginx
      publish:
        - "8080:80"
      env:
        APP_MODE: prod
  - kind: container
    name: old-web
    state: absent
`

func TestParseManifestBytes(t *testing.T) {
	t.Parallel()

	manifest, err := ParseManifestBytes([]byte(sampleManifest))
	require.NoError(t, err)

	assert.Equal(t, "web-stack", manifest.Name)
	assert.Equal(t, "podman", manifest.Settings.Executable)
	assert.Equal(t, 120, manifest.Settings.Timeout)
	require.Len(t, manifest.Resources, 3)

	network := manifest.Resources[0]
	assert.Equal(t, "network", network.Kind)
	assert.Equal(t, map[string]any{"subnet": "10.89.0.0/24"}, network.Options)

	web := manifest.Resources[1]
	assert.Equal(t, "started", web.State)
	assert.Equal(t, "nginx", web.Options["image"])
	assert.Equal(t, []any{"8080:80"}, web.Options["publish"])

	spec := web.Spec()
	assert.Equal(t, "container", string(spec.Kind))
	assert.Equal(t, "web", spec.Name)

	absent := manifest.Resources[2]
	assert.Nil(t, absent.Options)
}

func TestParseManifestFromDisk(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "podtend.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0o644))

	manifest, err := ParseManifest(path)
	require.NoError(t, err)
	assert.Len(t, manifest.Resources, 3)
}

func TestParseManifestMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ParseManifest(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	var perr *pterrors.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Path, "nope.yaml")
}

func TestParseManifestSyntaxErrorCarriesLine(t *testing.T) {
	t.Parallel()

	_, err := ParseManifestBytes([]byte("resources:\n  - kind: [broken\n"))
	require.Error(t, err)
	var perr *pterrors.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestValidateManifestRejectsBadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		manifest string
		wantKey  string
	}{
		{
			name:     "no resources",
			manifest: "name: empty\n",
			wantKey:  "resources",
		},
		{
			name:     "unknown kind",
			manifest: "resources:\n  - kind: machine\n    name: x\n",
			wantKey:  "kind",
		},
		{
			name:     "bad name",
			manifest: "resources:\n  - kind: container\n    name: \"-bad\"\n",
			wantKey:  "name",
		},
		{
			name:     "bad state",
			manifest: "resources:\n  - kind: container\n    name: web\n    state: paused\n",
			wantKey:  "state",
		},
		{
			name:     "duplicate resource",
			manifest: "resources:\n  - kind: volume\n    name: data\n  - kind: volume\n    name: data\n",
			wantKey:  "name",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseManifestBytes([]byte(tt.manifest))
			require.Error(t, err)
			var verr *pterrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Key, tt.wantKey)
		})
	}
}

package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDiffFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(
		OptionDef{Name: "driver", Compare: Exact(), Default: staticDefault(StringValue("bridge")),
			Probe: probeString("driver")},
		OptionDef{Name: "internal", Compare: Exact(), Default: staticDefault(BoolValue(false)),
			Probe: probeBool("internal")},
	)

	// Inspect omits both fields; undeclared options resolve to the
	// default on both sides and report no drift.
	st := NewProbedState(map[string]any{"name": "backend"})
	result := computeDiff(reg, map[string]Value{}, st, Defaults{})
	assert.False(t, result.Changed)

	// A declared value differing from the default is drift even when
	// inspect omits the field.
	result = computeDiff(reg, map[string]Value{"driver": StringValue("macvlan")}, st, Defaults{})
	require.True(t, result.Changed)
	assert.Equal(t, "bridge", result.Before["driver"])
	assert.Equal(t, "macvlan", result.After["driver"])
}

func TestComputeDiffSetPermutationIsNoop(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(
		OptionDef{Name: "dns", Compare: Set(), Default: staticDefault(ListValue()),
			Probe: probeStrings("dns")},
	)
	st := NewProbedState(map[string]any{"dns": []any{"10.0.0.2", "10.0.0.1"}})

	result := computeDiff(reg, map[string]Value{"dns": ListValue("10.0.0.1", "10.0.0.2")}, st, Defaults{})
	assert.False(t, result.Changed)
}

func TestComputeDiffAlwaysChangedOptions(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(
		OptionDef{Name: "env_file", Compare: Exact(), AlwaysChanged: true},
	)
	st := NewProbedState(map[string]any{"id": "x"})

	result := computeDiff(reg, map[string]Value{"env_file": ListValue("/etc/app.env")}, st, Defaults{})
	assert.True(t, result.Changed)

	result = computeDiff(reg, map[string]Value{}, st, Defaults{})
	assert.False(t, result.Changed)

	result = computeDiff(reg, map[string]Value{"env_file": ListValue()}, st, Defaults{})
	assert.False(t, result.Changed, "empty declaration must not force a change")
}

func TestComputeDiffDeviceSelfMappingEqual(t *testing.T) {
	t.Parallel()

	st := NewProbedState(map[string]any{
		"hostconfig": map[string]any{
			"networkmode": "bridge",
			"devices": []any{
				map[string]any{"pathonhost": "/dev/fuse", "pathincontainer": "/dev/fuse"},
			},
		},
	})
	desired := map[string]Value{"device": ListValue("/dev/fuse")}

	result := computeDiff(containerRegistry, desired, st, Defaults{Version: "1.9.3"})
	assert.NotContains(t, result.Before, "device")
	assert.NotContains(t, result.After, "device")
}

func TestComputeDiffAdditiveEnvMerge(t *testing.T) {
	t.Parallel()

	st := NewProbedState(map[string]any{
		"config": map[string]any{
			"env": []any{"PATH=/usr/bin", "TERM=xterm"},
		},
		"hostconfig": map[string]any{"networkmode": "bridge"},
	})

	// Extra runtime variables are preserved, not drift.
	desired := map[string]Value{"env": MapValue(map[string]string{"TERM": "xterm"})}
	result := computeDiff(containerRegistry, desired, st, Defaults{Version: "1.9.3"})
	assert.NotContains(t, result.After, "env")

	// A new declared variable is drift; the merge keeps existing ones.
	desired = map[string]Value{"env": MapValue(map[string]string{"APP_MODE": "prod"})}
	result = computeDiff(containerRegistry, desired, st, Defaults{Version: "1.9.3"})
	require.Contains(t, result.After, "env")
	assert.Contains(t, result.After["env"], "APP_MODE=prod")
	assert.Contains(t, result.After["env"], "PATH=/usr/bin")
}

func TestComputeDiffPortRangeSkipsPublish(t *testing.T) {
	t.Parallel()

	st := NewProbedState(map[string]any{
		"hostconfig": map[string]any{"networkmode": "bridge"},
	})
	desired := map[string]Value{"publish": ListValue("8000-8005:8000-8005")}

	result := computeDiff(containerRegistry, desired, st, Defaults{Version: "1.9.3"})
	assert.NotContains(t, result.After, "publish")
}

// Registry entries with no probe, default, or bespoke comparison are
// create-time flags; declaring one on an existing matching resource
// must never register drift.
func TestComputeDiffSkipsCreateOnlyOptions(t *testing.T) {
	t.Parallel()

	st := NewProbedState(map[string]any{
		"hostconfig": map[string]any{"networkmode": "bridge"},
	})
	registries := map[string]*Registry{
		"container": containerRegistry,
		"pod":       podRegistry,
		"network":   networkRegistry,
		"volume":    volumeRegistry,
		"image":     imageRegistry,
		"secret":    secretRegistry,
	}

	for kind, reg := range registries {
		for _, def := range reg.Options() {
			if def.Probe != nil || def.Default != nil || def.BeforeAfter != nil || def.AlwaysChanged {
				continue
			}
			desired := map[string]Value{def.Name: StringValue("x")}
			result := computeDiff(reg, desired, st, Defaults{Version: "1.9.3"})
			assert.NotContains(t, result.After, def.Name, "%s option %q drifts with no before side", kind, def.Name)
		}
	}
}

func TestCreationDiffListsEverythingDeclared(t *testing.T) {
	t.Parallel()

	result := creationDiff(map[string]Value{
		"image": StringValue("nginx"),
		"tty":   BoolValue(true),
	})
	assert.True(t, result.Changed)
	assert.Equal(t, "nginx", result.After["image"])
	assert.Equal(t, "true", result.After["tty"])
	assert.Empty(t, result.Before)
}

func TestDiffResultRender(t *testing.T) {
	t.Parallel()

	result := newDiffResult()
	result.record("memory", IntValue(0), IntValue(1073741824))
	out := result.Render()
	assert.Contains(t, out, "memory")
	assert.Contains(t, out, "1073741824")

	var empty *DiffResult
	assert.Empty(t, empty.Render())
}

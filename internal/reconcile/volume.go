package reconcile

import (
	"context"
)

// volumeHandler reconciles named volumes: driver, options and labels,
// with present/absent lifecycle.
type volumeHandler struct{}

func (volumeHandler) allowedStates() []State {
	return []State{StatePresent, StateAbsent}
}

func (volumeHandler) registry() *Registry {
	return volumeRegistry
}

func (volumeHandler) running(ProbedState) bool {
	return false
}

var volumeRegistry = NewRegistry(
	OptionDef{Name: "driver", Flag: "--driver", Compare: Exact(), Normalize: normalizeString,
		Default: staticDefault(StringValue("local")), Probe: probeString("driver")},
	OptionDef{Name: "opt", Flag: "--opt", Compare: Exact(), Normalize: normalizeMap,
		Default: staticDefault(MapValue(nil)), Probe: probeStrMap("options")},
	OptionDef{Name: "label", Flag: "--label", Compare: Exact(), Normalize: normalizeMap,
		BeforeAfter: additiveMap(probeStrMap("labels"))},
)

func (volumeHandler) defaults(ctx context.Context, e *Engine, _ ResourceSpec) (Defaults, error) {
	return Defaults{Version: e.toolVersion(ctx)}, nil
}

func (volumeHandler) plan(_ context.Context, _ *Engine, ev *Evaluation) (*CommandPlan, error) {
	plan := &CommandPlan{}
	name := ev.Spec.Name

	if ev.Spec.State == StateAbsent {
		if ev.Current.Exists() {
			plan.add("delete volume "+name, "volume", "rm", "-f", name)
		}
		return plan, nil
	}

	create := func(desc string) {
		args := append([]string{"volume", "create"}, flagArgs(volumeRegistry, ev.Desired)...)
		args = append(args, name)
		plan.add(desc, args...)
	}

	switch {
	case !ev.Current.Exists():
		create("create volume " + name)
	case ev.Diff.Changed:
		// Recreating a volume discards its data; there is no in-place
		// way to change driver or options.
		plan.add("remove volume "+name, "volume", "rm", "-f", name)
		create("recreate volume " + name)
	}

	return plan, nil
}

package reconcile

import (
	"context"
)

// networkHandler reconciles networks. Networks have no runtime state,
// only configuration, so the lifecycle collapses to present/absent and
// every change means recreation.
type networkHandler struct{}

func (networkHandler) allowedStates() []State {
	return []State{StatePresent, StateAbsent}
}

func (networkHandler) registry() *Registry {
	return networkRegistry
}

func (networkHandler) running(ProbedState) bool {
	return false
}

var networkRegistry = NewRegistry(
	OptionDef{Name: "driver", Flag: "--driver", Compare: Exact(), Normalize: normalizeString,
		Default: staticDefault(StringValue("bridge")), Probe: probeString("driver")},
	OptionDef{Name: "subnet", Flag: "--subnet", Compare: Caseless(), Normalize: normalizeString,
		BeforeAfter: declaredOrCurrent(probeSubnetField("subnet"))},
	OptionDef{Name: "gateway", Flag: "--gateway", Compare: Exact(), Normalize: normalizeString,
		BeforeAfter: declaredOrCurrent(probeSubnetField("gateway"))},
	OptionDef{Name: "ip_range", Flag: "--ip-range", Compare: Exact(), Normalize: normalizeString,
		BeforeAfter: declaredOrCurrent(probeSubnetField("leaserange"))},
	OptionDef{Name: "ipv6", Flag: "--ipv6", Compare: Exact(), Normalize: normalizeBool,
		Default: staticDefault(BoolValue(false)), Probe: probeBool("ipv6enabled")},
	OptionDef{Name: "internal", Flag: "--internal", Compare: Exact(), Normalize: normalizeBool,
		Default: staticDefault(BoolValue(false)), Probe: probeBool("internal")},
	OptionDef{Name: "disable_dns", Flag: "--disable-dns", Compare: Exact(), Normalize: normalizeBool,
		BeforeAfter: diffNetworkDisableDNS},
	OptionDef{Name: "opt", Flag: "--opt", Compare: Exact(), Normalize: normalizeMap,
		Default: staticDefault(MapValue(nil)), Probe: probeStrMap("options")},
	OptionDef{Name: "label", Flag: "--label", Compare: Exact(), Normalize: normalizeMap,
		BeforeAfter: additiveMap(probeStrMap("labels"))},
)

// probeSubnetField reads a field of the first configured subnet.
func probeSubnetField(field string) ProbeFunc {
	return func(st ProbedState) (Value, bool) {
		subnets, ok := st.Objects("subnets")
		if !ok || len(subnets) == 0 {
			return Value{}, false
		}
		value, _ := subnets[0][field].(string)
		if value == "" {
			return Value{}, false
		}
		return StringValue(value), true
	}
}

// disable_dns is declared inverted relative to the inspect field.
func diffNetworkDisableDNS(st ProbedState, declared Value, declaredSet bool, _ Defaults) (Value, Value, bool) {
	enabled, ok := st.Bool("dnsenabled")
	if !ok {
		return Value{}, Value{}, false
	}
	after := BoolValue(false)
	if declaredSet {
		after = declared
	}
	return BoolValue(!enabled), after, true
}

func (networkHandler) defaults(ctx context.Context, e *Engine, _ ResourceSpec) (Defaults, error) {
	return Defaults{Version: e.toolVersion(ctx)}, nil
}

func (networkHandler) plan(_ context.Context, _ *Engine, ev *Evaluation) (*CommandPlan, error) {
	plan := &CommandPlan{}
	name := ev.Spec.Name

	if ev.Spec.State == StateAbsent {
		if ev.Current.Exists() {
			plan.add("delete network "+name, "network", "rm", "-f", name)
		}
		return plan, nil
	}

	create := func(desc string) {
		args := append([]string{"network", "create"}, flagArgs(networkRegistry, ev.Desired)...)
		args = append(args, name)
		plan.add(desc, args...)
	}

	switch {
	case !ev.Current.Exists():
		create("create network " + name)
	case ev.Diff.Changed:
		plan.add("remove network "+name, "network", "rm", "-f", name)
		create("recreate network " + name)
	}

	return plan, nil
}

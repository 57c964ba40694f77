package reconcile

import (
	"context"
	"strings"
)

// podHandler reconciles pods. Pods share the container lifecycle but a
// much smaller option surface, most of it probed from the infra
// container's config.
type podHandler struct{}

func (podHandler) allowedStates() []State {
	return []State{StatePresent, StateStarted, StateStopped, StateAbsent}
}

func (podHandler) registry() *Registry {
	return podRegistry
}

func (podHandler) running(st ProbedState) bool {
	state, _ := st.Str("state")
	return strings.EqualFold(state, "running")
}

var podRegistry = NewRegistry(
	OptionDef{Name: "cgroup_parent", Flag: "--cgroup-parent", Compare: Exact(),
		Normalize: normalizeString, Default: staticDefault(StringValue("")),
		Probe: probeString("cgroupparent")},
	OptionDef{Name: "dns", Flag: "--dns", Compare: Set(), Normalize: normalizeList,
		Default: staticDefault(ListValue()), Probe: probeStrings("infraconfig", "dnsserver")},
	OptionDef{Name: "dns_opt", Flag: "--dns-opt", Compare: Set(), Normalize: normalizeList,
		Default: staticDefault(ListValue()), Probe: probeStrings("infraconfig", "dnsoption")},
	OptionDef{Name: "dns_search", Flag: "--dns-search", Compare: Set(), Normalize: normalizeList,
		Default: staticDefault(ListValue()), Probe: probeStrings("infraconfig", "dnssearch")},
	OptionDef{Name: "hostname", Flag: "--hostname", Compare: Exact(), Normalize: normalizeString,
		BeforeAfter: declaredOrCurrent(probeString("hostname"))},
	OptionDef{Name: "infra", Flag: "--infra", Compare: Exact(), Normalize: normalizeBool,
		Default: staticDefault(BoolValue(true)), Probe: probeInfraPresent},
	OptionDef{Name: "infra_image", Flag: "--infra-image", Compare: Semantic(canonImageLite),
		Normalize: normalizeString, BeforeAfter: declaredOrCurrent(probeCreateFlag("--infra-image"))},
	OptionDef{Name: "infra_name", Flag: "--infra-name", Normalize: normalizeString},
	OptionDef{Name: "label", Flag: "--label", Compare: Exact(), Normalize: normalizeMap,
		BeforeAfter: additiveMap(probeStrMap("labels"))},
	OptionDef{Name: "network", Flag: "--network", Compare: Set(), Normalize: normalizeList,
		Default: staticDefault(ListValue()), Probe: probeStrings("infraconfig", "networks")},
	OptionDef{Name: "publish", Flag: "--publish", Compare: Semantic(canonPublish),
		Normalize: normalizeList, BeforeAfter: diffPodPublish},
	OptionDef{Name: "share", Flag: "--share", Compare: Set(), Normalize: normalizeString,
		BeforeAfter: diffPodShare},
)

func probeInfraPresent(st ProbedState) (Value, bool) {
	id, ok := st.Str("infracontainerid")
	if !ok {
		return Value{}, false
	}
	return BoolValue(id != ""), true
}

// probeCreateFlag recovers a flag's value from the recorded create
// command, for options pod inspect has no field for.
func probeCreateFlag(flag string) ProbeFunc {
	return func(st ProbedState) (Value, bool) {
		argv, ok := st.Strings("createcommand")
		if !ok {
			return Value{}, false
		}
		for i, arg := range argv {
			if arg == flag && i+1 < len(argv) {
				return StringValue(argv[i+1]), true
			}
			if v, found := strings.CutPrefix(arg, flag+"="); found {
				return StringValue(v), true
			}
		}
		return Value{}, false
	}
}

func diffPodPublish(st ProbedState, declared Value, _ bool, _ Defaults) (Value, Value, bool) {
	after := declared.List()
	for _, port := range after {
		if strings.Contains(port, "-") {
			return Value{}, Value{}, false
		}
	}
	before := probedPortBindings(st, "infraconfig", "portbindings")
	return ListValue(before...), ListValue(after...), true
}

// diffPodShare compares the comma-joined share declaration against the
// probed shared namespace list.
func diffPodShare(st ProbedState, declared Value, declaredSet bool, _ Defaults) (Value, Value, bool) {
	if !declaredSet {
		return Value{}, Value{}, false
	}
	shared, _ := st.Strings("sharednamespaces")
	after := strings.Split(declared.String(), ",")
	return ListValue(shared...), ListValue(after...), true
}

func (podHandler) defaults(ctx context.Context, e *Engine, _ ResourceSpec) (Defaults, error) {
	return Defaults{Version: e.toolVersion(ctx)}, nil
}

func (h podHandler) plan(_ context.Context, _ *Engine, ev *Evaluation) (*CommandPlan, error) {
	plan := &CommandPlan{}
	name := ev.Spec.Name

	if ev.Spec.State == StateAbsent {
		if ev.Current.Exists() {
			plan.add("delete pod "+name, "pod", "rm", "-f", name)
		}
		return plan, nil
	}

	exists := ev.Current.Exists()
	changed := ev.Diff.Changed
	wantRunning := ev.Spec.State == StatePresent || ev.Spec.State == StateStarted

	create := func(desc string) {
		args := append([]string{"pod", "create", "--name", name}, flagArgs(podRegistry, ev.Desired)...)
		plan.add(desc, args...)
	}

	switch {
	case !exists:
		create("create pod " + name)
		if wantRunning {
			plan.add("start pod "+name, "pod", "start", name)
		}
	case changed:
		plan.add("remove pod "+name, "pod", "rm", "-f", name)
		create("recreate pod " + name)
		if wantRunning {
			plan.add("start pod "+name, "pod", "start", name)
		}
	case wantRunning && !ev.IsRunning:
		plan.add("start pod "+name, "pod", "start", name)
	case !wantRunning && ev.IsRunning:
		plan.add("stop pod "+name, "pod", "stop", name)
	}

	return plan, nil
}

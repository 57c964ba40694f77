package reconcile

import (
	"context"
)

// secretHandler reconciles secrets. The value is fed to the tool on
// stdin so it never appears in a command line, and drift is detected by
// reading the stored value back with --showsecret where supported.
type secretHandler struct{}

func (secretHandler) allowedStates() []State {
	return []State{StatePresent, StateAbsent}
}

func (secretHandler) registry() *Registry {
	return secretRegistry
}

func (secretHandler) running(ProbedState) bool {
	return false
}

var secretRegistry = NewRegistry(
	OptionDef{Name: "data", Compare: Exact(), Normalize: normalizeString,
		BeforeAfter: diffSecretData},
	OptionDef{Name: "driver", Flag: "--driver", Compare: Exact(), Normalize: normalizeString,
		Default: staticDefault(StringValue("file")), Probe: probeString("spec", "driver", "name")},
	OptionDef{Name: "label", Flag: "--label", Compare: Exact(), Normalize: normalizeMap,
		BeforeAfter: additiveMap(probeStrMap("spec", "labels"))},
)

// diffSecretData compares the declared value against the stored one
// read back during defaulting. When the tool cannot reveal the stored
// value the comparison is skipped rather than forcing recreation on
// every run.
func diffSecretData(_ ProbedState, declared Value, declaredSet bool, d Defaults) (Value, Value, bool) {
	if !declaredSet {
		return Value{}, Value{}, false
	}
	stored, ok := d.Extra["data"]
	if !ok {
		return Value{}, Value{}, false
	}
	return stored, declared, true
}

func (secretHandler) defaults(ctx context.Context, e *Engine, spec ResourceSpec) (Defaults, error) {
	d := Defaults{Version: e.toolVersion(ctx), Extra: map[string]Value{}}

	res, err := e.runner.Run(ctx, "secret", "inspect", "--showsecret", "--format", "{{.SecretData}}", spec.Name)
	if err == nil && res.OK() {
		d.Extra["data"] = StringValue(res.Stdout)
	}
	return d, nil
}

func (secretHandler) plan(_ context.Context, _ *Engine, ev *Evaluation) (*CommandPlan, error) {
	plan := &CommandPlan{}
	name := ev.Spec.Name

	if ev.Spec.State == StateAbsent {
		if ev.Current.Exists() {
			plan.add("delete secret "+name, "secret", "rm", name)
		}
		return plan, nil
	}

	if ev.Current.Exists() && !ev.Diff.Changed {
		return plan, nil
	}

	if ev.Current.Exists() {
		plan.add("remove secret "+name, "secret", "rm", name)
	}
	args := append([]string{"secret", "create"}, flagArgs(secretRegistry, ev.Desired)...)
	args = append(args, name, "-")
	plan.addInput("create secret "+name, []byte(ev.Desired["data"].String()), args...)
	return plan, nil
}

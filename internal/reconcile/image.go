package reconcile

import (
	"context"
	"sort"
)

// imageHandler ensures images exist (pulled or built) or are removed.
// Images carry no comparable configuration: the diff is presence
// itself, plus an explicit force knob to refresh unconditionally.
type imageHandler struct{}

func (imageHandler) allowedStates() []State {
	return []State{StatePresent, StateAbsent}
}

func (imageHandler) registry() *Registry {
	return imageRegistry
}

func (imageHandler) running(ProbedState) bool {
	return false
}

var imageRegistry = NewRegistry(
	OptionDef{Name: "force", Normalize: normalizeBool},
	OptionDef{Name: "path", Normalize: normalizeString},
	OptionDef{Name: "dockerfile", Normalize: normalizeString},
	OptionDef{Name: "build_args", Normalize: normalizeMap},
	OptionDef{Name: "tls_verify", Normalize: normalizeBool},
)

func (imageHandler) defaults(ctx context.Context, e *Engine, _ ResourceSpec) (Defaults, error) {
	return Defaults{Version: e.toolVersion(ctx)}, nil
}

func (imageHandler) plan(_ context.Context, _ *Engine, ev *Evaluation) (*CommandPlan, error) {
	plan := &CommandPlan{}
	name := ev.Spec.Name

	if ev.Spec.State == StateAbsent {
		if ev.Current.Exists() {
			plan.add("delete image "+name, "image", "rm", "-f", name)
		}
		return plan, nil
	}

	if ev.Current.Exists() && !ev.Desired["force"].Bool() {
		return plan, nil
	}

	if path, ok := ev.Desired["path"]; ok && path.String() != "" {
		args := []string{"image", "build", "--tag", name}
		if dockerfile, ok := ev.Desired["dockerfile"]; ok && dockerfile.String() != "" {
			args = append(args, "--file", dockerfile.String())
		}
		buildArgs := ev.Desired["build_args"].Map()
		keys := make([]string, 0, len(buildArgs))
		for k := range buildArgs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			args = append(args, "--build-arg", k+"="+buildArgs[k])
		}
		args = append(args, path.String())
		plan.add("build image "+name, args...)
		return plan, nil
	}

	args := []string{"image", "pull"}
	if tls, ok := ev.Desired["tls_verify"]; ok {
		args = append(args, "--tls-verify="+tls.String())
	}
	args = append(args, name)
	plan.add("pull image "+name, args...)
	return plan, nil
}

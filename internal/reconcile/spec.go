package reconcile

import (
	"fmt"

	pterrors "github.com/podtend/podtend/pkg/errors"
)

// Kind identifies the resource type a spec manages.
type Kind string

const (
	KindContainer Kind = "container"
	KindPod       Kind = "pod"
	KindNetwork   Kind = "network"
	KindVolume    Kind = "volume"
	KindImage     Kind = "image"
	KindSecret    Kind = "secret"
)

// Kinds lists every supported resource kind.
func Kinds() []Kind {
	return []Kind{KindContainer, KindPod, KindNetwork, KindVolume, KindImage, KindSecret}
}

// ParseKind validates a kind string.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", pterrors.NewValidationError("kind", fmt.Sprintf("unsupported resource kind %q", s), nil)
}

// State is the desired lifecycle directive for a resource.
type State string

const (
	StatePresent State = "present"
	StateStarted State = "started"
	StateStopped State = "stopped"
	StateAbsent  State = "absent"
)

// ParseState validates a state string; empty defaults to present.
func ParseState(s string) (State, error) {
	switch State(s) {
	case "":
		return StatePresent, nil
	case StatePresent, StateStarted, StateStopped, StateAbsent:
		return State(s), nil
	}
	return "", pterrors.NewValidationError("state", fmt.Sprintf("unsupported state %q", s), nil)
}

// ResourceSpec is the user's declared desired state for one resource
// instance. Options is the open-ended option map mirroring the external
// tool's create/run flags; it is immutable during a run.
type ResourceSpec struct {
	Kind    Kind
	Name    string
	State   State
	Options map[string]any
}

// normalizeSpec canonicalizes the declared option map against the
// kind's registry. Unknown keys and unparsable values fail with
// ValidationErrors; null-valued options are dropped.
func normalizeSpec(reg *Registry, spec ResourceSpec) (map[string]Value, error) {
	desired := make(map[string]Value, len(spec.Options))
	for key, raw := range spec.Options {
		def, ok := reg.Lookup(key)
		if !ok {
			return nil, pterrors.NewValidationError(key, fmt.Sprintf("unknown option for kind %s", spec.Kind), nil)
		}
		value, err := FromAny(key, raw)
		if err != nil {
			return nil, err
		}
		if value.IsAbsent() {
			continue
		}
		if def.Normalize != nil {
			value, err = def.Normalize(key, value)
			if err != nil {
				return nil, err
			}
		}
		desired[key] = value
	}
	return desired, nil
}

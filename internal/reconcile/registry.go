package reconcile

import (
	"strings"
)

// Defaults carries the context default functions may consult: the
// probed tool version and, for containers, the image inspect record.
// Defaults are version-aware because podman changed several baked-in
// values across releases.
type Defaults struct {
	Version string
	Image   ProbedState
	// StrictImage compares images by id instead of the lenient
	// name-based comparison.
	StrictImage bool
	// Extra holds per-run computed defaults keyed by option name
	// (memory_swap derived from the declared memory limit).
	Extra map[string]Value
}

// VersionAtLeast reports whether the probed tool version is >= major.
// Anything unparsable counts as current.
func (d Defaults) VersionAtLeast(major int) bool {
	fields := strings.SplitN(d.Version, ".", 2)
	if len(fields) == 0 || fields[0] == "" {
		return true
	}
	probed := 0
	for _, r := range fields[0] {
		if r < '0' || r > '9' {
			return true
		}
		probed = probed*10 + int(r-'0')
	}
	return probed >= major
}

// DefaultFunc produces the external tool's documented default for an
// option, or reports that no default is defined.
type DefaultFunc func(d Defaults) (Value, bool)

// ProbeFunc extracts an option's current value from probed state, or
// reports that the inspect output omits it.
type ProbeFunc func(st ProbedState) (Value, bool)

// BeforeAfterFunc overrides the standard probe/default pairing for
// options whose comparison needs bespoke construction (additive env
// merge, capability union, image id shortcut). Returning ok=false skips
// the option for this run.
type BeforeAfterFunc func(st ProbedState, declared Value, declaredSet bool, d Defaults) (before, after Value, ok bool)

// OptionDef binds one manifest option to its comparator, normalizer,
// CLI flag and defaulting rules. The registry of OptionDefs replaces
// per-field conditional logic with data-driven dispatch.
type OptionDef struct {
	// Name is the manifest option key.
	Name string
	// Flag is the CLI flag emitted for create/run; empty for options
	// handled positionally or not expressible as a single flag.
	Flag string
	// MapSep joins map entries after the flag; defaults to "=".
	// etc_hosts style options use ":".
	MapSep string
	// Compare is the field comparison strategy; a given option always
	// uses the same comparator.
	Compare Comparator
	// Normalize canonicalizes declared input at the boundary.
	Normalize NormalizeFunc
	// Default yields the tool's documented default when the option is
	// not declared.
	Default DefaultFunc
	// Probe extracts the current value from inspect output.
	Probe ProbeFunc
	// BeforeAfter, when set, supersedes Probe/Default pairing.
	BeforeAfter BeforeAfterFunc
	// LiveUpdate marks options the tool can change without recreating
	// the resource.
	LiveUpdate bool
	// AlwaysChanged marks non-idempotent options that force a change
	// whenever declared non-empty (their current value cannot be read
	// back from inspect).
	AlwaysChanged bool
}

// Registry is the enumerable option table for one resource kind.
// Iteration order is the declaration order, which also fixes CLI flag
// emission order.
type Registry struct {
	defs   []OptionDef
	byName map[string]OptionDef
}

// NewRegistry builds a registry from option definitions.
func NewRegistry(defs ...OptionDef) *Registry {
	byName := make(map[string]OptionDef, len(defs))
	for _, def := range defs {
		byName[def.Name] = def
	}
	return &Registry{defs: defs, byName: byName}
}

// Options returns the definitions in declaration order.
func (r *Registry) Options() []OptionDef {
	return r.defs
}

// Lookup finds a definition by option name.
func (r *Registry) Lookup(name string) (OptionDef, bool) {
	def, ok := r.byName[name]
	return def, ok
}

// staticDefault wraps a fixed default value.
func staticDefault(v Value) DefaultFunc {
	return func(Defaults) (Value, bool) { return v, true }
}

// Probe helpers: each adapts a typed ProbedState getter to a ProbeFunc.

func probeString(path ...string) ProbeFunc {
	return func(st ProbedState) (Value, bool) {
		s, ok := st.Str(path...)
		if !ok {
			return Value{}, false
		}
		return StringValue(s), true
	}
}

func probeBool(path ...string) ProbeFunc {
	return func(st ProbedState) (Value, bool) {
		b, ok := st.Bool(path...)
		if !ok {
			return Value{}, false
		}
		return BoolValue(b), true
	}
}

func probeInt(path ...string) ProbeFunc {
	return func(st ProbedState) (Value, bool) {
		i, ok := st.Int(path...)
		if !ok {
			return Value{}, false
		}
		return IntValue(i), true
	}
}

func probeStrings(path ...string) ProbeFunc {
	return func(st ProbedState) (Value, bool) {
		items, ok := st.Strings(path...)
		if !ok {
			return Value{}, false
		}
		return ListValue(items...), true
	}
}

func probeStrMap(path ...string) ProbeFunc {
	return func(st ProbedState) (Value, bool) {
		m, ok := st.StrMap(path...)
		if !ok {
			return Value{}, false
		}
		return MapValue(m), true
	}
}

// additiveMap compares declared map entries merged over the probed map:
// entries on the live resource that the manifest does not mention are
// preserved, never removed.
func additiveMap(probe ProbeFunc) BeforeAfterFunc {
	return func(st ProbedState, declared Value, declaredSet bool, _ Defaults) (Value, Value, bool) {
		if !declaredSet {
			return Value{}, Value{}, false
		}
		before, ok := probe(st)
		if !ok {
			before = MapValue(nil)
		}
		after := map[string]string{}
		for k, v := range before.Map() {
			after[k] = v
		}
		for k, v := range declared.Map() {
			after[k] = v
		}
		return before, MapValue(after), true
	}
}

// probePairList reads a list of "key<sep>value" strings into a map,
// the shape inspect uses for env and extra hosts.
func probePairList(sep string, path ...string) ProbeFunc {
	return func(st ProbedState) (Value, bool) {
		items, ok := st.Strings(path...)
		if !ok {
			return Value{}, false
		}
		dict := make(map[string]string, len(items))
		for _, item := range items {
			parts := strings.SplitN(item, sep, 2)
			if len(parts) == 2 {
				dict[parts[0]] = parts[1]
			} else {
				dict[parts[0]] = ""
			}
		}
		return MapValue(dict), true
	}
}

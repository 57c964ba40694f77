package reconcile

import (
	"github.com/podtend/podtend/pkg/diff"
)

// DiffResult is the diff engine's verdict: a changed flag plus the
// (before, after) pair for every differing option. Never mutated after
// creation; surfaced verbatim to the caller.
type DiffResult struct {
	Changed bool
	Before  map[string]string
	After   map[string]string
}

func newDiffResult() *DiffResult {
	return &DiffResult{Before: map[string]string{}, After: map[string]string{}}
}

func (d *DiffResult) record(name string, before, after Value) {
	d.Changed = true
	d.Before[name] = before.String()
	d.After[name] = after.String()
}

// Render formats the result as unified diff text.
func (d *DiffResult) Render() string {
	if d == nil || !d.Changed {
		return ""
	}
	return diff.RenderOptions(d.Before, d.After)
}

// computeDiff compares normalized desired state against probed current
// state, option by option in registry order.
//
// Only options the registry knows are considered, and only additively:
// keys absent from the manifest fall back to the tool's documented
// default, never to removal. When inspect omits a field entirely its
// value is taken to be that same default, so an undeclared option whose
// default matches never reports drift. This deliberately under-reports
// rather than forcing destructive recreation on inspect gaps.
func computeDiff(reg *Registry, desired map[string]Value, current ProbedState, d Defaults) *DiffResult {
	result := newDiffResult()

	for _, def := range reg.Options() {
		declared, declaredSet := desired[def.Name]

		if def.AlwaysChanged {
			if declaredSet && !declared.IsEmpty() {
				result.record(def.Name, Value{}, declared)
			}
			continue
		}

		// Options with no probe, no default and no bespoke comparison
		// are create-time flags or mode knobs; there is no before side
		// to compare against.
		if def.BeforeAfter == nil && def.Probe == nil && def.Default == nil {
			continue
		}

		var before, after Value
		if def.BeforeAfter != nil {
			b, a, ok := def.BeforeAfter(current, declared, declaredSet, d)
			if !ok {
				continue
			}
			before, after = b, a
		} else {
			if declaredSet {
				after = declared
			} else if def.Default != nil {
				dv, ok := def.Default(d)
				if !ok {
					continue
				}
				after = dv
			} else {
				continue
			}

			probed := false
			if def.Probe != nil {
				if bv, ok := def.Probe(current); ok {
					before = bv
					probed = true
				}
			}
			if !probed {
				if def.Default != nil {
					if dv, ok := def.Default(d); ok {
						before = dv
					}
				}
			}
		}

		if !def.Compare.Equal(before, after) {
			result.record(def.Name, before, after)
		}
	}

	return result
}

// creationDiff renders the diff for a resource that does not exist yet:
// everything declared is an addition.
func creationDiff(desired map[string]Value) *DiffResult {
	result := newDiffResult()
	result.Changed = true
	for name, value := range desired {
		result.After[name] = value.String()
	}
	return result
}

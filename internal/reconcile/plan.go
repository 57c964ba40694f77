package reconcile

import (
	"sort"
)

// Op is one external-tool invocation within a plan. Every op mutates
// state; read-only probing never enters a plan.
type Op struct {
	Args  []string
	Desc  string
	Stdin []byte
}

// CommandPlan is the ordered list of invocations the executor must run
// to reach the desired state. Built once per run, executed once,
// discarded.
type CommandPlan struct {
	Ops []Op
}

// Empty reports whether the plan contains no mutations.
func (p *CommandPlan) Empty() bool {
	return p == nil || len(p.Ops) == 0
}

func (p *CommandPlan) add(desc string, args ...string) {
	p.Ops = append(p.Ops, Op{Args: args, Desc: desc})
}

func (p *CommandPlan) addInput(desc string, stdin []byte, args ...string) {
	p.Ops = append(p.Ops, Op{Args: args, Desc: desc, Stdin: stdin})
}

// flagArgs renders the declared options as CLI flags in registry order.
// Only options the user declared are emitted; defaults are left to the
// tool itself.
func flagArgs(reg *Registry, desired map[string]Value) []string {
	var args []string
	for _, def := range reg.Options() {
		value, ok := desired[def.Name]
		if !ok || def.Flag == "" {
			continue
		}
		args = append(args, renderFlag(def, value)...)
	}
	return args
}

func renderFlag(def OptionDef, value Value) []string {
	switch value.Kind() {
	case ValBool:
		return []string{def.Flag + "=" + value.String()}
	case ValList:
		var args []string
		for _, item := range value.List() {
			args = append(args, def.Flag, item)
		}
		return args
	case ValMap:
		sep := def.MapSep
		if sep == "" {
			sep = "="
		}
		dict := value.Map()
		keys := make([]string, 0, len(dict))
		for k := range dict {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var args []string
		for _, k := range keys {
			args = append(args, def.Flag, k+sep+dict[k])
		}
		return args
	case ValAbsent:
		return nil
	default:
		return []string{def.Flag, value.String()}
	}
}

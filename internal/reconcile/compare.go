package reconcile

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Strategy names a field comparison policy. A given option key is bound
// to exactly one strategy for the lifetime of the registry.
type Strategy string

const (
	// StrategyExact requires identical values; lists are order-sensitive
	// (command argv, device ordering).
	StrategyExact Strategy = "exact"
	// StrategySet compares lists as sorted unique sets.
	StrategySet Strategy = "set"
	// StrategyCaseless folds strings to lower case before exact
	// comparison.
	StrategyCaseless Strategy = "caseless"
	// StrategySemantic canonicalizes each element with the bound Canon
	// function, then compares lists as sets and scalars exactly.
	StrategySemantic Strategy = "semantic"
)

// Comparator is a named comparison strategy. Equality is computed by
// canonicalizing both sides identically and comparing the results, so
// every comparator is symmetric and reflexive by construction.
type Comparator struct {
	Strategy Strategy
	Canon    func(string) string
}

// Exact returns the exact comparator.
func Exact() Comparator { return Comparator{Strategy: StrategyExact} }

// Set returns the set comparator.
func Set() Comparator { return Comparator{Strategy: StrategySet} }

// Caseless returns the case-insensitive comparator.
func Caseless() Comparator { return Comparator{Strategy: StrategyCaseless} }

// Semantic returns a comparator that canonicalizes each element with
// canon before set comparison.
func Semantic(canon func(string) string) Comparator {
	return Comparator{Strategy: StrategySemantic, Canon: canon}
}

// Equal reports whether a and b are equivalent under the strategy.
func (c Comparator) Equal(a, b Value) bool {
	return c.canonicalize(a).Equal(c.canonicalize(b))
}

func (c Comparator) canonicalize(v Value) Value {
	switch c.Strategy {
	case StrategySet:
		if v.Kind() == ValList || v.Kind() == ValString {
			return ListValue(sortedSet(v.List())...)
		}
		return v
	case StrategyCaseless:
		return foldCase(v)
	case StrategySemantic:
		canon := c.Canon
		if canon == nil {
			canon = func(s string) string { return s }
		}
		switch v.Kind() {
		case ValList, ValString:
			items := lo.Map(v.List(), func(item string, _ int) string { return canon(item) })
			return ListValue(sortedSet(items)...)
		case ValMap:
			dict := v.Map()
			for k, val := range dict {
				dict[k] = canon(val)
			}
			return MapValue(dict)
		default:
			return v
		}
	default:
		return v
	}
}

func sortedSet(items []string) []string {
	unique := lo.Uniq(items)
	sort.Strings(unique)
	return unique
}

func foldCase(v Value) Value {
	switch v.Kind() {
	case ValString:
		return StringValue(strings.ToLower(v.String()))
	case ValList:
		items := lo.Map(v.List(), func(item string, _ int) string { return strings.ToLower(item) })
		return ListValue(items...)
	case ValMap:
		dict := map[string]string{}
		for k, val := range v.Map() {
			dict[strings.ToLower(k)] = strings.ToLower(val)
		}
		return MapValue(dict)
	default:
		return v
	}
}

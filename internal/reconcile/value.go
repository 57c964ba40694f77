// Package reconcile implements the idempotency engine: it normalizes a
// declared resource specification, diffs it against probed runtime
// state, plans the least destructive set of CLI invocations that closes
// the gap, and executes them.
package reconcile

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	pterrors "github.com/podtend/podtend/pkg/errors"
)

// ValueKind discriminates the arms of Value.
type ValueKind int

const (
	// ValAbsent is the zero Value; it compares equal only to itself.
	ValAbsent ValueKind = iota
	ValString
	ValBool
	ValInt
	ValFloat
	ValList
	ValMap
)

// Value is the variant type carried through the pipeline. Raw manifest
// input is converted exactly once, at the normalizer boundary; nothing
// downstream type-switches on untyped data.
type Value struct {
	kind ValueKind
	str  string
	b    bool
	i    int64
	f    float64
	list []string
	dict map[string]string
}

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: ValString, str: s} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{kind: ValBool, b: b} }

// IntValue wraps an integer.
func IntValue(i int64) Value { return Value{kind: ValInt, i: i} }

// FloatValue wraps a float.
func FloatValue(f float64) Value { return Value{kind: ValFloat, f: f} }

// ListValue wraps a list of strings.
func ListValue(items ...string) Value {
	return Value{kind: ValList, list: append([]string(nil), items...)}
}

// MapValue wraps a string map.
func MapValue(m map[string]string) Value {
	copied := make(map[string]string, len(m))
	for k, v := range m {
		copied[k] = v
	}
	return Value{kind: ValMap, dict: copied}
}

// Kind returns the value's arm.
func (v Value) Kind() ValueKind { return v.kind }

// IsAbsent reports whether the value is the zero Value.
func (v Value) IsAbsent() bool { return v.kind == ValAbsent }

// IsEmpty reports whether the value is absent or an empty string, list
// or map. Used for the always-changed policy on non-idempotent options.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case ValAbsent:
		return true
	case ValString:
		return v.str == ""
	case ValList:
		return len(v.list) == 0
	case ValMap:
		return len(v.dict) == 0
	default:
		return false
	}
}

// Bool returns the bool arm; false for any other kind.
func (v Value) Bool() bool { return v.kind == ValBool && v.b }

// Int returns the integer arm; zero for any other kind.
func (v Value) Int() int64 {
	if v.kind == ValInt {
		return v.i
	}
	return 0
}

// Float returns the float arm, widening an integer value.
func (v Value) Float() float64 {
	switch v.kind {
	case ValFloat:
		return v.f
	case ValInt:
		return float64(v.i)
	default:
		return 0
	}
}

// List returns a copy of the list arm. A string value is returned as a
// one-element list so scalar shorthand in manifests works.
func (v Value) List() []string {
	switch v.kind {
	case ValList:
		return append([]string(nil), v.list...)
	case ValString:
		return []string{v.str}
	default:
		return nil
	}
}

// Map returns a copy of the map arm.
func (v Value) Map() map[string]string {
	if v.kind != ValMap {
		return nil
	}
	copied := make(map[string]string, len(v.dict))
	for k, val := range v.dict {
		copied[k] = val
	}
	return copied
}

// String renders the value for diffs and logs. Lists keep their
// declaration order (argv order matters); maps render with sorted keys.
func (v Value) String() string {
	switch v.kind {
	case ValAbsent:
		return ""
	case ValString:
		return v.str
	case ValBool:
		return strconv.FormatBool(v.b)
	case ValInt:
		return strconv.FormatInt(v.i, 10)
	case ValFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case ValList:
		return "[" + strings.Join(v.list, ", ") + "]"
	case ValMap:
		keys := make([]string, 0, len(v.dict))
		for k := range v.dict {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+v.dict[k])
		}
		return "{" + strings.Join(pairs, ", ") + "}"
	}
	return ""
}

// Equal reports exact equality: same kind, same payload. List equality
// is order-sensitive here; set semantics belong to the comparator.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ValAbsent:
		return true
	case ValString:
		return v.str == o.str
	case ValBool:
		return v.b == o.b
	case ValInt:
		return v.i == o.i
	case ValFloat:
		return v.f == o.f
	case ValList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	case ValMap:
		if len(v.dict) != len(o.dict) {
			return false
		}
		for k, val := range v.dict {
			if o.dict[k] != val {
				return false
			}
		}
		return true
	}
	return false
}

// FromAny converts decoded YAML input to a Value. Unsupported shapes
// (nested lists, non-scalar map values) fail with a ValidationError
// naming the option key; nothing is silently coerced.
func FromAny(key string, raw any) (Value, error) {
	switch typed := raw.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return typed, nil
	case string:
		return StringValue(typed), nil
	case bool:
		return BoolValue(typed), nil
	case int:
		return IntValue(int64(typed)), nil
	case int64:
		return IntValue(typed), nil
	case uint64:
		return IntValue(int64(typed)), nil
	case float64:
		return FloatValue(typed), nil
	case []string:
		return ListValue(typed...), nil
	case []any:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			s, ok := scalarString(item)
			if !ok {
				return Value{}, pterrors.NewValidationError(key, fmt.Sprintf("list element %v is not a scalar", item), nil)
			}
			items = append(items, s)
		}
		return ListValue(items...), nil
	case map[string]string:
		return MapValue(typed), nil
	case map[string]any:
		dict := make(map[string]string, len(typed))
		for k, item := range typed {
			s, ok := scalarString(item)
			if !ok {
				return Value{}, pterrors.NewValidationError(key, fmt.Sprintf("map value for %q is not a scalar", k), nil)
			}
			dict[k] = s
		}
		return MapValue(dict), nil
	default:
		return Value{}, pterrors.NewValidationError(key, fmt.Sprintf("unsupported value type %T", raw), nil)
	}
}

func scalarString(v any) (string, bool) {
	switch typed := v.(type) {
	case string:
		return typed, true
	case bool:
		return strconv.FormatBool(typed), true
	case int:
		return strconv.Itoa(typed), true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	default:
		return "", false
	}
}

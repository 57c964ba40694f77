package reconcile

import (
	"encoding/json"
	"strconv"
)

// ProbedState is the normalized snapshot of what currently exists, as
// reported by inspect. Keys are lower-cased by the prober; paths here
// are therefore always lower case. Produced fresh each run, never
// persisted.
type ProbedState struct {
	raw map[string]any
}

// NewProbedState wraps a decoded inspect record. A nil map represents
// an absent resource.
func NewProbedState(raw map[string]any) ProbedState {
	return ProbedState{raw: raw}
}

// Exists reports whether the resource was found at probe time.
func (s ProbedState) Exists() bool {
	return s.raw != nil
}

// Raw returns the underlying record for result payloads.
func (s ProbedState) Raw() map[string]any {
	return s.raw
}

// Lookup walks nested objects along path.
func (s ProbedState) Lookup(path ...string) (any, bool) {
	var current any = s.raw
	if s.raw == nil {
		return nil, false
	}
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// Str returns the string at path.
func (s ProbedState) Str(path ...string) (string, bool) {
	v, ok := s.Lookup(path...)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// Bool returns the bool at path.
func (s ProbedState) Bool(path ...string) (bool, bool) {
	v, ok := s.Lookup(path...)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Int returns the integer at path, accepting the numeric shapes JSON
// decoding produces.
func (s ProbedState) Int(path ...string) (int64, bool) {
	v, ok := s.Lookup(path...)
	if !ok {
		return 0, false
	}
	switch typed := v.(type) {
	case float64:
		return int64(typed), true
	case int64:
		return typed, true
	case int:
		return int64(typed), true
	case json.Number:
		i, err := typed.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(typed, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// Strings returns the string list at path.
func (s ProbedState) Strings(path ...string) ([]string, bool) {
	v, ok := s.Lookup(path...)
	if !ok {
		return nil, false
	}
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, str)
	}
	return out, true
}

// StrMap returns the string map at path.
func (s ProbedState) StrMap(path ...string) (map[string]string, bool) {
	v, ok := s.Lookup(path...)
	if !ok {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(obj))
	for k, item := range obj {
		str, ok := item.(string)
		if !ok {
			return nil, false
		}
		out[k] = str
	}
	return out, true
}

// Objects returns the list of objects at path, for structured inspect
// fields like mounts and devices.
func (s ProbedState) Objects(path ...string) ([]map[string]any, bool) {
	v, ok := s.Lookup(path...)
	if !ok {
		return nil, false
	}
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		out = append(out, obj)
	}
	return out, true
}

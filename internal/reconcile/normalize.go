package reconcile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/docker/go-units"

	pterrors "github.com/podtend/podtend/pkg/errors"
)

// NormalizeFunc canonicalizes a declared value at the pipeline boundary.
// Failures are ValidationErrors naming the offending key.
type NormalizeFunc func(key string, v Value) (Value, error)

// normalizeString accepts strings and renders scalars to strings.
func normalizeString(key string, v Value) (Value, error) {
	switch v.Kind() {
	case ValString, ValAbsent:
		return v, nil
	case ValBool, ValInt, ValFloat:
		return StringValue(v.String()), nil
	default:
		return Value{}, pterrors.NewValidationError(key, fmt.Sprintf("expected a string, got %s", v.String()), nil)
	}
}

// normalizeBool folds boolean-like external representations
// ("true"/"yes"/"1"/"on" and their negatives) to a single bool type.
func normalizeBool(key string, v Value) (Value, error) {
	switch v.Kind() {
	case ValBool, ValAbsent:
		return v, nil
	case ValString:
		switch strings.ToLower(v.String()) {
		case "true", "yes", "1", "on":
			return BoolValue(true), nil
		case "false", "no", "0", "off":
			return BoolValue(false), nil
		}
		return Value{}, pterrors.NewValidationError(key, fmt.Sprintf("cannot interpret %q as a boolean", v.String()), nil)
	case ValInt:
		return BoolValue(v.Int() != 0), nil
	default:
		return Value{}, pterrors.NewValidationError(key, "expected a boolean", nil)
	}
}

// normalizeInt accepts integers and numeric strings.
func normalizeInt(key string, v Value) (Value, error) {
	switch v.Kind() {
	case ValInt, ValAbsent:
		return v, nil
	case ValString:
		i, err := strconv.ParseInt(v.String(), 10, 64)
		if err != nil {
			return Value{}, pterrors.NewValidationError(key, fmt.Sprintf("cannot parse %q as an integer", v.String()), err)
		}
		return IntValue(i), nil
	case ValFloat:
		return IntValue(int64(v.Float())), nil
	default:
		return Value{}, pterrors.NewValidationError(key, "expected an integer", nil)
	}
}

// normalizeFloat accepts floats, integers and numeric strings.
func normalizeFloat(key string, v Value) (Value, error) {
	switch v.Kind() {
	case ValFloat, ValInt, ValAbsent:
		return v, nil
	case ValString:
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return Value{}, pterrors.NewValidationError(key, fmt.Sprintf("cannot parse %q as a number", v.String()), err)
		}
		return FloatValue(f), nil
	default:
		return Value{}, pterrors.NewValidationError(key, "expected a number", nil)
	}
}

// normalizeSize converts human size strings ("100mb", "2g") to a
// canonical byte count before comparison.
func normalizeSize(key string, v Value) (Value, error) {
	switch v.Kind() {
	case ValInt, ValAbsent:
		return v, nil
	case ValString:
		bytes, err := units.RAMInBytes(v.String())
		if err != nil {
			return Value{}, pterrors.NewValidationError(key, fmt.Sprintf("cannot parse size %q", v.String()), err)
		}
		return IntValue(bytes), nil
	default:
		return Value{}, pterrors.NewValidationError(key, "expected a size string or byte count", nil)
	}
}

// normalizeList accepts lists and single-string shorthand.
func normalizeList(key string, v Value) (Value, error) {
	switch v.Kind() {
	case ValList, ValAbsent:
		return v, nil
	case ValString:
		return ListValue(v.String()), nil
	default:
		return Value{}, pterrors.NewValidationError(key, "expected a list of strings", nil)
	}
}

// normalizeMap accepts string maps only.
func normalizeMap(key string, v Value) (Value, error) {
	switch v.Kind() {
	case ValMap, ValAbsent:
		return v, nil
	default:
		return Value{}, pterrors.NewValidationError(key, "expected a mapping", nil)
	}
}

// normalizeLogOpt normalizes the logging option group. Sub-keys
// normalize independently: max_size converts to a canonical byte count,
// path and tag stay verbatim.
func normalizeLogOpt(key string, v Value) (Value, error) {
	normalized, err := normalizeMap(key, v)
	if err != nil || normalized.IsAbsent() {
		return normalized, err
	}
	dict := normalized.Map()
	for _, sizeKey := range []string{"max_size", "max-size"} {
		raw, ok := dict[sizeKey]
		if !ok {
			continue
		}
		bytes, err := units.RAMInBytes(raw)
		if err != nil {
			return Value{}, pterrors.NewValidationError(key, fmt.Sprintf("cannot parse size %q for %s", raw, sizeKey), err)
		}
		delete(dict, sizeKey)
		dict["max-size"] = strconv.FormatInt(bytes, 10)
	}
	return MapValue(dict), nil
}

// canonDevice maps a bare host path onto its implicit self-mapping, so
// "/dev/fuse" and "/dev/fuse:/dev/fuse" compare equal. A permission
// suffix is ignored.
func canonDevice(s string) string {
	parts := strings.Split(s, ":")
	host := parts[0]
	container := host
	if len(parts) > 1 && parts[1] != "" {
		container = parts[1]
	}
	return host + ":" + container
}

// canonVolume keeps the host:container part of a volume mapping and
// cleans doubled and trailing slashes on both sides.
func canonVolume(s string) string {
	parts := strings.Split(s, ":")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	for i, p := range parts {
		parts[i] = cleanPath(p)
	}
	return strings.Join(parts, ":")
}

func cleanPath(s string) string {
	cleaned := strings.ReplaceAll(s, "//", "/")
	if len(cleaned) > 1 {
		cleaned = strings.TrimRight(cleaned, "/")
	}
	return cleaned
}

// canonPublish elides the default protocol suffix and the implicit
// all-interfaces host binding, so "0.0.0.0:8080:80/tcp" and "8080:80"
// compare equal.
func canonPublish(s string) string {
	canon := strings.TrimSuffix(s, "/tcp")
	canon = strings.TrimPrefix(canon, "0.0.0.0:")
	return strings.Trim(canon, ":")
}

// canonCap folds capability spellings to the kernel's cap_* form.
func canonCap(s string) string {
	lowered := strings.ToLower(s)
	return "cap_" + strings.TrimPrefix(lowered, "cap_")
}

// signalNumbers maps signal names to their numeric form; inspect output
// and manifests use either spelling interchangeably.
var signalNumbers = map[string]string{
	"sighup": "1", "sigint": "2", "sigquit": "3", "sigill": "4",
	"sigtrap": "5", "sigabrt": "6", "sigiot": "6", "sigbus": "7",
	"sigfpe": "8", "sigkill": "9", "sigusr1": "10", "sigsegv": "11",
	"sigusr2": "12", "sigpipe": "13", "sigalrm": "14", "sigterm": "15",
	"sigstkflt": "16", "sigchld": "17", "sigcont": "18", "sigstop": "19",
	"sigtstp": "20", "sigttin": "21", "sigttou": "22", "sigurg": "23",
	"sigxcpu": "24", "sigxfsz": "25", "sigvtalrm": "26", "sigprof": "27",
	"sigwinch": "28", "sigio": "29", "sigpwr": "30", "sigsys": "31",
}

// canonSignal maps signal names and numbers to one canonical numeric
// form.
func canonSignal(s string) string {
	if s == "" {
		return s
	}
	if _, err := strconv.Atoi(s); err == nil {
		return s
	}
	name := strings.ToLower(s)
	if !strings.HasPrefix(name, "sig") {
		name = "sig" + name
	}
	if num, ok := signalNumbers[name]; ok {
		return num
	}
	return name
}

// canonImageLite strips the :latest tag and any registry prefix, the
// "lite" comparison mode that treats the same image name from different
// registries as equal.
func canonImageLite(s string) string {
	canon := strings.TrimSuffix(s, ":latest")
	if idx := strings.LastIndex(canon, "/"); idx >= 0 {
		canon = canon[idx+1:]
	}
	return canon
}

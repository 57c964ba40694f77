package podman

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/podtend/podtend/internal/logger"
	pterrors "github.com/podtend/podtend/pkg/errors"
)

// inspectVerbs maps a resource kind to the subcommand that inspects it.
var inspectVerbs = map[string][]string{
	"container": {"container", "inspect"},
	"pod":       {"pod", "inspect"},
	"network":   {"network", "inspect"},
	"volume":    {"volume", "inspect"},
	"image":     {"image", "inspect"},
	"secret":    {"secret", "inspect"},
}

// Prober reads current runtime state through inspect/list commands.
// Strictly read-only; an absent resource is a NotFoundError, never a
// ProbeError.
type Prober struct {
	runner Runner
	log    *logger.Logger
}

// NewProber creates a Prober over the given runner.
func NewProber(runner Runner, log *logger.Logger) *Prober {
	return &Prober{runner: runner, log: log}
}

// Inspect returns the inspect record of the named resource with all
// object keys folded to lower case. Both a non-zero exit and an empty
// JSON list signal absence and map to NotFoundError.
func (p *Prober) Inspect(ctx context.Context, kind, name string) (map[string]any, error) {
	verbs, ok := inspectVerbs[kind]
	if !ok {
		return nil, pterrors.NewProbeError("", fmt.Sprintf("unknown resource kind %q", kind), nil)
	}

	res, err := p.runner.Run(ctx, append(append([]string(nil), verbs...), name)...)
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, pterrors.NewNotFoundError(kind, name)
	}

	record, err := decodeInspect(res.Stdout)
	if err != nil {
		return nil, pterrors.NewProbeError("", fmt.Sprintf("unparsable inspect output for %s %q", kind, name), err)
	}
	if record == nil {
		return nil, pterrors.NewNotFoundError(kind, name)
	}

	p.log.WithResource(kind, name).Debug("probed current state")
	lowered, _ := lowerKeys(record).(map[string]any)
	return lowered, nil
}

// Exists reports whether the named resource is present.
func (p *Prober) Exists(ctx context.Context, kind, name string) (bool, error) {
	_, err := p.Inspect(ctx, kind, name)
	if err != nil {
		if pterrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ImageExists uses `image exists`, which exits non-zero for a missing
// image without writing an error.
func (p *Prober) ImageExists(ctx context.Context, image string) (bool, error) {
	res, err := p.runner.Run(ctx, "image", "exists", image)
	if err != nil {
		return false, err
	}
	return res.OK(), nil
}

// Version returns the tool version string, e.g. "4.9.3".
func (p *Prober) Version(ctx context.Context) (string, error) {
	res, err := p.runner.Run(ctx, "--version")
	if err != nil {
		return "", err
	}
	if !res.OK() || !strings.Contains(res.Stdout, "version") {
		return "", pterrors.NewProbeError("", "cannot read tool version", nil)
	}
	parts := strings.SplitN(res.Stdout, "version", 2)
	return strings.TrimSpace(parts[1]), nil
}

// decodeInspect accepts both inspect output shapes: a JSON list of
// records (container, image, network) and a bare record (older pod
// inspect). An empty list decodes to nil.
func decodeInspect(out string) (map[string]any, error) {
	trimmed := strings.TrimSpace(out)
	if trimmed == "" || trimmed == "[]" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var records []map[string]any
		if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, nil
		}
		return records[0], nil
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(trimmed), &record); err != nil {
		return nil, err
	}
	return record, nil
}

// lowerKeys recursively folds object keys to lower case so option
// lookups do not depend on inspect field casing, which varies across
// podman versions.
func lowerKeys(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		lowered := make(map[string]any, len(typed))
		for k, val := range typed {
			lowered[strings.ToLower(k)] = lowerKeys(val)
		}
		return lowered
	case []any:
		out := make([]any, len(typed))
		for i, val := range typed {
			out[i] = lowerKeys(val)
		}
		return out
	default:
		return v
	}
}

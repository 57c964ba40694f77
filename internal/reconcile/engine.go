package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/podtend/podtend/internal/logger"
	"github.com/podtend/podtend/internal/podman"
	pterrors "github.com/podtend/podtend/pkg/errors"
)

// Phase tracks a resource's progress through the pipeline. Transitions
// are strictly forward; Noop and Failed are terminal.
type Phase int

const (
	PhaseInitial Phase = iota
	PhaseProbed
	PhaseDiffed
	PhasePlanned
	PhaseExecuted
	PhaseNoop
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseInitial:
		return "initial"
	case PhaseProbed:
		return "probed"
	case PhaseDiffed:
		return "diffed"
	case PhasePlanned:
		return "planned"
	case PhaseExecuted:
		return "executed"
	case PhaseNoop:
		return "noop"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// Evaluation is the read-only assessment of one resource: probed state,
// normalized desired state, the diff verdict and the command plan.
// Produced by Evaluate, consumed by Apply.
type Evaluation struct {
	Spec      ResourceSpec
	Desired   map[string]Value
	Current   ProbedState
	Defaults  Defaults
	Diff      *DiffResult
	Plan      *CommandPlan
	Phase     Phase
	IsRunning bool
}

// Result is the structured outcome reported to the caller.
type Result struct {
	Kind     Kind
	Name     string
	Changed  bool
	Failed   bool
	Message  string
	Diff     *DiffResult
	Actions  []string
	Resource map[string]any
	Stdout   string
	Stderr   string
	Err      error
}

// Config fixes the engine's external-tool binding for one run. There is
// no global state: executable discovery and flags are explicit here.
type Config struct {
	Executable string
	GlobalArgs []string
	Timeout    time.Duration
	DryRun     bool
	Logger     *logger.Logger
	// Runner overrides the CLI runner; tests inject a scripted one.
	Runner podman.Runner
}

// inputRunner is implemented by runners that can feed stdin to an
// invocation (secret values).
type inputRunner interface {
	RunInput(ctx context.Context, input []byte, args ...string) (podman.Result, error)
}

// kindHandler supplies the per-kind pieces of the pipeline: the option
// registry, lifecycle semantics and command planning.
type kindHandler interface {
	registry() *Registry
	allowedStates() []State
	defaults(ctx context.Context, e *Engine, spec ResourceSpec) (Defaults, error)
	running(st ProbedState) bool
	plan(ctx context.Context, e *Engine, ev *Evaluation) (*CommandPlan, error)
}

// Engine drives the reconciliation pipeline. Single-threaded: one
// resource per Reconcile call, strictly sequential stages.
type Engine struct {
	executable string
	runner     podman.Runner
	prober     *podman.Prober
	log        *logger.Logger
	dryRun     bool
	handlers   map[Kind]kindHandler

	version       string
	versionProbed bool
}

// New constructs an Engine from explicit configuration.
func New(cfg Config) *Engine {
	executable := cfg.Executable
	if executable == "" {
		executable = "podman"
	}
	runner := cfg.Runner
	if runner == nil {
		runner = podman.NewCLI(podman.CLIOptions{
			Executable: executable,
			GlobalArgs: cfg.GlobalArgs,
			Timeout:    cfg.Timeout,
			Logger:     cfg.Logger,
		})
	}
	return &Engine{
		executable: executable,
		runner:     runner,
		prober:     podman.NewProber(runner, cfg.Logger),
		log:        cfg.Logger,
		dryRun:     cfg.DryRun,
		handlers: map[Kind]kindHandler{
			KindContainer: containerHandler{},
			KindPod:       podHandler{},
			KindNetwork:   networkHandler{},
			KindVolume:    volumeHandler{},
			KindImage:     imageHandler{},
			KindSecret:    secretHandler{},
		},
	}
}

// Reconcile runs the full pipeline for one resource and reports the
// structured outcome. Failures at any stage short-circuit to a failed
// result carrying the diff computed so far; nothing is retried.
func (e *Engine) Reconcile(ctx context.Context, spec ResourceSpec) *Result {
	ev, err := e.Evaluate(ctx, spec)
	if err != nil {
		res := &Result{Kind: spec.Kind, Name: spec.Name, Failed: true, Message: err.Error(), Err: err}
		if ev != nil {
			res.Diff = ev.Diff
		}
		return res
	}
	return e.Apply(ctx, ev)
}

// Evaluate performs the strictly read-only stages: probe, normalize,
// diff, plan. It never mutates external state.
func (e *Engine) Evaluate(ctx context.Context, spec ResourceSpec) (*Evaluation, error) {
	h, ok := e.handlers[spec.Kind]
	if !ok {
		return nil, pterrors.NewValidationError("kind", fmt.Sprintf("unsupported resource kind %q", spec.Kind), nil)
	}
	if spec.Name == "" {
		return nil, pterrors.NewValidationError("name", "resource name is required", nil)
	}
	if spec.State == "" {
		spec.State = StatePresent
	}
	if !stateAllowed(h.allowedStates(), spec.State) {
		return nil, pterrors.NewValidationError("state",
			fmt.Sprintf("state %q is not supported for kind %s", spec.State, spec.Kind), nil)
	}

	ev := &Evaluation{Spec: spec, Phase: PhaseInitial}
	log := e.log.WithResource(string(spec.Kind), spec.Name)

	desired, err := normalizeSpec(h.registry(), spec)
	if err != nil {
		return ev, err
	}
	ev.Desired = desired

	raw, err := e.prober.Inspect(ctx, string(spec.Kind), spec.Name)
	if err != nil && !pterrors.IsNotFound(err) {
		return ev, err
	}
	ev.Current = NewProbedState(raw)
	ev.Phase = PhaseProbed
	ev.IsRunning = ev.Current.Exists() && h.running(ev.Current)

	switch {
	case !ev.Current.Exists() && spec.State == StateAbsent:
		ev.Diff = newDiffResult()
		ev.Plan = &CommandPlan{}
		ev.Phase = PhaseNoop
		log.Debug("absent and desired absent, nothing to do")
		return ev, nil
	case !ev.Current.Exists():
		ev.Diff = creationDiff(desired)
	case spec.State == StateAbsent:
		ev.Diff = newDiffResult()
		ev.Diff.record("state", StringValue("present"), StringValue("absent"))
	default:
		d, err := h.defaults(ctx, e, spec)
		if err != nil {
			return ev, err
		}
		ev.Defaults = d
		ev.Diff = computeDiff(h.registry(), desired, ev.Current, d)
	}
	ev.Phase = PhaseDiffed

	plan, err := h.plan(ctx, e, ev)
	if err != nil {
		return ev, err
	}
	ev.Plan = plan
	if plan.Empty() {
		ev.Phase = PhaseNoop
	} else {
		ev.Phase = PhasePlanned
	}
	log.WithFields(map[string]any{"phase": ev.Phase.String(), "changed": ev.Diff.Changed}).Debug("evaluation complete")
	return ev, nil
}

// Apply executes the evaluation's plan in order, aborting on the first
// failed invocation. With no planned mutations it reports changed=false
// and issues zero mutating invocations.
func (e *Engine) Apply(ctx context.Context, ev *Evaluation) *Result {
	res := &Result{Kind: ev.Spec.Kind, Name: ev.Spec.Name, Diff: ev.Diff}

	if ev.Plan.Empty() {
		res.Message = fmt.Sprintf("%s %s already in desired state", ev.Spec.Kind, ev.Spec.Name)
		res.Resource = ev.Current.Raw()
		return res
	}

	if e.dryRun {
		res.Changed = true
		for _, op := range ev.Plan.Ops {
			res.Actions = append(res.Actions, e.renderAction(op))
		}
		res.Message = fmt.Sprintf("would perform %d action(s)", len(ev.Plan.Ops))
		res.Resource = ev.Current.Raw()
		return res
	}

	var performed []string
	for _, op := range ev.Plan.Ops {
		r, err := e.runOp(ctx, op)
		if r.Cmd != "" {
			res.Actions = append(res.Actions, r.Cmd)
		}
		res.Stdout, res.Stderr = r.Stdout, r.Stderr
		if err == nil && !r.OK() {
			err = pterrors.NewExecutionError(r.Cmd, r.RC, r.Stdout, r.Stderr)
		}
		if err != nil {
			ev.Phase = PhaseFailed
			res.Failed = true
			res.Err = err
			res.Message = fmt.Sprintf("cannot %s: %v", op.Desc, err)
			e.log.WithResource(string(ev.Spec.Kind), ev.Spec.Name).Error(err, "plan execution aborted")
			return res
		}
		performed = append(performed, op.Desc)
	}
	ev.Phase = PhaseExecuted

	res.Changed = true
	res.Message = strings.Join(performed, ", ")

	if ev.Spec.State != StateAbsent {
		if raw, err := e.prober.Inspect(ctx, string(ev.Spec.Kind), ev.Spec.Name); err == nil {
			res.Resource = raw
		}
	}
	return res
}

// Info runs an info-only query. Unlike Reconcile, an absent resource is
// surfaced as a failure here.
func (e *Engine) Info(ctx context.Context, kind Kind, name string) (map[string]any, error) {
	return e.prober.Inspect(ctx, string(kind), name)
}

func (e *Engine) runOp(ctx context.Context, op Op) (podman.Result, error) {
	if len(op.Stdin) > 0 {
		if ir, ok := e.runner.(inputRunner); ok {
			return ir.RunInput(ctx, op.Stdin, op.Args...)
		}
	}
	return e.runner.Run(ctx, op.Args...)
}

func (e *Engine) renderAction(op Op) string {
	return shellquote.Join(append([]string{e.executable}, op.Args...)...)
}

// toolVersion lazily probes and caches the external tool version for
// the lifetime of this engine. Probe failures degrade to an empty
// version, which the defaults layer treats as current.
func (e *Engine) toolVersion(ctx context.Context) string {
	if e.versionProbed {
		return e.version
	}
	e.versionProbed = true
	version, err := e.prober.Version(ctx)
	if err != nil {
		e.log.Warn("cannot determine tool version, assuming current defaults")
		return ""
	}
	e.version = version
	return version
}

func stateAllowed(allowed []State, state State) bool {
	for _, s := range allowed {
		if s == state {
			return true
		}
	}
	return false
}

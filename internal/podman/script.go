package podman

import (
	"context"
	"strings"
	"sync"

	"github.com/kballard/go-shellquote"
)

// Script is an in-memory Runner that replays canned results, keyed by
// the joined argument string. Tests across packages use it to exercise
// the pipeline without a podman binary. Unmatched invocations succeed
// with empty output so probes and mutations not under test stay inert.
type Script struct {
	mu     sync.Mutex
	rules  map[string]scriptRule
	calls  []string
	inputs []string
}

type scriptRule struct {
	res Result
	err error
}

// NewScript creates an empty Script.
func NewScript() *Script {
	return &Script{rules: map[string]scriptRule{}}
}

// On registers the result returned when args join to cmd exactly.
func (s *Script) On(cmd string, res Result, err error) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[cmd] = scriptRule{res: res, err: err}
	return s
}

// Run implements Runner.
func (s *Script) Run(_ context.Context, args ...string) (Result, error) {
	joined := strings.Join(args, " ")

	s.mu.Lock()
	s.calls = append(s.calls, joined)
	rule, ok := s.rules[joined]
	s.mu.Unlock()

	if !ok {
		return Result{Cmd: shellquote.Join(append([]string{"podman"}, args...)...)}, nil
	}
	res := rule.res
	if res.Cmd == "" {
		res.Cmd = shellquote.Join(append([]string{"podman"}, args...)...)
	}
	return res, rule.err
}

// RunInput implements the optional stdin-capable runner. The input is
// recorded alongside the call for assertions.
func (s *Script) RunInput(ctx context.Context, input []byte, args ...string) (Result, error) {
	s.mu.Lock()
	s.inputs = append(s.inputs, string(input))
	s.mu.Unlock()
	return s.Run(ctx, args...)
}

// Inputs returns the stdin payloads seen by RunInput, in order.
func (s *Script) Inputs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.inputs...)
}

// Calls returns every invocation seen, in order, as joined argument
// strings.
func (s *Script) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

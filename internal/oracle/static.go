package oracle

import (
	"context"
	"strings"
	"sync"
)

// Call records one Predict invocation on a Static oracle.
type Call struct {
	Sequence []string
	Position int
	TopK     int
}

// Static is a deterministic Oracle backed by a lookup table of masked
// sequences. It is meant for tests and offline demos.
type Static struct {
	mu       sync.Mutex
	rules    map[string][]string
	fallback []string
	err      error
	calls    []Call
}

// NewStatic returns a Static oracle that answers fallback for any sequence
// without a rule.
func NewStatic(fallback ...string) *Static {
	return &Static{rules: make(map[string][]string), fallback: fallback}
}

// Set registers the candidates returned when tokens are queried with
// position masked.
func (s *Static) Set(tokens []string, position int, candidates ...string) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[key(Masked(tokens, position))] = candidates
	return s
}

// FailWith makes every subsequent Predict return err. A nil err restores
// normal behaviour.
func (s *Static) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls returns the invocations seen so far.
func (s *Static) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Predict implements Oracle.
func (s *Static) Predict(ctx context.Context, sequence []string, position, topK int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := make([]string, len(sequence))
	copy(seq, sequence)
	s.calls = append(s.calls, Call{Sequence: seq, Position: position, TopK: topK})
	if s.err != nil {
		return nil, s.err
	}
	if c, ok := s.rules[key(sequence)]; ok {
		return truncate(c, topK), nil
	}
	return truncate(s.fallback, topK), nil
}

func key(seq []string) string { return strings.Join(seq, "\x1f") }

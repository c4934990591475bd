package bt

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// spyNode replays scripted results and counts calls. The last result repeats.
type spyNode struct {
	name    string
	results []NodeState
	state   NodeState
	ticks   int
	ends    int
}

func newSpy(name string, results ...NodeState) *spyNode {
	return &spyNode{name: name, results: results}
}

func (s *spyNode) Tick(*Blackboard) NodeState {
	idx := min(s.ticks, len(s.results)-1)
	s.ticks++
	s.state = s.results[idx]
	return s.state
}

func (s *spyNode) End() {
	s.ends++
	if s.state == Running {
		s.state = NotStarted
	}
}

func (s *spyNode) GetState() NodeState { return s.state }
func (s *spyNode) GetName() string     { return s.name }

// countingPredicate returns a predicate with a fixed result and its call counter.
func countingPredicate(result bool) (func() bool, *int) {
	calls := new(int)
	return func() bool {
		*calls++
		return result
	}, calls
}

// countdownScheduler completes each task after a fixed number of polls.
type countdownScheduler struct {
	polls     int
	remaining map[uuid.UUID]int
	errs      map[uuid.UUID]error
	failWith  error
	submitted int
	cancelled []uuid.UUID
	released  []uuid.UUID
}

func newCountdownScheduler(polls int) *countdownScheduler {
	return &countdownScheduler{
		polls:     polls,
		remaining: make(map[uuid.UUID]int),
		errs:      make(map[uuid.UUID]error),
	}
}

func (s *countdownScheduler) Submit(Work) uuid.UUID {
	h := uuid.New()
	s.remaining[h] = s.polls
	s.submitted++
	return h
}

func (s *countdownScheduler) IsComplete(h uuid.UUID) bool {
	r, ok := s.remaining[h]
	if !ok || r == 0 {
		if ok && s.failWith != nil {
			s.errs[h] = s.failWith
		}
		return true
	}
	s.remaining[h] = r - 1
	return false
}

func (s *countdownScheduler) Cancel(h uuid.UUID) {
	s.cancelled = append(s.cancelled, h)
	delete(s.remaining, h)
}

func (s *countdownScheduler) Err(h uuid.UUID) error { return s.errs[h] }

func (s *countdownScheduler) Release(h uuid.UUID) {
	s.released = append(s.released, h)
	delete(s.remaining, h)
	delete(s.errs, h)
}

// recoverErr runs fn and returns the error it panicked with.
func recoverErr(t *testing.T, fn func()) (err error) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		e, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		err = e
	}()
	fn()
	return nil
}

func requireIs(t *testing.T, err, target error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, target), "got %v, want %v", err, target)
}

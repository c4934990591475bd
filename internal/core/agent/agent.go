package agent

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/observability/log"
)

const defaultHistoryLimit = 64

// BranchState is the state of one root branch after a tick.
type BranchState struct {
	Name  string       `json:"name"`
	State bt.NodeState `json:"state"`
}

// DecisionRecord describes one step of an agent.
type DecisionRecord struct {
	Tick     uint64        `json:"tick"`
	State    bt.NodeState  `json:"state"`
	Branches []BranchState `json:"branches"`
	Duration time.Duration `json:"duration"`
	At       time.Time     `json:"at"`
}

// Agent owns one tree and steps it: sensors first, then a single tick, then
// any cooperative work the tick queued. Steps are serialized so the tree is
// never ticked from two goroutines at once.
type Agent struct {
	mu sync.Mutex

	id      uuid.UUID
	name    string
	tree    *bt.Tree
	sensors []Sensor
	pump    Pumper

	history      []DecisionRecord
	historyLimit int

	clock  func() time.Time
	logger log.Log
}

type Option func(*Agent)

func WithID(id uuid.UUID) Option {
	return func(a *Agent) { a.id = id }
}

func WithSensors(sensors ...Sensor) Option {
	return func(a *Agent) { a.sensors = append(a.sensors, sensors...) }
}

// WithPump runs p after every tick.
func WithPump(p Pumper) Option {
	return func(a *Agent) { a.pump = p }
}

// WithHistoryLimit bounds the kept decision records; zero or less keeps none.
func WithHistoryLimit(n int) Option {
	return func(a *Agent) { a.historyLimit = n }
}

func WithClock(clock func() time.Time) Option {
	return func(a *Agent) { a.clock = clock }
}

func WithLogger(l log.Log) Option {
	return func(a *Agent) { a.logger = l }
}

// New creates an agent driving tree.
func New(name string, tree *bt.Tree, opts ...Option) *Agent {
	a := &Agent{
		id:           uuid.New(),
		name:         name,
		tree:         tree,
		historyLimit: defaultHistoryLimit,
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = log.NewNop()
	}
	a.logger = a.logger.With(log.String("agent", a.name), log.String("agent_id", a.id.String()))
	return a
}

func (a *Agent) ID() uuid.UUID { return a.id }

func (a *Agent) Name() string { return a.name }

func (a *Agent) Tree() *bt.Tree { return a.tree }

func (a *Agent) Blackboard() *bt.Blackboard { return a.tree.Blackboard() }

// Step runs one sense-think cycle.
func (a *Agent) Step(ctx context.Context) (DecisionRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return DecisionRecord{}, err
	}

	bb := a.tree.Blackboard()
	for _, s := range a.sensors {
		if err := s.Update(ctx, bb); err != nil {
			a.logger.Warn("sensor update failed", log.String("sensor", s.Name()), log.Error(err))
			return DecisionRecord{}, fmt.Errorf("agent %s: sensor %s: %w", a.name, s.Name(), err)
		}
	}

	began := a.clock()
	state := a.tree.Tick()
	took := a.clock().Sub(began)

	if a.pump != nil {
		a.pump.RunPending(ctx)
	}

	rec := DecisionRecord{
		Tick:     a.tree.Ticks(),
		State:    state,
		Branches: branches(a.tree),
		Duration: took,
		At:       began,
	}
	a.record(rec)
	return rec, nil
}

func branches(t *bt.Tree) []BranchState {
	children := t.Children()
	out := make([]BranchState, len(children))
	for i, ch := range children {
		out[i] = BranchState{Name: ch.GetName(), State: ch.GetState()}
	}
	return out
}

func (a *Agent) record(rec DecisionRecord) {
	if a.historyLimit <= 0 {
		return
	}
	a.history = append(a.history, rec)
	if over := len(a.history) - a.historyLimit; over > 0 {
		a.history = slices.Delete(a.history, 0, over)
	}
}

// History returns the kept decision records, oldest first.
func (a *Agent) History() []DecisionRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.history)
}

// Last returns the most recent decision record.
func (a *Agent) Last() (DecisionRecord, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.history) == 0 {
		return DecisionRecord{}, false
	}
	return a.history[len(a.history)-1], true
}

// BlackboardKeys returns the sorted blackboard keys, read under the step lock.
func (a *Agent) BlackboardKeys() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tree.Blackboard().Keys()
}

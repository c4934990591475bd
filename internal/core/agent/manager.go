package agent

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/behave/internal/core/events/bus"
	"github.com/zeusync/behave/internal/core/observability/log"
)

var (
	ErrAgentExists   = errors.New("agent already registered")
	ErrAgentNotFound = errors.New("agent not found")
)

// Decision is published after every agent step.
type Decision struct {
	Agent  *Agent
	Record DecisionRecord
	Err    error
}

type ManagerConfig struct {
	// Concurrency caps how many agents step at once; zero or less means all.
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// Manager steps many agents together. Agents step concurrently, each on a
// single goroutine per step, and one Step call runs at a time.
type Manager struct {
	mu     sync.RWMutex
	agents map[uuid.UUID]*Agent
	order  []uuid.UUID

	stepMu    sync.Mutex
	cfg       ManagerConfig
	metrics   *Metrics
	decisions *bus.Bus[Decision]
	logger    log.Log
}

// NewManager creates a manager. metrics may be nil.
func NewManager(cfg ManagerConfig, logger log.Log, metrics *Metrics) *Manager {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Manager{
		agents:    make(map[uuid.UUID]*Agent),
		cfg:       cfg,
		metrics:   metrics,
		decisions: bus.New[Decision](),
		logger:    logger.With(log.String("component", "agent_manager")),
	}
}

// Decisions is the feed of step outcomes. Handlers run on the stepping
// goroutines, concurrently for different agents.
func (m *Manager) Decisions() *bus.Bus[Decision] { return m.decisions }

func (m *Manager) Add(a *Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.agents[a.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrAgentExists, a.ID())
	}
	m.agents[a.ID()] = a
	m.order = append(m.order, a.ID())
	m.logger.Debug("agent added", log.String("agent", a.Name()), log.String("agent_id", a.ID().String()))
	return nil
}

func (m *Manager) Remove(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.agents[id]; !ok {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	}
	delete(m.agents, id)
	m.order = slices.DeleteFunc(m.order, func(v uuid.UUID) bool { return v == id })
	return nil
}

func (m *Manager) Get(id uuid.UUID) (*Agent, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.agents[id]
	return a, ok
}

// Agents returns agents in insertion order.
func (m *Manager) Agents() []*Agent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Agent, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.agents[id])
	}
	return out
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.agents)
}

// Step steps every agent once. A failing agent does not stop the others;
// all failures are joined into the returned error.
func (m *Manager) Step(ctx context.Context) error {
	m.stepMu.Lock()
	defer m.stepMu.Unlock()

	agents := m.Agents()
	errs := make([]error, len(agents))

	var g errgroup.Group
	if m.cfg.Concurrency > 0 {
		g.SetLimit(m.cfg.Concurrency)
	}
	for i, a := range agents {
		g.Go(func() error {
			rec, err := a.Step(ctx)
			m.metrics.Observe(a.Tree().GetName(), rec.Duration, err)
			if err != nil {
				errs[i] = err
			}
			if perr := m.decisions.Publish(Decision{Agent: a, Record: rec, Err: err}); perr != nil {
				m.logger.Debug("decision handler failed", log.String("agent", a.Name()), log.Error(perr))
			}
			return nil
		})
	}
	_ = g.Wait()

	err := errors.Join(errs...)
	if err != nil {
		m.logger.Warn("step finished with errors", log.Error(err))
	}
	return err
}

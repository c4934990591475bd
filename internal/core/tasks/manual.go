package tasks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/zeusync/behave/internal/core/bt"
)

type manualTask struct {
	work bt.Work
	done bool
	err  error
}

// Manual is a cooperative scheduler: submitted work only runs when the host
// calls RunPending, typically between ticks on the tick goroutine. Cancelled
// work never runs.
type Manual struct {
	mu    sync.Mutex
	queue []uuid.UUID
	tasks map[uuid.UUID]*manualTask
}

var (
	_ bt.Scheduler  = (*Manual)(nil)
	_ bt.TaskErrors = (*Manual)(nil)
	_ bt.Releaser   = (*Manual)(nil)
)

func NewManual() *Manual {
	return &Manual{tasks: make(map[uuid.UUID]*manualTask)}
}

func (m *Manual) Submit(work bt.Work) uuid.UUID {
	handle := uuid.New()
	m.mu.Lock()
	m.tasks[handle] = &manualTask{work: work}
	m.queue = append(m.queue, handle)
	m.mu.Unlock()
	return handle
}

// RunPending runs the work queued so far, in submission order, and returns
// how many ran. Work submitted while running waits for the next call.
func (m *Manual) RunPending(ctx context.Context) int {
	m.mu.Lock()
	queue := m.queue
	m.queue = nil
	m.mu.Unlock()

	ran := 0
	for _, handle := range queue {
		if ctx.Err() != nil {
			m.requeue(handle)
			continue
		}
		m.mu.Lock()
		t := m.tasks[handle]
		m.mu.Unlock()
		if t == nil || t.done {
			continue
		}

		err := run(ctx, t.work)

		m.mu.Lock()
		t.done = true
		t.err = err
		t.work = nil
		m.mu.Unlock()
		ran++
	}
	return ran
}

func (m *Manual) requeue(handle uuid.UUID) {
	m.mu.Lock()
	if _, ok := m.tasks[handle]; ok {
		m.queue = append(m.queue, handle)
	}
	m.mu.Unlock()
}

// IsComplete reports whether the work has run. Unknown handles are complete.
func (m *Manual) IsComplete(handle uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[handle]
	return !ok || t.done
}

// Cancel forgets the handle; the work is skipped if it has not run yet.
func (m *Manual) Cancel(handle uuid.UUID) {
	m.mu.Lock()
	delete(m.tasks, handle)
	m.mu.Unlock()
}

func (m *Manual) Err(handle uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[handle]; ok {
		return t.err
	}
	return nil
}

func (m *Manual) Release(handle uuid.UUID) {
	m.mu.Lock()
	if t, ok := m.tasks[handle]; ok && t.done {
		delete(m.tasks, handle)
	}
	m.mu.Unlock()
}

// Pending returns the number of queued tasks that have not run.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.done {
			n++
		}
	}
	return n
}

package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/observability/log"
)

var ErrPoolClosed = errors.New("task pool is closed")

type poolTask struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Pool runs work on goroutines, at most limit at a time. Submit never blocks:
// work waiting for a free slot is already tracked and can be cancelled.
type Pool struct {
	mu     sync.Mutex
	tasks  map[uuid.UUID]*poolTask
	closed bool

	sem    chan struct{}
	group  errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
	logger log.Log
}

var (
	_ bt.Scheduler  = (*Pool)(nil)
	_ bt.TaskErrors = (*Pool)(nil)
	_ bt.Releaser   = (*Pool)(nil)
)

// NewPool creates a pool. A limit of zero or less means unbounded.
func NewPool(limit int, logger log.Log) *Pool {
	if logger == nil {
		logger = log.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		tasks:  make(map[uuid.UUID]*poolTask),
		ctx:    ctx,
		cancel: cancel,
		logger: logger.With(log.String("component", "task_pool")),
	}
	if limit > 0 {
		p.sem = make(chan struct{}, limit)
	}
	return p
}

func (p *Pool) Submit(work bt.Work) uuid.UUID {
	handle := uuid.New()
	t := &poolTask{done: make(chan struct{})}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		t.err = ErrPoolClosed
		t.cancel = func() {}
		close(t.done)
		p.tasks[handle] = t
		return handle
	}

	ctx, cancel := context.WithCancel(p.ctx)
	t.cancel = cancel
	p.tasks[handle] = t

	p.group.Go(func() error {
		defer close(t.done)
		defer cancel()

		if p.sem != nil {
			select {
			case p.sem <- struct{}{}:
				defer func() { <-p.sem }()
			case <-ctx.Done():
				t.err = ctx.Err()
				return nil
			}
		}

		t.err = run(ctx, work)
		switch {
		case t.err == nil:
		case errors.Is(t.err, context.Canceled):
			p.logger.Debug("task cancelled", log.String("handle", handle.String()))
		default:
			p.logger.Warn("task failed", log.String("handle", handle.String()), log.Error(t.err))
		}
		return nil
	})
	return handle
}

func run(ctx context.Context, work bt.Work) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return work(ctx)
}

func (p *Pool) lookup(handle uuid.UUID) *poolTask {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tasks[handle]
}

// IsComplete reports whether the work finished. Unknown handles are complete.
func (p *Pool) IsComplete(handle uuid.UUID) bool {
	t := p.lookup(handle)
	if t == nil {
		return true
	}
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Cancel cancels the work's context and forgets the handle. It does not wait.
func (p *Pool) Cancel(handle uuid.UUID) {
	p.mu.Lock()
	t := p.tasks[handle]
	delete(p.tasks, handle)
	p.mu.Unlock()

	if t != nil {
		t.cancel()
	}
}

// Err returns the error of completed work; nil while running or when unknown.
func (p *Pool) Err(handle uuid.UUID) error {
	t := p.lookup(handle)
	if t == nil {
		return nil
	}
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Release drops the bookkeeping of completed work.
func (p *Pool) Release(handle uuid.UUID) {
	if !p.IsComplete(handle) {
		return
	}
	p.mu.Lock()
	delete(p.tasks, handle)
	p.mu.Unlock()
}

// Len returns the number of tracked tasks, finished or not.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tasks)
}

// Close cancels all outstanding work and waits for it to return. Later
// submissions complete immediately with ErrPoolClosed.
func (p *Pool) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	return p.group.Wait()
}

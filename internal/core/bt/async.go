package bt

import (
	"context"

	"github.com/google/uuid"
)

// Work is a unit of background work handed to a Scheduler. It must return
// promptly once ctx is cancelled.
type Work func(ctx context.Context) error

// Scheduler runs Work outside the tick goroutine. None of its methods may
// block on the work itself.
type Scheduler interface {
	// Submit starts work and returns its handle.
	Submit(work Work) uuid.UUID
	// IsComplete polls the task. Unknown handles count as complete.
	IsComplete(handle uuid.UUID) bool
	// Cancel requests cancellation and forgets the handle. It does not wait.
	Cancel(handle uuid.UUID)
}

// TaskErrors is implemented by schedulers that keep the result of completed work.
type TaskErrors interface {
	Err(handle uuid.UUID) error
}

// Releaser is implemented by schedulers that keep bookkeeping for completed
// work until told to drop it.
type Releaser interface {
	Release(handle uuid.UUID)
}

// AsyncTask submits its work when a pass starts and stays Running until the
// scheduler reports completion. Ending the task while the work is still
// outstanding cancels it, so no background work outlives the pass.
type AsyncTask struct {
	lifecycle
	scheduler Scheduler
	work      Work
	handle    uuid.UUID
}

func NewAsyncTask(name string, scheduler Scheduler, work Work) *AsyncTask {
	if scheduler == nil {
		panic(structural(ErrNilScheduler, name))
	}
	if work == nil {
		panic(structural(ErrNilCallback, name))
	}
	a := &AsyncTask{scheduler: scheduler, work: work}
	a.init(name, a)
	return a
}

// Handle returns the outstanding task handle, or uuid.Nil when idle.
func (a *AsyncTask) Handle() uuid.UUID { return a.handle }

func (a *AsyncTask) start(*Blackboard) {
	a.handle = a.scheduler.Submit(a.work)
}

func (a *AsyncTask) update(*Blackboard) {
	if !a.scheduler.IsComplete(a.handle) {
		a.state = Running
		return
	}
	a.state = Succeeded
	if te, ok := a.scheduler.(TaskErrors); ok && te.Err(a.handle) != nil {
		a.state = Failed
	}
}

func (a *AsyncTask) end() {
	if a.handle == uuid.Nil {
		return
	}
	handle := a.handle
	a.handle = uuid.Nil
	if !a.scheduler.IsComplete(handle) {
		a.scheduler.Cancel(handle)
		return
	}
	if r, ok := a.scheduler.(Releaser); ok {
		r.Release(handle)
	}
}

package bt

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noWork(context.Context) error { return nil }

func TestAsyncTaskCompletes(t *testing.T) {
	bb := NewBlackboard()
	sched := newCountdownScheduler(2)
	task := NewAsyncTask("task", sched, noWork)

	assert.Equal(t, Running, task.Tick(bb))
	assert.NotEqual(t, uuid.Nil, task.Handle())
	assert.Equal(t, Running, task.Tick(bb))
	assert.Equal(t, Succeeded, task.Tick(bb))

	assert.Equal(t, 1, sched.submitted)
	assert.Empty(t, sched.cancelled)
	assert.Len(t, sched.released, 1)
	assert.Equal(t, uuid.Nil, task.Handle())
}

func TestAsyncTaskFailsOnWorkError(t *testing.T) {
	sched := newCountdownScheduler(0)
	sched.failWith = errors.New("boom")
	task := NewAsyncTask("task", sched, noWork)

	assert.Equal(t, Failed, task.Tick(NewBlackboard()))
}

func TestAsyncTaskEndCancelsOnce(t *testing.T) {
	sched := newCountdownScheduler(5)
	task := NewAsyncTask("task", sched, noWork)

	require.Equal(t, Running, task.Tick(NewBlackboard()))
	handle := task.Handle()

	task.End()
	task.End()

	assert.Equal(t, []uuid.UUID{handle}, sched.cancelled)
	assert.Empty(t, sched.released)
	assert.Equal(t, NotStarted, task.GetState())
	assert.Equal(t, uuid.Nil, task.Handle())
}

func TestAsyncTaskResubmitsOnNextPass(t *testing.T) {
	bb := NewBlackboard()
	sched := newCountdownScheduler(0)
	task := NewAsyncTask("task", sched, noWork)

	assert.Equal(t, Succeeded, task.Tick(bb))
	assert.Equal(t, Succeeded, task.Tick(bb))
	assert.Equal(t, 2, sched.submitted)
}

func TestAsyncTaskAbortedBySequence(t *testing.T) {
	bb := NewBlackboard()
	sched := newCountdownScheduler(5)
	task := NewAsyncTask("task", sched, noWork)
	seq := NewSequence("seq", newSpy("ok", Succeeded), task)

	require.Equal(t, Running, seq.Tick(bb))
	seq.End()
	assert.Len(t, sched.cancelled, 1)
}

func TestAsyncTaskConstructorPanics(t *testing.T) {
	requireIs(t, recoverErr(t, func() { NewAsyncTask("t", nil, noWork) }), ErrNilScheduler)
	requireIs(t, recoverErr(t, func() { NewAsyncTask("t", newCountdownScheduler(0), nil) }), ErrNilCallback)
}

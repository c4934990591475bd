package bus

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	b := New[string]()
	var got []string
	sub := b.Subscribe(func(ev string) error {
		got = append(got, ev)
		return nil
	})
	assert.NotEmpty(t, sub.ID())
	assert.Equal(t, 1, b.Len())

	require.NoError(t, b.Publish("a"))
	require.NoError(t, b.Publish("b"))
	assert.Equal(t, []string{"a", "b"}, got)

	sub.Cancel()
	sub.Cancel()
	assert.Equal(t, 0, b.Len())
	require.NoError(t, b.Publish("c"))
	assert.Len(t, got, 2)
}

func TestPublishJoinsHandlerErrors(t *testing.T) {
	b := New[int]()
	first := errors.New("first")
	second := errors.New("second")
	b.Subscribe(func(int) error { return first })
	b.Subscribe(func(int) error { return second })
	b.Subscribe(func(int) error { return nil })

	err := b.Publish(1)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}

func TestConcurrentPublish(t *testing.T) {
	b := New[int]()
	var count atomic.Int64
	b.Subscribe(func(int) error {
		count.Add(1)
		return nil
	})

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Publish(i)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), count.Load())
}

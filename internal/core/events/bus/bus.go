package bus

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Handler consumes a published event. Errors are joined and returned to the publisher.
type Handler[T any] func(event T) error

// Bus is a thread-safe, in-process fan-out of typed events.
//
// Delivery is synchronous: Publish calls every handler on the caller's
// goroutine, in no particular order. Handlers should return quickly or hand
// the event off.
type Bus[T any] struct {
	mu       sync.RWMutex
	handlers map[string]Handler[T]
}

func New[T any]() *Bus[T] {
	return &Bus[T]{handlers: make(map[string]Handler[T])}
}

// Subscription is a handle used to stop receiving events.
type Subscription struct {
	id     string
	cancel func()
	once   sync.Once
}

func (s *Subscription) ID() string { return s.id }

// Cancel unsubscribes. It is safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

func (b *Bus[T]) Subscribe(h Handler[T]) *Subscription {
	id := uuid.NewString()
	b.mu.Lock()
	b.handlers[id] = h
	b.mu.Unlock()

	return &Subscription{id: id, cancel: func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}}
}

// Publish delivers event to all current subscribers.
func (b *Bus[T]) Publish(event T) error {
	b.mu.RLock()
	if len(b.handlers) == 0 {
		b.mu.RUnlock()
		return nil
	}
	handlers := make([]Handler[T], 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of active subscriptions.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

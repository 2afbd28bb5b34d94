package broadcast

import (
	"context"
	"sync"
)

// Value is an observable cell: it holds the latest value and pushes every
// change to subscribers. New subscribers immediately receive the current value.
type Value[T any] struct {
	mu      sync.RWMutex
	current T
	subs    map[chan T]struct{}
}

// NewValue creates a cell holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		current: initial,
		subs:    make(map[chan T]struct{}),
	}
}

// Load returns the current value.
func (v *Value[T]) Load() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// Store replaces the value and notifies subscribers.
// Slow subscribers only ever see the latest value: a pending, unread
// value is replaced rather than queued.
func (v *Value[T]) Store(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.current = val
	for ch := range v.subs {
		select {
		case <-ch:
		default:
		}
		ch <- val
	}
}

// Subscribe returns a channel carrying the current value and then every
// update until ctx is done, at which point the channel is closed.
func (v *Value[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	v.mu.Lock()
	ch <- v.current
	v.subs[ch] = struct{}{}
	v.mu.Unlock()

	go func() {
		<-ctx.Done()
		v.mu.Lock()
		delete(v.subs, ch)
		close(ch)
		v.mu.Unlock()
	}()

	return ch
}

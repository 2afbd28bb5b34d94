package broadcast

import (
	"context"
	"errors"
)

var (
	// ErrBroadcasterClosed indicates the broadcaster no longer accepts messages.
	ErrBroadcasterClosed = errors.New("broadcast: broadcaster closed")
	// ErrSubscriberClosed indicates the subscriber has been closed.
	ErrSubscriberClosed = errors.New("broadcast: subscriber closed")
)

// Message wraps broadcast data.
type Message[T any] struct {
	Data T
}

// Broadcaster sends messages to every active subscriber.
type Broadcaster[T any] interface {
	Subscribe(ctx context.Context) Subscriber[T]
	Broadcast(ctx context.Context, msg Message[T]) error
	Close() error
}

// Subscriber receives broadcast messages.
type Subscriber[T any] interface {
	Receive(ctx context.Context) <-chan Message[T]
	Close() error
}

package async

import (
	"context"
	"time"
)

// ExecFuture is a Future for side effects that only report an error.
type ExecFuture struct {
	f *Future[struct{}]
}

// Exec runs fn in its own goroutine. Fire-and-forget callers may drop the
// returned future; the goroutine finishes on its own.
func Exec[T any](ctx context.Context, param T, fn func(context.Context, T) error) *ExecFuture {
	return &ExecFuture{f: Async(ctx, param, func(ctx context.Context, p T) (struct{}, error) {
		return struct{}{}, fn(ctx, p)
	})}
}

// Await blocks until fn returns.
func (e *ExecFuture) Await() error {
	_, err := e.f.Await()
	return err
}

// AwaitWithTimeout returns ErrTimeout if fn is still running after timeout.
func (e *ExecFuture) AwaitWithTimeout(timeout time.Duration) error {
	_, err := e.f.AwaitWithTimeout(timeout)
	return err
}

// Done is closed once fn returns.
func (e *ExecFuture) Done() <-chan struct{} {
	return e.f.Done()
}

// IsComplete reports whether fn has returned.
func (e *ExecFuture) IsComplete() bool {
	return e.f.IsComplete()
}

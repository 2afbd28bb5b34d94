// Package async runs a function in its own goroutine and hands back a typed
// Future for its result.
//
//	fut := async.Async(ctx, refreshToken, func(ctx context.Context, token string) (bool, error) {
//		return refresh(ctx, token)
//	})
//	ok, err := fut.AwaitWithTimeout(5 * time.Second)
//	if errors.Is(err, async.ErrTimeout) {
//		// the refresh keeps running; its result is dropped for this caller
//	}
//
// Exec is the error-only variant for fire-and-forget side effects such as
// notifying the backend of a logout.
//
// # Timeouts Are Races
//
// AwaitWithTimeout and AwaitContext stop waiting; they do not cancel the
// computation. A result that arrives after the caller gave up is dropped by
// that caller. Cancellation of the computation itself is the job of the
// context passed to Async: if it is already done, fn is never called.
//
// Resolved builds a completed Future for fast paths that need no goroutine.
package async

// Package redis connects to Redis and provides a Redis-backed store.Store.
//
// A Redis store lets a server-side companion of the back-office client (a
// kiosk, a BFF, several CLI hosts) share one session. Every session key is
// namespaced with a prefix so several sessions can share one database:
//
//	client, err := redis.Connect(ctx, redis.Config{
//		ConnectionURL: "redis://localhost:6379/0",
//		RetryAttempts: 3,
//		RetryInterval: time.Second,
//		ConnectTimeout: 10 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	s := redis.NewStore(client, "backoffice:alice:")
//
// Connect validates the URL (redis:// or rediss://), retries the initial
// PING with a linearly growing interval, and honors context cancellation.
// Healthcheck returns a probe suitable for readiness checks.
//
// # Expiration
//
// WithTTL sets an expiration on every write. Refresh tokens are long-lived
// but not eternal, so a TTL slightly above the backend's refresh-token
// lifetime keeps abandoned sessions from accumulating.
//
// # Errors
//
//   - ErrInvalidURL: malformed URL or a scheme other than redis:// and rediss://
//   - ErrNotReady: no successful PING within the retry budget
//   - ErrEmptyURL: no URL configured
//   - ErrHealthcheckFailed: healthcheck PING failed
//
// Store read/write failures wrap store.ErrUnavailable; a missing key is
// store.ErrNotFound.
package redis

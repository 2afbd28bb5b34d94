// Package session manages the authenticated session of a back-office client.
//
// A Manager is the single owner of the session: it exchanges credentials
// for an access/refresh token pair, persists both in a store.Store so the
// session survives restarts, decodes the access token into roles and
// permissions, refreshes silently when the access token expires, and tears
// everything down on logout with an optional one-shot reason for the login
// view.
//
// # Lifecycle
//
//	anonymous -> valid -> expired -> refreshing -> valid | anonymous
//
// Expiry is detected lazily whenever the session is checked; nothing runs in
// the background. IsAuthenticated is optimistic: an expired access token
// still counts while a refresh token exists. EnsureAuthenticated is the real
// gate and performs the refresh:
//
//	mgr, err := session.New(apiClient, fileStore,
//		session.WithNavigator(nav),
//		session.WithLogger(log),
//	)
//	if err != nil {
//		return err
//	}
//
//	if err := mgr.LoginWithCredentials(ctx, "alice", password); errors.Is(err, session.ErrInvalidCredentials) {
//		// show auth.login.invalid_credentials
//	}
//
//	ok, _ := mgr.EnsureAuthenticated(ctx).Await()
//	if ok && mgr.HasAny("orders.read") {
//		// ...
//	}
//
// # Refresh
//
// TryRefreshWithTimeout races the refresh request against a timeout (5s by
// default). Losing the race reports false; the request itself is not
// canceled. Concurrent refreshes share one request. When the refresh behind
// EnsureAuthenticated fails, the manager forces a logout with
// ReasonReconnect.
//
// # Storage failures
//
// The store is wrapped with store.Tolerant: unreadable keys are absent and
// failed writes are dropped, so a broken store yields an anonymous session
// instead of errors.
//
// # Observing state
//
// Subscribe streams State snapshots; consumers such as menus or guards
// react to them instead of polling.
package session

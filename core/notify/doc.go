// Package notify follows the back-office notification stream.
//
// The backend pushes badge counters ("3 new orders") as server-sent events
// on GET /api/notifications/stream. A Stream keeps one connection open,
// reconnecting after failures with the server's retry hint and the last
// seen event id, and fans the decoded badges out to subscribers:
//
//	st := notify.New(apiURL, httpClient, mgr)
//	sub := st.Subscribe(ctx)
//	go func() { _ = st.Run(ctx) }()
//	for msg := range sub.Receive(ctx) {
//		fmt.Println(msg.Data.Type, msg.Data.Count)
//	}
//
// Before each (re)connect the stream checks whether the session's last
// refresh is stale and, if so, re-authenticates first. Run returns
// ErrNotAuthenticated once the session can no longer be restored.
package notify

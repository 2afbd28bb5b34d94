// Package broadcast fans values out to subscribers in-process.
//
// Two shapes are provided:
//
//   - MemoryBroadcaster[T] carries events. Each subscriber has a bounded
//     buffer; when it is full, further messages for that subscriber are
//     dropped instead of blocking the sender. The notification stream uses
//     it for badge updates.
//   - Value[T] carries state. A subscriber first receives the current value
//     and afterwards only the latest one, so a slow reader never sees a
//     stale backlog. The session manager publishes its State through it.
//
// Both remove a subscriber when the context passed to Subscribe is done and
// close its channel, so ranging over the channel ends cleanly:
//
//	bus := broadcast.NewMemoryBroadcaster[notify.Badge](16)
//	sub := bus.Subscribe(ctx)
//	for msg := range sub.Receive(ctx) {
//		render(msg.Data)
//	}
//
// Closing a MemoryBroadcaster closes every subscriber; later broadcasts are
// ignored.
package broadcast

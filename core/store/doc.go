// Package store provides the durable key-value storage that keeps a
// back-office session alive across restarts.
//
// All values are whole strings written per key; there are no partial
// updates, so concurrent writers can only race at key granularity and the
// last write wins.
//
// # Backends
//
//   - Memory: process-local, for tests and ephemeral sessions.
//   - File: a single JSON document written atomically (temp file + rename)
//     with 0600 permissions, optionally encrypted with a passphrase
//     (Argon2id key derivation, XChaCha20-Poly1305). File.Watch reports
//     changes made by other processes.
//   - Redis and SQLite backends live under integration/database.
//
// # Unavailable Storage
//
// Tolerant wraps any Store so that a broken backend never crashes the
// session: read failures look like absent keys and write failures are
// logged and dropped. A session on top of an unavailable store simply
// behaves as permanently anonymous.
//
//	s := store.Tolerant(fileStore, log)
//	v, err := s.Get(ctx, store.KeyAccessToken) // err is nil or ErrNotFound
package store

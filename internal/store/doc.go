// Package store provides persistent storage for quill using SQLite.
//
// # Architecture
//
// The store package splits persistence into two interfaces:
//
//   - AccountStore: registered accounts keyed by a unique identity
//   - EntryStore: append-only journal entries owned by an account
//
// Store combines both with Ping and Close. SQLiteStore implements Store in a
// single struct; MockStore is an in-memory implementation for tests.
//
// # Concurrency
//
// Identity uniqueness is enforced by a UNIQUE constraint, so two concurrent
// registrations for the same identity produce exactly one account. The loser
// receives ErrDuplicateIdentity.
//
// # Timestamps
//
// Timestamps are stored as fixed-width UTC strings so that ORDER BY created_at
// sorts chronologically.
package store

// ABOUTME: Package store provides SQLite-backed persistence for taskline.
// ABOUTME: Holds users, tasks, conversations, and messages.

// Package store defines the persistence layer for taskline.
//
// All entities are keyed by opaque UUID strings and scoped to an owning
// user. Task reads and mutations always take the owner ID alongside the
// task ID so a caller can never observe another user's rows; a lookup
// that misses for either reason returns ErrNotFound.
//
// Timestamps are stored as RFC3339 TEXT columns. The schema is created
// automatically when a store is opened.
package store

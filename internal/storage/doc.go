// Package storage persists the delivery journal.
//
// Two backends exist: an append-only JSON Lines file and SQLite
// (modernc.org/sqlite, no cgo). The journal is write-mostly: the bot never
// reads it back to restore state.
package storage

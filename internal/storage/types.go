package storage

import (
	"context"
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": JSON Lines file at Path
//   - "sqlite": SQLite database file at Path
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// JournalEntry records one notification or poll outcome.
type JournalEntry struct {
	ID     string    `json:"id"`
	At     time.Time `json:"at"`
	Type   string    `json:"type"`
	ChatID string    `json:"chat_id,omitempty"`
	Text   string    `json:"text,omitempty"`
	Kind   string    `json:"kind,omitempty"`
	Error  string    `json:"error,omitempty"`
	Cursor int64     `json:"cursor,omitempty"`
}

type Store interface {
	AppendJournal(ctx context.Context, e JournalEntry) error
	// RecentJournal returns up to limit entries, newest first.
	RecentJournal(ctx context.Context, limit int) ([]JournalEntry, error)
	// PruneJournal deletes entries older than before and reports how many.
	PruneJournal(ctx context.Context, before time.Time) (int64, error)
	Close() error
}

package poller

import (
	"context"
	"fmt"
	"time"

	"homeworkbot/internal/failure"
)

// ErrorPrefix starts every failure message sent to the chat.
const ErrorPrefix = "Сбой в работе программы: "

// State of the bot process.
type State int32

const (
	Starting State = iota
	Polling
	Terminated
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Polling:
		return "polling"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Fetcher returns the decoded review API body for changes since from.
type Fetcher interface {
	Fetch(ctx context.Context, from int64) (any, error)
}

// Notifier delivers chat messages. NotifyError may suppress a repeat of the
// previous error message; ResetError forgets it.
type Notifier interface {
	Notify(ctx context.Context, text string) error
	NotifyError(ctx context.Context, text string) error
	ResetError()
}

// Metrics receives one call per iteration.
type Metrics interface {
	PollSucceeded(cursor int64, sent int)
	PollFailed(kind failure.Kind)
}

type Config struct {
	// RetryPeriod is the pause after every iteration.
	RetryPeriod time.Duration
	// Cursor is the initial from_date. 0 means the current time.
	Cursor int64
}

// PollEvent is the payload of poller.* bus events.
type PollEvent struct {
	Cursor int64  `json:"cursor"`
	Sent   int    `json:"sent,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Error  string `json:"error,omitempty"`
}

// PanicError is a panic recovered inside an iteration.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

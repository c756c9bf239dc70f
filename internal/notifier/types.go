package notifier

import (
	"time"

	kit "homeworkbot/internal/transport"
)

type Config struct {
	Target kit.ChatTarget
	// SendTimeout bounds one send. 0 leaves it to the transport.
	SendTimeout time.Duration
	// HistorySize caps the in-memory history. Defaults to 100.
	HistorySize int
}

type HistoryItem struct {
	At    time.Time `json:"at"`
	Text  string    `json:"text"`
	Error bool      `json:"error,omitempty"`
}

// NotificationEvent is published on the event bus for every Notify/NotifyError
// outcome.
type NotificationEvent struct {
	ChatID string    `json:"chat_id"`
	Text   string    `json:"text"`
	Error  bool      `json:"error,omitempty"`
	Cause  string    `json:"cause,omitempty"`
	At     time.Time `json:"at"`
}

// SendError wraps a transport failure of the messaging API.
type SendError struct {
	Err error
}

func (e *SendError) Error() string { return "send message: " + e.Err.Error() }

func (e *SendError) Unwrap() error { return e.Err }

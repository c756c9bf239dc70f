package transport

import "context"

// ChatTarget addresses one chat. ChatID is kept as a string so both numeric
// ids ("-100123") and public usernames ("@channel") work.
type ChatTarget struct {
	ChatID   string
	ThreadID int // forum topic thread id (0 if none)
}

func (t ChatTarget) IsZero() bool { return t.ChatID == "" }

type MessageRef struct {
	ChatID    string
	ThreadID  int
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Sender delivers plain text to a chat. It is the only capability the bot
// needs from a messaging platform.
type Sender interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
}

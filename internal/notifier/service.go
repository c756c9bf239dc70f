package notifier

import (
	"context"
	"errors"
	"sync"
	"time"

	"homeworkbot/internal/eventbus"
	kit "homeworkbot/internal/transport"
	logx "homeworkbot/pkg/logx"
)

var ErrNoSender = errors.New("notifier has no sender")

// Service sends to a single chat. Notify, NotifyError and ResetError are
// meant to be called from one goroutine (the poll loop); Snapshot may be
// called from anywhere.
type Service struct {
	cfg    Config
	sender kit.Sender
	log    logx.Logger
	bus    eventbus.Bus

	lastError string

	hmu     sync.Mutex
	history []HistoryItem
}

func New(cfg Config, sender kit.Sender, log logx.Logger, bus eventbus.Bus) *Service {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 100
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{cfg: cfg, sender: sender, log: log, bus: bus}
}

// Notify sends text once. A transport failure is returned as *SendError.
func (s *Service) Notify(ctx context.Context, text string) error {
	return s.send(ctx, text, false)
}

// NotifyError sends text unless it equals the last delivered error message.
// The remembered message only changes when the send succeeds.
func (s *Service) NotifyError(ctx context.Context, text string) error {
	if text == s.lastError {
		s.log.Debug("error notification suppressed", logx.String("text", text))
		s.publish(eventbus.TypeNotificationSuppressed, text, true, nil)
		return nil
	}
	if err := s.send(ctx, text, true); err != nil {
		return err
	}
	s.lastError = text
	return nil
}

// ResetError forgets the last delivered error message.
func (s *Service) ResetError() { s.lastError = "" }

func (s *Service) LastError() string { return s.lastError }

func (s *Service) send(ctx context.Context, text string, isErr bool) error {
	if s.sender == nil {
		return &SendError{Err: ErrNoSender}
	}
	if s.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SendTimeout)
		defer cancel()
	}

	if _, err := s.sender.SendText(ctx, s.cfg.Target, text, &kit.SendOptions{DisablePreview: true}); err != nil {
		s.publish(eventbus.TypeNotificationFailed, text, isErr, err)
		return &SendError{Err: err}
	}

	s.log.Debug("message sent", logx.String("text", text))
	s.appendHistory(text, isErr)
	s.publish(eventbus.TypeNotificationSent, text, isErr, nil)
	return nil
}

// Snapshot returns the recently delivered messages, oldest first.
func (s *Service) Snapshot() []HistoryItem {
	s.hmu.Lock()
	defer s.hmu.Unlock()
	return append([]HistoryItem(nil), s.history...)
}

func (s *Service) appendHistory(text string, isErr bool) {
	s.hmu.Lock()
	s.history = append(s.history, HistoryItem{At: time.Now(), Text: text, Error: isErr})
	if len(s.history) > s.cfg.HistorySize {
		s.history = s.history[len(s.history)-s.cfg.HistorySize:]
	}
	s.hmu.Unlock()
}

func (s *Service) publish(typ, text string, isErr bool, cause error) {
	if s.bus == nil {
		return
	}
	now := time.Now()
	ev := NotificationEvent{ChatID: s.cfg.Target.ChatID, Text: text, Error: isErr, At: now}
	if cause != nil {
		ev.Cause = cause.Error()
	}
	s.bus.Publish(eventbus.Event{Type: typ, Time: now, Data: ev})
}

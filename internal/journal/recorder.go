// Package journal writes bus events to the delivery journal and prunes it.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"homeworkbot/internal/eventbus"
	"homeworkbot/internal/notifier"
	"homeworkbot/internal/poller"
	"homeworkbot/internal/storage"
	logx "homeworkbot/pkg/logx"
)

const writeTimeout = 5 * time.Second

type Recorder struct {
	store storage.Store
	log   logx.Logger
	newID func() string
}

func NewRecorder(store storage.Store, log logx.Logger) *Recorder {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Recorder{store: store, log: log, newID: uuid.NewString}
}

// Run subscribes to bus and appends every known event until ctx is done.
// Write failures are logged and the event is dropped.
func (r *Recorder) Run(ctx context.Context, bus eventbus.Bus) error {
	events, unsubscribe := bus.Subscribe(64)
	defer unsubscribe()
	r.log.Debug("journal recorder started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := r.Record(ctx, ev); err != nil {
				r.log.Warn("journal append failed", logx.String("type", ev.Type), logx.Err(err))
			}
		}
	}
}

// Record appends one event. Events of unknown type are ignored.
func (r *Recorder) Record(ctx context.Context, ev eventbus.Event) error {
	e, ok := EntryFromEvent(ev)
	if !ok {
		return nil
	}
	e.ID = r.newID()
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	return r.store.AppendJournal(wctx, e)
}

// EntryFromEvent maps a bus event onto a journal entry (without ID).
func EntryFromEvent(ev eventbus.Event) (storage.JournalEntry, bool) {
	e := storage.JournalEntry{At: ev.Time, Type: ev.Type}
	switch d := ev.Data.(type) {
	case notifier.NotificationEvent:
		e.ChatID = d.ChatID
		e.Text = d.Text
		e.Error = d.Cause
		if d.Error {
			e.Kind = "error_report"
		}
	case poller.PollEvent:
		e.Cursor = d.Cursor
		e.Kind = d.Kind
		e.Error = d.Error
	default:
		return storage.JournalEntry{}, false
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	return e, true
}

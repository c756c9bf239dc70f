package poller

import (
	"context"
	"errors"
	"runtime/debug"
	"sync/atomic"
	"time"

	"homeworkbot/internal/eventbus"
	"homeworkbot/internal/failure"
	"homeworkbot/internal/homework"
	logx "homeworkbot/pkg/logx"
)

type Option func(*Poller)

func WithLogger(log logx.Logger) Option { return func(p *Poller) { p.log = log } }

func WithBus(bus eventbus.Bus) Option { return func(p *Poller) { p.bus = bus } }

func WithMetrics(m Metrics) Option { return func(p *Poller) { p.metrics = m } }

// WithClock replaces time.Now and the inter-iteration sleep (tests).
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// WithAfterIteration registers a hook called after every iteration with its
// error (nil on success). The app uses it for the systemd watchdog.
func WithAfterIteration(fn func(err error)) Option {
	return func(p *Poller) { p.after = fn }
}

type Poller struct {
	cfg      Config
	fetcher  Fetcher
	notifier Notifier

	log     logx.Logger
	bus     eventbus.Bus
	metrics Metrics
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
	after   func(err error)

	// cursor is written by the loop goroutine only; atomic for Cursor().
	cursor atomic.Int64
	state  atomic.Int32
}

func New(cfg Config, fetcher Fetcher, notifier Notifier, opts ...Option) *Poller {
	p := &Poller{
		cfg:      cfg,
		fetcher:  fetcher,
		notifier: notifier,
		log:      logx.Nop(),
		now:      time.Now,
		sleep:    sleepCtx,
	}
	for _, o := range opts {
		o(p)
	}
	if p.log.IsZero() {
		p.log = logx.Nop()
	}
	start := cfg.Cursor
	if start == 0 {
		start = p.now().Unix()
	}
	p.cursor.Store(start)
	return p
}

func (p *Poller) Cursor() int64 { return p.cursor.Load() }

func (p *Poller) State() State { return State(p.state.Load()) }

// Run polls until ctx is cancelled. The pause after an iteration is taken
// whatever the iteration's outcome; ctx is only consulted there.
func (p *Poller) Run(ctx context.Context) error {
	p.state.Store(int32(Polling))
	defer p.state.Store(int32(Terminated))

	p.log.Info("polling started",
		logx.Int64("cursor", p.Cursor()),
		logx.Duration("retry_period", p.cfg.RetryPeriod),
	)
	for {
		err := p.RunOnce(ctx)
		if p.after != nil {
			p.after(err)
		}
		if serr := p.sleep(ctx, p.cfg.RetryPeriod); serr != nil {
			p.log.Info("polling stopped", logx.Int64("cursor", p.Cursor()))
			return nil
		}
	}
}

// RunOnce runs one iteration and reports its failure. The returned error has
// already been logged and sent to the chat.
func (p *Poller) RunOnce(ctx context.Context) error {
	// Shutdown must not abort a request or a send half way.
	ictx := context.WithoutCancel(ctx)

	sent, err := p.safePoll(ictx)
	if err == nil {
		if p.metrics != nil {
			p.metrics.PollSucceeded(p.Cursor(), sent)
		}
		p.publish(eventbus.TypePollSucceeded, PollEvent{Cursor: p.Cursor(), Sent: sent})
		return nil
	}

	kind := failure.Classify(err)
	fields := []logx.Field{
		logx.String("kind", kind.String()),
		logx.Int64("cursor", p.Cursor()),
		logx.Err(err),
	}
	var pe *PanicError
	if errors.As(err, &pe) {
		fields = append(fields, logx.String("stack", string(pe.Stack)))
	}
	p.log.Error(failureMessage(kind), fields...)

	if p.metrics != nil {
		p.metrics.PollFailed(kind)
	}
	p.publish(eventbus.TypePollFailed, PollEvent{Cursor: p.Cursor(), Kind: kind.String(), Error: err.Error()})

	if nerr := p.notifier.NotifyError(ictx, ErrorPrefix+err.Error()); nerr != nil {
		p.log.Error("failed to report error to chat", logx.Err(nerr))
	}
	return err
}

// Poll performs steps one to four of an iteration: fetch, validate,
// translate and notify each record in API order, then advance the cursor.
// It returns how many messages were sent.
func (p *Poller) Poll(ctx context.Context) (int, error) {
	from := p.Cursor()
	body, err := p.fetcher.Fetch(ctx, from)
	if err != nil {
		return 0, err
	}
	resp, err := homework.Validate(body)
	if err != nil {
		return 0, err
	}
	if len(resp.Homeworks) == 0 {
		p.log.Debug("no homework status changes", logx.Int64("from_date", from))
	}

	for i, raw := range resp.Homeworks {
		rec, err := homework.AsRecord(raw)
		if err != nil {
			return i, err
		}
		msg, err := homework.Translate(rec)
		if err != nil {
			return i, err
		}
		if err := p.notifier.Notify(ctx, msg); err != nil {
			return i, err
		}
		p.log.Debug("status change sent", logx.String("text", msg))
	}

	if resp.CurrentDate > from {
		p.cursor.Store(resp.CurrentDate)
	}
	p.notifier.ResetError()
	return len(resp.Homeworks), nil
}

func (p *Poller) safePoll(ctx context.Context) (sent int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return p.Poll(ctx)
}

func (p *Poller) publish(typ string, ev PollEvent) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(eventbus.Event{Type: typ, Time: p.now(), Data: ev})
}

func failureMessage(k failure.Kind) string {
	switch k {
	case failure.Configuration:
		return "configuration error"
	case failure.Transport:
		return "review API request failed"
	case failure.APIUnavailable:
		return "review API unavailable"
	case failure.Schema:
		return "unexpected review API payload"
	case failure.Notification:
		return "telegram send failed"
	case failure.Unknown:
		return "poll iteration failed"
	default:
		return "poll iteration failed"
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

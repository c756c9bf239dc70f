// Package metrics exposes the bot's Prometheus metrics.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"homeworkbot/internal/eventbus"
	"homeworkbot/internal/failure"
)

type Metrics struct {
	reg *prometheus.Registry

	// PollsTotal counts iterations by result (ok, error).
	PollsTotal *prometheus.CounterVec
	// FailuresTotal counts failed iterations by kind.
	FailuresTotal *prometheus.CounterVec
	// NotificationsTotal counts chat sends by result (sent, failed, suppressed).
	NotificationsTotal *prometheus.CounterVec
	// MessagesTotal counts status change messages delivered.
	MessagesTotal prometheus.Counter
	// Cursor is the from_date of the next request.
	Cursor prometheus.Gauge
}

// New registers the metrics on a fresh registry together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	m := &Metrics{
		reg: reg,
		PollsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "homework_polls_total",
			Help: "Total number of poll iterations",
		}, []string{"result"}),
		FailuresTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "homework_failures_total",
			Help: "Total number of failed poll iterations by failure kind",
		}, []string{"kind"}),
		NotificationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "homework_notifications_total",
			Help: "Total number of chat notifications by result",
		}, []string{"result"}),
		MessagesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "homework_status_messages_total",
			Help: "Total number of homework status change messages delivered",
		}),
		Cursor: f.NewGauge(prometheus.GaugeOpts{
			Name: "homework_poll_cursor",
			Help: "Unix timestamp the next poll window starts at",
		}),
	}
	// Expose every series from the start so rate() works before the first failure.
	for _, k := range failure.Kinds() {
		m.FailuresTotal.WithLabelValues(k.String())
	}
	for _, r := range []string{"sent", "failed", "suppressed"} {
		m.NotificationsTotal.WithLabelValues(r)
	}
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) PollSucceeded(cursor int64, sent int) {
	m.PollsTotal.WithLabelValues("ok").Inc()
	m.MessagesTotal.Add(float64(sent))
	m.Cursor.Set(float64(cursor))
}

func (m *Metrics) PollFailed(kind failure.Kind) {
	m.PollsTotal.WithLabelValues("error").Inc()
	m.FailuresTotal.WithLabelValues(kind.String()).Inc()
}

// Follow counts notifier events from bus until ctx is done.
func (m *Metrics) Follow(ctx context.Context, bus eventbus.Bus) error {
	events, unsubscribe := bus.Subscribe(64)
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			m.observe(ev)
		}
	}
}

func (m *Metrics) observe(ev eventbus.Event) {
	switch ev.Type {
	case eventbus.TypeNotificationSent:
		m.NotificationsTotal.WithLabelValues("sent").Inc()
	case eventbus.TypeNotificationFailed:
		m.NotificationsTotal.WithLabelValues("failed").Inc()
	case eventbus.TypeNotificationSuppressed:
		m.NotificationsTotal.WithLabelValues("suppressed").Inc()
	}
}

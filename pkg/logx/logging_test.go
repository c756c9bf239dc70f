package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	kit "homeworkbot/internal/transport"
)

type captureSender struct {
	mu   sync.Mutex
	msgs []string
	got  chan struct{}
}

func (c *captureSender) SendText(_ context.Context, _ kit.ChatTarget, text string, _ *kit.SendOptions) (kit.MessageRef, error) {
	c.mu.Lock()
	c.msgs = append(c.msgs, text)
	c.mu.Unlock()
	select {
	case c.got <- struct{}{}:
	default:
	}
	return kit.MessageRef{}, nil
}

func TestCriticalDoesNotExit(t *testing.T) {
	var buf bytes.Buffer
	log := New(zerolog.New(&buf))

	log.Critical("missing configuration", String("var", "TELEGRAM_TOKEN"))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%q)", err, buf.String())
	}
	if line["level"] != "fatal" {
		t.Fatalf("expected fatal level, got %v", line["level"])
	}
	if line["var"] != "TELEGRAM_TOKEN" {
		t.Fatalf("expected var field, got %v", line["var"])
	}
}

func TestWithKeepsFieldsAndRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(zerolog.New(&buf).Level(zerolog.InfoLevel)).With(String("comp", "poller"))

	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line should be filtered, got %q", buf.String())
	}
	log.Info("visible")
	if !strings.Contains(buf.String(), `"comp":"poller"`) {
		t.Fatalf("expected comp field, got %q", buf.String())
	}
}

func TestZeroLoggerIsNoop(t *testing.T) {
	var log Logger
	if !log.IsZero() {
		t.Fatalf("zero logger should report IsZero")
	}
	log.Error("nothing happens")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":    zerolog.DebugLevel,
		" INFO ":   zerolog.InfoLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"critical": zerolog.FatalLevel,
		"bogus":    zerolog.WarnLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in, zerolog.WarnLevel); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFormatTelegramLine(t *testing.T) {
	line := []byte(`{"level":"error","time":"x","caller":"a.go:1","message":"poll failed","kind":"schema","err":"boom"}`)
	got := formatTelegramLine(line)
	want := "[ERROR] poll failed\n- err=boom\n- kind=schema"
	if got != want {
		t.Fatalf("unexpected message:\n%s\nwant:\n%s", got, want)
	}
}

func TestTelegramSinkHonorsMinLevel(t *testing.T) {
	sender := &captureSender{got: make(chan struct{}, 4)}
	svc, log := NewService(Config{
		Level: "debug",
		Telegram: TelegramConfig{
			Enabled:    true,
			Target:     kit.ChatTarget{ChatID: "42"},
			MinLevel:   "error",
			RatePerSec: 10,
		},
	}, sender)
	t.Cleanup(func() { _ = svc.Close() })

	log.Info("not mirrored")
	log.Error("mirrored")

	select {
	case <-sender.got:
	case <-time.After(2 * time.Second):
		t.Fatalf("telegram sink did not deliver")
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.msgs) != 1 {
		t.Fatalf("expected 1 mirrored message, got %d: %v", len(sender.msgs), sender.msgs)
	}
	if !strings.HasPrefix(sender.msgs[0], "[ERROR] mirrored") {
		t.Fatalf("unexpected mirrored text %q", sender.msgs[0])
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("Сбой ", 50)
	for _, n := range []int{5, 9, 10, 11, 12, 101} {
		got := truncate(s, n)
		if !utf8.ValidString(got) {
			t.Fatalf("truncate(%d) produced invalid UTF-8: %q", n, got)
		}
		if len(got) > n {
			t.Fatalf("truncate(%d) returned %d bytes", n, len(got))
		}
	}
	if got := truncate("short", 100); got != "short" {
		t.Fatalf("short string changed: %q", got)
	}
}

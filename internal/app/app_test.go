package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"homeworkbot/internal/config"
)

type botAPI struct {
	mu    sync.Mutex
	texts []string
	got   chan struct{}
}

func (b *botAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var params map[string]any
	_ = json.NewDecoder(r.Body).Decode(&params)
	text, _ := params["text"].(string)
	b.mu.Lock()
	b.texts = append(b.texts, text)
	b.mu.Unlock()
	select {
	case b.got <- struct{}{}:
	default:
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`)
}

func TestRunDeliversStatusChange(t *testing.T) {
	review := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "OAuth ptok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"homeworks": [{"homework_name": "hw1", "status": "approved"}], "current_date": 1700000000}`)
	}))
	defer review.Close()
	bot := &botAPI{got: make(chan struct{}, 1)}
	tg := httptest.NewServer(bot)
	defer tg.Close()

	cfgm := config.NewConfigManager("")
	cfgm.SetGetenv(func(k string) string {
		return map[string]string{
			config.EnvEndpoint:    review.URL + "/api/user_api/homework_statuses/",
			config.EnvRetryPeriod: "1h",
		}[k]
	})
	cfg, err := cfgm.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Logging.Console = false
	cfg.Telegram.APIURL = tg.URL
	cfg.Storage = &config.StorageConfig{Driver: "file", Path: filepath.Join(t.TempDir(), "journal.jsonl")}

	a, err := New(cfgm, config.Credentials{PracticumToken: "ptok", TelegramToken: "TOKEN", ChatID: "42"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var (
		smu    sync.Mutex
		states []string
	)
	a.sdNotify = func(state string) (bool, error) {
		smu.Lock()
		states = append(states, state)
		smu.Unlock()
		return false, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	select {
	case <-bot.got:
	case <-time.After(5 * time.Second):
		t.Fatalf("no telegram message sent")
	}

	// The journal is written asynchronously from the event bus.
	deadline := time.Now().Add(3 * time.Second)
	for {
		entries, err := a.store.RecentJournal(context.Background(), 10)
		if err != nil {
			t.Fatalf("RecentJournal: %v", err)
		}
		if len(entries) >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("journal entries = %d, want >= 2", len(entries))
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}

	bot.mu.Lock()
	texts := append([]string(nil), bot.texts...)
	bot.mu.Unlock()
	want := `Изменился статус проверки работы "hw1". Работа проверена: ревьюеру всё понравилось. Ура!`
	if len(texts) != 1 || texts[0] != want {
		t.Fatalf("telegram texts = %q", texts)
	}
	if a.Poller().Cursor() != 1700000000 {
		t.Fatalf("cursor = %d", a.Poller().Cursor())
	}

	smu.Lock()
	defer smu.Unlock()
	for _, s := range []string{daemon.SdNotifyReady, daemon.SdNotifyWatchdog, daemon.SdNotifyStopping} {
		if !slices.Contains(states, s) {
			t.Fatalf("systemd states %q lack %q", states, s)
		}
	}
}

// newTestApp builds an App against a stub review API and Bot API. tweak runs
// on the loaded config before New, so it may set values Validate would reject.
func newTestApp(t *testing.T, review http.HandlerFunc, tweak func(*config.Config)) (*App, *botAPI) {
	t.Helper()
	rs := httptest.NewServer(review)
	t.Cleanup(rs.Close)
	bot := &botAPI{got: make(chan struct{}, 1)}
	tg := httptest.NewServer(bot)
	t.Cleanup(tg.Close)

	cfgm := config.NewConfigManager("")
	cfgm.SetGetenv(func(k string) string {
		return map[string]string{
			config.EnvEndpoint:    rs.URL + "/api/user_api/homework_statuses/",
			config.EnvRetryPeriod: "1h",
		}[k]
	})
	cfg, err := cfgm.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Logging.Console = false
	cfg.Telegram.APIURL = tg.URL
	if tweak != nil {
		tweak(cfg)
	}
	a, err := New(cfgm, config.Credentials{PracticumToken: "ptok", TelegramToken: "TOKEN", ChatID: "42"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.sdNotify = func(string) (bool, error) { return false, nil }
	a.watchdog = func() (time.Duration, bool) { return 0, false }
	t.Cleanup(func() { _ = a.logs.Close() })
	return a, bot
}

func TestRepeatedFailureReachesChatOnce(t *testing.T) {
	a, bot := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, func(cfg *config.Config) {
		cfg.Logging.Telegram.Enabled = true
		cfg.Logging.Telegram.RatePerSec = 100
	})

	for range 3 {
		if err := a.Poller().RunOnce(context.Background()); err == nil {
			t.Fatalf("expected poll failure")
		}
	}
	_ = a.logs.Close()

	bot.mu.Lock()
	defer bot.mu.Unlock()
	if len(bot.texts) != 1 {
		t.Fatalf("homework chat got %d messages, want 1: %q", len(bot.texts), bot.texts)
	}
	if !strings.HasPrefix(bot.texts[0], "Сбой в работе программы: ") {
		t.Fatalf("unexpected message %q", bot.texts[0])
	}
}

func TestWatchdogPingsDuringRetrySleep(t *testing.T) {
	a, _ := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"homeworks": [], "current_date": 1700000000}`)
	}, nil)

	var (
		mu    sync.Mutex
		pings int
	)
	a.sdNotify = func(state string) (bool, error) {
		if state == daemon.SdNotifyWatchdog {
			mu.Lock()
			pings++
			mu.Unlock()
		}
		return true, nil
	}
	a.watchdog = func() (time.Duration, bool) { return 40 * time.Millisecond, true }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	// One ping comes from the finished iteration; the rest must come while
	// the poller sleeps for an hour.
	deadline := time.Now().Add(3 * time.Second)
	for {
		mu.Lock()
		n := pings
		mu.Unlock()
		if n >= 4 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("watchdog pings = %d, want >= 4", n)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestNewRejectsBadStorage(t *testing.T) {
	cfgm := config.NewConfigManager("")
	cfgm.SetGetenv(func(string) string { return "" })
	cfg, err := cfgm.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Logging.Console = false
	cfg.Storage = &config.StorageConfig{Driver: "sqlite"}

	_, err = New(cfgm, config.Credentials{PracticumToken: "p", TelegramToken: "t", ChatID: "1"})
	if err == nil || !strings.Contains(err.Error(), "storage.path") {
		t.Fatalf("expected storage.path error, got %v", err)
	}
}

func TestMapLogConfigTarget(t *testing.T) {
	creds := config.Credentials{ChatID: "42"}
	tests := []struct {
		name     string
		operator string
		enabled  bool
		wantSink bool
	}{
		{"no operator chat", "", true, false},
		{"operator is the homework chat", "42", true, false},
		{"operator chat", "-100500", true, true},
		{"sink disabled", "-100500", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Logging.Telegram.Enabled = tt.enabled
			cfg.Telegram.OperatorChat = tt.operator
			cfg.Telegram.ThreadID = 7
			got := mapLogConfig(cfg, creds).Telegram
			if got.Enabled != tt.wantSink {
				t.Fatalf("sink enabled = %v, want %v", got.Enabled, tt.wantSink)
			}
			if got.Target.ChatID != tt.operator || got.Target.ThreadID != 7 {
				t.Fatalf("target = %+v", got.Target)
			}
		})
	}
}

func TestStartupFailure(t *testing.T) {
	err := &config.MissingEnvError{Names: []string{config.EnvTelegramToken}}
	got := StartupFailure(err)
	if !strings.HasPrefix(got, "Сбой запуска бота: missing required environment variables: TELEGRAM_TOKEN") {
		t.Fatalf("unexpected message %q", got)
	}
	if !strings.HasSuffix(got, "\nПрограмма принудительно остановлена.") {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestRestartSections(t *testing.T) {
	base := config.Default()

	logOnly := config.Default()
	logOnly.Logging.Level = "error"
	logOnly.Telegram.OperatorChat = "99"
	if got := restartSections(base, logOnly); len(got) != 0 {
		t.Fatalf("logging-only change should apply live, got %v", got)
	}

	changed := config.Default()
	changed.Practicum.RetryPeriod = "1m"
	changed.Storage = &config.StorageConfig{Driver: "file", Path: "x.jsonl"}
	changed.Metrics.Addr = "127.0.0.1:9310"
	want := []string{"practicum", "storage", "metrics"}
	if got := restartSections(base, changed); !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if got := restartSections(nil, changed); got != nil {
		t.Fatalf("no previous config should report nothing, got %v", got)
	}
}

func TestMetricsServerServesNotificationHistory(t *testing.T) {
	a, _ := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"homeworks": [{"homework_name": "hw1", "status": "rejected"}], "current_date": 1700000000}`)
	}, func(cfg *config.Config) {
		cfg.Metrics.Addr = "127.0.0.1:0"
	})
	if err := a.Poller().RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	rec := httptest.NewRecorder()
	a.metricsSrv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/notifications", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `Изменился статус проверки работы \"hw1\"`) {
		t.Fatalf("history missing sent message: %s", rec.Body.String())
	}
}

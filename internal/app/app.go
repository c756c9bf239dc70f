package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"homeworkbot/internal/config"
	"homeworkbot/internal/eventbus"
	"homeworkbot/internal/journal"
	"homeworkbot/internal/notifier"
	"homeworkbot/internal/observability/metrics"
	"homeworkbot/internal/poller"
	"homeworkbot/internal/practicum"
	"homeworkbot/internal/runtime/supervisor"
	"homeworkbot/internal/storage"
	kit "homeworkbot/internal/transport"
	telegram "homeworkbot/internal/transport/telegram/adapter"
	logx "homeworkbot/pkg/logx"
)

type App struct {
	cfgm    *config.ConfigManager
	creds   config.Credentials
	applied *config.Config

	log  logx.Logger
	logs *logx.Service
	bus  eventbus.Bus

	store    storage.Store
	recorder *journal.Recorder
	pruner   *journal.Pruner

	metrics    *metrics.Metrics
	metricsSrv *metrics.Server

	notif  *notifier.Service
	poller *poller.Poller

	// sdNotify reports service state to systemd.
	sdNotify func(state string) (bool, error)
	// watchdog returns the systemd watchdog interval, if one is set.
	watchdog func() (time.Duration, bool)
}

// New wires every component from the loaded configuration. cfgm must have
// been loaded already.
func New(cfgm *config.ConfigManager, creds config.Credentials) (*App, error) {
	cfg := cfgm.Get()
	if cfg == nil {
		return nil, errors.New("config not loaded")
	}
	d, err := parseDurations(cfg)
	if err != nil {
		return nil, err
	}

	ad, err := telegram.New(telegram.Config{
		Token:   creds.TelegramToken,
		APIURL:  cfg.Telegram.APIURL,
		Timeout: d.send,
	}, logx.Nop())
	if err != nil {
		return nil, err
	}

	logSvc, root := logx.NewService(mapLogConfig(cfg, creds), ad)
	log := root.With(logx.String("comp", "app"))

	client, err := practicum.New(practicum.Config{
		Endpoint: cfg.Practicum.Endpoint,
		Token:    creds.PracticumToken,
		Timeout:  d.request,
	}, root.With(logx.String("comp", "practicum")))
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}

	bus := eventbus.New()
	m := metrics.New()

	a := &App{
		cfgm:     cfgm,
		creds:    creds,
		applied:  cfg,
		log:      log,
		logs:     logSvc,
		bus:      bus,
		metrics:  m,
		sdNotify: func(state string) (bool, error) { return daemon.SdNotify(false, state) },
		watchdog: watchdogInterval,
	}

	if sc, enabled, err := mapStorageConfig(cfg); err != nil {
		_ = logSvc.Close()
		return nil, err
	} else if enabled {
		st, err := storage.Open(sc, root.With(logx.String("comp", "storage")))
		if err != nil {
			_ = logSvc.Close()
			return nil, err
		}
		a.store = st
		a.recorder = journal.NewRecorder(st, root.With(logx.String("comp", "journal")))
		a.pruner, err = journal.NewPruner(st, journal.PrunerConfig{
			Schedule:  cfg.Journal.PruneSchedule,
			Retention: d.retain,
		}, root.With(logx.String("comp", "journal")))
		if err != nil {
			_ = st.Close()
			_ = logSvc.Close()
			return nil, err
		}
		log.Info("delivery journal enabled", logx.String("driver", sc.Driver), logx.String("path", sc.Path))
	}

	a.notif = notifier.New(notifier.Config{
		Target:      kit.ChatTarget{ChatID: creds.ChatID},
		SendTimeout: d.send,
	}, ad, root.With(logx.String("comp", "notifier")), bus)

	if addr := cfg.Metrics.Addr; addr != "" {
		a.metricsSrv = metrics.NewServer(metrics.ServerConfig{
			Addr:    addr,
			Token:   cfg.Metrics.Token,
			Pprof:   cfg.Metrics.Pprof,
			History: a.notif.Snapshot,
		}, m, root.With(logx.String("comp", "metrics")))
	}

	a.poller = poller.New(poller.Config{RetryPeriod: d.retry}, client, a.notif,
		poller.WithLogger(root.With(logx.String("comp", "poller"))),
		poller.WithBus(bus),
		poller.WithMetrics(m),
		poller.WithAfterIteration(func(error) { a.notify(daemon.SdNotifyWatchdog) }),
	)
	return a, nil
}

func (a *App) Logger() logx.Logger { return a.log }

func (a *App) Poller() *poller.Poller { return a.poller }

// Run starts the auxiliary goroutines and polls until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	sup := supervisor.New(ctx, supervisor.WithLogger(a.log.With(logx.String("comp", "supervisor"))))

	sup.Go("metrics.follow", func(c context.Context) error { return a.metrics.Follow(c, a.bus) })
	if a.metricsSrv != nil {
		sup.GoRestart("metrics.serve", a.metricsSrv.Serve,
			supervisor.WithRestartBackoff(500*time.Millisecond, 10*time.Second))
	}
	if a.recorder != nil {
		sup.Go("journal.record", func(c context.Context) error { return a.recorder.Run(c, a.bus) })
	}
	if a.pruner != nil {
		if err := a.pruner.Start(); err != nil {
			a.log.Warn("journal pruning disabled", logx.Err(err))
		}
	}
	if a.cfgm != nil && a.cfgm.Path() != "" {
		sup.GoRestart("config.watch", a.cfgm.Watch,
			supervisor.WithRestartBackoff(time.Second, time.Minute))
		sub := a.cfgm.Subscribe(1)
		sup.Go("config.apply", func(c context.Context) error {
			for {
				select {
				case <-c.Done():
					return nil
				case cfg := <-sub:
					a.applyConfig(cfg)
				}
			}
		})
	}

	if d, ok := a.watchdog(); ok {
		a.log.Debug("systemd watchdog enabled", logx.Duration("interval", d))
		sup.Go("systemd.watchdog", func(c context.Context) error { return a.pingWatchdog(c, d) })
	}
	a.notify(daemon.SdNotifyReady)
	a.log.Info("bot started", logx.String("chat_id", a.creds.ChatID))

	err := a.poller.Run(ctx)

	a.notify(daemon.SdNotifyStopping)
	a.log.Info("bot stopping")
	a.shutdown(sup)
	return err
}

// applyConfig applies the hot-reloadable part of a new config: logging.
func (a *App) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	a.logs.Apply(mapLogConfig(cfg, a.creds))
	a.log.Info("logging config applied", logx.String("level", cfg.Logging.Level))
	if changed := restartSections(a.applied, cfg); len(changed) > 0 {
		a.log.Warn("config changed; restart required for changes to take effect",
			logx.String("sections", strings.Join(changed, ",")))
	}
	a.applied = cfg
}

// restartSections lists the sections that only take effect on restart and
// differ between old and cfg. telegram.operator_chat and thread_id belong to
// logging and apply live.
func restartSections(old, cfg *config.Config) []string {
	if old == nil {
		return nil
	}
	var out []string
	if old.Practicum != cfg.Practicum {
		out = append(out, "practicum")
	}
	if old.Telegram.APIURL != cfg.Telegram.APIURL || old.Telegram.SendTimeout != cfg.Telegram.SendTimeout {
		out = append(out, "telegram")
	}
	if !sameStorage(old.Storage, cfg.Storage) {
		out = append(out, "storage")
	}
	if old.Journal != cfg.Journal {
		out = append(out, "journal")
	}
	if old.Metrics != cfg.Metrics {
		out = append(out, "metrics")
	}
	return out
}

func sameStorage(a, b *config.StorageConfig) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (a *App) shutdown(sup *supervisor.Supervisor) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.pruner != nil {
		a.pruner.Stop(ctx)
	}
	if err := sup.Stop(ctx); err != nil {
		a.log.Warn("background tasks did not stop cleanly", logx.Err(err))
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("storage close failed", logx.Err(err))
		}
	}
	_ = a.logs.Close()
}

func (a *App) notify(state string) {
	if a.sdNotify == nil {
		return
	}
	if _, err := a.sdNotify(state); err != nil {
		a.log.Debug("systemd notify failed", logx.String("state", state), logx.Err(err))
	}
}

// pingWatchdog sends WATCHDOG=1 every d/2 until ctx is done.
func (a *App) pingWatchdog(ctx context.Context, d time.Duration) error {
	every := d / 2
	if every <= 0 {
		every = d
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			a.notify(daemon.SdNotifyWatchdog)
		}
	}
}

func watchdogInterval() (time.Duration, bool) {
	d, err := daemon.SdWatchdogEnabled(false)
	if err != nil || d == 0 {
		return 0, false
	}
	return d, true
}

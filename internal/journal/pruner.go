package journal

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"homeworkbot/internal/storage"
	logx "homeworkbot/pkg/logx"
)

const (
	DefaultPruneSchedule = "@daily"
	DefaultRetention     = 30 * 24 * time.Hour
)

type PrunerConfig struct {
	// Schedule is a cron spec with optional seconds, or a descriptor like "@daily".
	Schedule  string
	Retention time.Duration
	// Location for the schedule. nil means time.Local.
	Location *time.Location
}

// Pruner deletes old journal entries on a cron schedule.
type Pruner struct {
	store  storage.Store
	cfg    PrunerConfig
	parser cron.Parser
	log    logx.Logger
	now    func() time.Time

	mu sync.Mutex
	c  *cron.Cron
}

func NewPruner(store storage.Store, cfg PrunerConfig, log logx.Logger) (*Pruner, error) {
	if store == nil {
		return nil, errors.New("journal pruner: nil store")
	}
	if strings.TrimSpace(cfg.Schedule) == "" {
		cfg.Schedule = DefaultPruneSchedule
	}
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	p := &Pruner{
		store:  store,
		cfg:    cfg,
		parser: cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		log:    log,
		now:    time.Now,
	}
	if _, err := p.parser.Parse(cfg.Schedule); err != nil {
		return nil, err
	}
	return p, nil
}

// Start registers the prune job. Calling it twice is a no-op.
func (p *Pruner) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.c != nil {
		return nil
	}
	c := cron.New(cron.WithParser(p.parser), cron.WithLocation(p.cfg.Location))
	if _, err := c.AddFunc(p.cfg.Schedule, p.run); err != nil {
		return err
	}
	c.Start()
	p.c = c
	p.log.Info("journal pruning scheduled",
		logx.String("schedule", p.cfg.Schedule),
		logx.Duration("retention", p.cfg.Retention),
	)
	return nil
}

// Stop waits for a running prune or ctx, whichever comes first.
func (p *Pruner) Stop(ctx context.Context) {
	p.mu.Lock()
	c := p.c
	p.c = nil
	p.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}

// PruneNow deletes entries older than the retention period.
func (p *Pruner) PruneNow(ctx context.Context) (int64, error) {
	before := p.now().Add(-p.cfg.Retention)
	return p.store.PruneJournal(ctx, before)
}

func (p *Pruner) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	start := time.Now()
	n, err := p.PruneNow(ctx)
	if err != nil {
		p.log.Warn("journal prune failed", logx.Err(err))
		return
	}
	p.log.Debug("journal pruned", logx.Int64("removed", n), logx.Duration("took", time.Since(start)))
}

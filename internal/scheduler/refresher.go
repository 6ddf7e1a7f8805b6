package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/aggregate"
	"github.com/hamed0406/uptimeboard/internal/dashboard"
	"github.com/hamed0406/uptimeboard/internal/repo"
)

// Listener receives every snapshot the refresher publishes.
type Listener func(ctx context.Context, s dashboard.Snapshot)

// Refresher recomputes every target's summary once per tick and publishes
// the result to the board and its listeners. A tick whose data fetch fails
// is skipped; the previous snapshot stays on the board.
type Refresher struct {
	Logger   *zap.Logger
	Targets  repo.TargetStore
	Results  repo.ResultStore
	Board    *dashboard.Board
	Interval time.Duration
	Workers  int

	mu        sync.RWMutex
	cfg       aggregate.Config
	listeners []Listener

	kick chan struct{}
	now  func() time.Time
}

func NewRefresher(
	logger *zap.Logger,
	ts repo.TargetStore,
	rs repo.ResultStore,
	board *dashboard.Board,
	cfg aggregate.Config,
	interval time.Duration,
	workers int,
) *Refresher {
	if workers < 1 {
		workers = 1
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Refresher{
		Logger:   logger,
		Targets:  ts,
		Results:  rs,
		Board:    board,
		Interval: interval,
		Workers:  workers,
		cfg:      cfg.Normalize(),
		kick:     make(chan struct{}, 1),
		now:      time.Now,
	}
}

func (r *Refresher) Subscribe(l Listener) {
	r.mu.Lock()
	r.listeners = append(r.listeners, l)
	r.mu.Unlock()
}

func (r *Refresher) Config() aggregate.Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// SetConfig swaps the aggregation settings used from the next refresh on.
func (r *Refresher) SetConfig(c aggregate.Config) {
	c = c.Normalize()
	r.mu.Lock()
	r.cfg = c
	r.mu.Unlock()
	r.Logger.Info("refresher_config",
		zap.Duration("horizon", c.Horizon),
		zap.Duration("window_width", c.WindowWidth),
		zap.Int("window_count", c.WindowCount),
	)
	r.Trigger()
}

// Trigger asks Run for an extra refresh without waiting for the next tick.
func (r *Refresher) Trigger() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

func (r *Refresher) Run(ctx context.Context) {
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	_, _ = r.RefreshOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("refresher_stopped")
			return
		case <-t.C:
			_, _ = r.RefreshOnce(ctx)
		case <-r.kick:
			_, _ = r.RefreshOnce(ctx)
		}
	}
}

// RefreshOnce fetches targets and histories, aggregates them against a
// single reference time and publishes the snapshot.
func (r *Refresher) RefreshOnce(ctx context.Context) (dashboard.Snapshot, error) {
	targets, err := r.Targets.List(ctx)
	if err != nil {
		r.Logger.Warn("refresher_fetch_error", zap.String("what", "targets"), zap.Error(err))
		return dashboard.Snapshot{}, fmt.Errorf("list targets: %w", err)
	}
	histories, err := r.Results.Histories(ctx)
	if err != nil {
		r.Logger.Warn("refresher_fetch_error", zap.String("what", "histories"), zap.Error(err))
		return dashboard.Snapshot{}, fmt.Errorf("load histories: %w", err)
	}

	inputs := make([]aggregate.Input, 0, len(targets))
	for _, t := range targets {
		inputs = append(inputs, aggregate.Input{Target: *t, Samples: histories[t.ID]})
	}

	now := r.now()
	cfg := r.Config()
	snap := dashboard.NewSnapshot(now, aggregate.All(inputs, now, cfg, r.Workers))
	if !r.Board.Publish(snap) {
		// a refresh that started later already published
		r.Logger.Debug("refresher_stale", zap.Time("generated_at", snap.GeneratedAt))
		cur, _ := r.Board.Current()
		return cur, nil
	}

	r.Logger.Debug("refresher_tick",
		zap.Int("targets", snap.Stats.Total),
		zap.Int("healthy", snap.Stats.Healthy),
		zap.Int("critical", snap.Stats.Critical),
	)

	r.mu.RLock()
	ls := append([]Listener(nil), r.listeners...)
	r.mu.RUnlock()
	for _, l := range ls {
		l(ctx, snap)
	}
	return snap, nil
}

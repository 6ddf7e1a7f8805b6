package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/domain"
	"github.com/hamed0406/uptimeboard/internal/probe"
	"github.com/hamed0406/uptimeboard/internal/repo"
)

// ParseSchedule accepts standard 5-field cron specs and descriptors such as
// "@every 30s" or "@hourly". An empty spec returns nil, nil (disabled).
func ParseSchedule(spec string) (cron.Schedule, error) {
	if spec == "" {
		return nil, nil
	}
	s, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("check schedule %q: %w", spec, err)
	}
	return s, nil
}

// Rechecker probes every target on a schedule and appends the results.
// It produces samples; it never aggregates them.
type Rechecker struct {
	Logger      *zap.Logger
	Targets     repo.TargetStore
	Results     repo.ResultStore
	Checker     probe.Checker
	Schedule    cron.Schedule
	Timeout     time.Duration
	Concurrency int

	// AfterPass runs once every target of a pass has been checked.
	AfterPass func()

	now func() time.Time
}

func NewRechecker(
	logger *zap.Logger,
	ts repo.TargetStore,
	rs repo.ResultStore,
	checker probe.Checker,
	schedule cron.Schedule,
	timeout time.Duration,
	concurrency int,
) *Rechecker {
	if concurrency < 1 {
		concurrency = 1
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Rechecker{
		Logger:      logger,
		Targets:     ts,
		Results:     rs,
		Checker:     checker,
		Schedule:    schedule,
		Timeout:     timeout,
		Concurrency: concurrency,
		now:         time.Now,
	}
}

// Run does an immediate pass, then one pass per schedule activation.
// Stops when ctx is cancelled.
func (r *Rechecker) Run(ctx context.Context) {
	if r.Schedule == nil {
		r.Logger.Info("rechecker_disabled")
		return
	}

	r.runOnce(ctx)

	for {
		now := r.now()
		wait := r.Schedule.Next(now).Sub(now)
		if wait < 0 {
			wait = 0
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			r.Logger.Info("rechecker_stopped")
			return
		case <-t.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Rechecker) runOnce(ctx context.Context) {
	defer func() {
		if r.AfterPass != nil {
			r.AfterPass()
		}
	}()

	ts, err := r.Targets.List(ctx)
	if err != nil {
		r.Logger.Warn("rechecker_list_error", zap.Error(err))
		return
	}
	if len(ts) == 0 {
		return
	}

	sem := make(chan struct{}, r.Concurrency)
	var wg sync.WaitGroup

	for _, tgt := range ts {
		t := tgt
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()
			r.checkOne(ctx, t)
		}()
	}

	wg.Wait()
}

// CheckNow probes a single target immediately and stores the result.
func (r *Rechecker) CheckNow(ctx context.Context, t *domain.Target) (*domain.CheckResult, error) {
	return r.checkOne(ctx, t)
}

func (r *Rechecker) checkOne(ctx context.Context, t *domain.Target) (*domain.CheckResult, error) {
	cctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	out := r.Checker.Check(cctx, t.URL)
	cr := probe.Record(t.ID, out, r.now())

	if err := r.Results.Append(ctx, cr); err != nil {
		r.Logger.Warn("rechecker_append_error",
			zap.String("target_id", string(t.ID)),
			zap.String("url", t.URL),
			zap.Error(err),
		)
		return cr, err
	}
	r.Logger.Debug("rechecker_checked",
		zap.String("target_id", string(t.ID)),
		zap.String("url", t.URL),
		zap.Int("status", out.StatusCode),
		zap.Bool("up", out.Success),
		zap.Float64("latency_ms", out.LatencyMS),
		zap.String("reason", out.Message),
	)
	return cr, nil
}

package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/dashboard"
	"github.com/hamed0406/uptimeboard/internal/domain"
	"github.com/hamed0406/uptimeboard/internal/notify"
	"github.com/hamed0406/uptimeboard/internal/present"
	"github.com/hamed0406/uptimeboard/internal/repo"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	Cooldown        time.Duration
}

// Alerter watches published snapshots and notifies when a target's current
// status flips between good and bad. Unknown never alerts.
type Alerter struct {
	logger   *zap.Logger
	alertDB  repo.AlertStore
	notifier notify.Notifier
	cfg      AlerterConfig
	now      func() time.Time
}

func NewAlerter(logger *zap.Logger, alertDB repo.AlertStore, notifier notify.Notifier, cfg AlerterConfig) *Alerter {
	return &Alerter{
		logger:   logger,
		alertDB:  alertDB,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Observe is a refresher Listener.
func (a *Alerter) Observe(ctx context.Context, s dashboard.Snapshot) {
	if err := a.scan(ctx, s); err != nil {
		a.logger.Warn("alerter_scan_error", zap.Error(err))
	}
}

func (a *Alerter) scan(ctx context.Context, snap dashboard.Snapshot) error {
	now := a.now()

	for _, s := range snap.Websites {
		if s.CurrentStatus == domain.StatusUnknown {
			continue
		}
		down := s.CurrentStatus == domain.StatusBad

		rec, err := a.alertDB.AlertState(ctx, s.ID)
		if err != nil {
			return fmt.Errorf("alert state %s: %w", s.ID, err)
		}

		if rec != nil && rec.LastStatus == s.CurrentStatus {
			continue
		}

		// Cooldown only applies to DOWN alerts (suppresses flapping).
		cooled := true
		if rec != nil && rec.LastSentAt != nil {
			cooled = now.Sub(*rec.LastSentAt) >= a.cfg.Cooldown
		}

		downAlert := down && cooled
		recoveryAlert := !down && rec != nil && a.cfg.AlertOnRecovery

		if !downAlert && !recoveryAlert {
			// Nothing sent: record the status but keep the last send time,
			// otherwise a quiet transition would reset the cooldown.
			var sentAt time.Time
			if rec != nil && rec.LastSentAt != nil {
				sentAt = *rec.LastSentAt
			}
			if err := a.alertDB.SaveAlertState(ctx, s.ID, s.CurrentStatus, sentAt); err != nil {
				return fmt.Errorf("record state %s: %w", s.ID, err)
			}
			continue
		}

		title := "🔴 Target DOWN"
		if recoveryAlert {
			title = "🟢 Target RECOVERED"
		}
		if err := a.notifier.Send(ctx, title, message(s, snap.GeneratedAt)); err != nil {
			a.logger.Warn("alerter_send_error", zap.String("target_id", string(s.ID)), zap.Error(err))
		}
		if err := a.alertDB.SaveAlertState(ctx, s.ID, s.CurrentStatus, now); err != nil {
			return fmt.Errorf("record alert %s: %w", s.ID, err)
		}
		a.logger.Info("alert_sent",
			zap.String("target_id", string(s.ID)),
			zap.String("status", string(s.CurrentStatus)),
		)
	}
	return nil
}

func message(s domain.Summary, at time.Time) string {
	return fmt.Sprintf(
		"URL: %s\nUptime: %s\nLast 30 min: %s\nLast checked: %s",
		s.URL,
		present.FormatUptime(s.UptimePercentage),
		present.Strip(s.Ticks()),
		present.LastChecked(s.LastChecked, at),
	)
}

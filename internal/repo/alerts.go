package repo

import (
	"context"
	"time"

	"github.com/hamed0406/uptimeboard/internal/domain"
)

// AlertState is the last current status the alerter acted on for a target.
// LastSentAt is nil when that status change was recorded without a
// notification; it drives the cooldown.
type AlertState struct {
	TargetID   domain.TargetID
	LastStatus domain.Status
	LastSentAt *time.Time
}

type AlertStore interface {
	// AlertState returns nil, nil if nothing was recorded yet.
	AlertState(ctx context.Context, id domain.TargetID) (*AlertState, error)
	// SaveAlertState upserts. A zero sentAt is stored as NULL.
	SaveAlertState(ctx context.Context, id domain.TargetID, status domain.Status, sentAt time.Time) error
}

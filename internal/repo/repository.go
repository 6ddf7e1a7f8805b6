package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hamed0406/uptimeboard/internal/domain"
)

// Ports (interfaces): memory, postgres and sqlite adapters implement them.
type TargetStore interface {
	// Add assigns ID/CreatedAt when empty. Returns domain.ErrDuplicateTarget
	// when the URL is already monitored.
	Add(ctx context.Context, t *domain.Target) error
	List(ctx context.Context) ([]*domain.Target, error)
	// GetByID returns domain.ErrTargetNotFound for an unknown id.
	GetByID(ctx context.Context, id domain.TargetID) (*domain.Target, error)
	// GetByURL returns nil, nil if there is no such target.
	GetByURL(ctx context.Context, url string) (*domain.Target, error)
}

type ResultStore interface {
	Append(ctx context.Context, r *domain.CheckResult) error
	// History returns every sample recorded for a target, in no particular order.
	History(ctx context.Context, id domain.TargetID) ([]domain.Sample, error)
	// Histories returns the full sample history of every target that has one.
	Histories(ctx context.Context) (map[domain.TargetID][]domain.Sample, error)
	Latest(ctx context.Context) ([]LatestRow, error)
}

// LatestRow is the newest result for a target joined with its URL.
type LatestRow struct {
	TargetID   string    `json:"targetId"`
	URL        string    `json:"url"`
	Up         bool      `json:"up"`
	HTTPStatus *int      `json:"httpStatus"`
	LatencyMS  *float64  `json:"latencyMs"`
	Reason     string    `json:"reason,omitempty"`
	CheckedAt  time.Time `json:"checkedAt"`
}

// Store bundles every port one backend provides.
type Store interface {
	TargetStore
	ResultStore
	AlertStore
	Close() error
}

// NewTargetID returns a fresh random target id.
func NewTargetID() domain.TargetID {
	return domain.TargetID(uuid.NewString())
}

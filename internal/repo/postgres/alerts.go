package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hamed0406/uptimeboard/internal/domain"
	"github.com/hamed0406/uptimeboard/internal/repo"
)

func (s *Store) AlertState(ctx context.Context, id domain.TargetID) (*repo.AlertState, error) {
	var (
		status string
		sent   *time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT last_status, last_sent_at FROM alerts WHERE target_id=$1`, string(id)).Scan(&status, &sent)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("alert state: %w", err)
	}
	st, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return &repo.AlertState{TargetID: id, LastStatus: st, LastSentAt: sent}, nil
}

func (s *Store) SaveAlertState(ctx context.Context, id domain.TargetID, status domain.Status, sentAt time.Time) error {
	const q = `
		INSERT INTO alerts (target_id, last_status, last_sent_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (target_id)
		DO UPDATE SET last_status=EXCLUDED.last_status, last_sent_at=EXCLUDED.last_sent_at
	`
	var ts *time.Time
	if !sentAt.IsZero() {
		u := sentAt.UTC()
		ts = &u
	}
	if _, err := s.pool.Exec(ctx, q, string(id), string(status), ts); err != nil {
		return fmt.Errorf("save alert state: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/domain"
	"github.com/hamed0406/uptimeboard/internal/repo"
)

var _ repo.Store = (*Store)(nil)

// Schema is applied by Migrate. Safe to run repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS targets (
  id         TEXT PRIMARY KEY,
  url        TEXT NOT NULL UNIQUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS results (
  id          BIGSERIAL PRIMARY KEY,
  target_id   TEXT NOT NULL REFERENCES targets(id) ON DELETE CASCADE,
  up          BOOLEAN NOT NULL,
  http_status INTEGER NULL,
  latency_ms  DOUBLE PRECISION NOT NULL,
  reason      TEXT NOT NULL,
  checked_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_target_time ON results (target_id, checked_at DESC);
CREATE INDEX IF NOT EXISTS idx_results_checked_at   ON results (checked_at DESC);

CREATE TABLE IF NOT EXISTS alerts (
  target_id    TEXT PRIMARY KEY,
  last_status  TEXT NOT NULL,
  last_sent_at TIMESTAMPTZ NULL
);
`

const uniqueViolation = "23505"

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	s.log.Info("postgres_schema_applied")
	return nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// ---- TargetStore ----

func (s *Store) Add(ctx context.Context, t *domain.Target) error {
	if t.ID == "" {
		t.ID = repo.NewTargetID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO targets (id, url, created_at)
		 VALUES ($1, $2, $3)`,
		string(t.ID), t.URL, t.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateTarget
		}
		return fmt.Errorf("insert target: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*domain.Target, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, url, created_at
		   FROM targets
		  ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	defer rows.Close()

	var out []*domain.Target
	for rows.Next() {
		t, err := scanTarget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetByID(ctx context.Context, id domain.TargetID) (*domain.Target, error) {
	row := s.pool.QueryRow(ctx, `SELECT id, url, created_at FROM targets WHERE id = $1`, string(id))
	t, err := scanTarget(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTargetNotFound
	}
	return t, err
}

func (s *Store) GetByURL(ctx context.Context, url string) (*domain.Target, error) {
	row := s.pool.QueryRow(ctx, `SELECT id, url, created_at FROM targets WHERE url = $1`, url)
	t, err := scanTarget(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func scanTarget(row pgx.Row) (*domain.Target, error) {
	var (
		id        string
		url       string
		createdAt time.Time
	)
	if err := row.Scan(&id, &url, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan target: %w", err)
	}
	return &domain.Target{ID: domain.TargetID(id), URL: url, CreatedAt: createdAt}, nil
}

// ---- ResultStore ----

func (s *Store) Append(ctx context.Context, cr *domain.CheckResult) error {
	if cr.CheckedAt.IsZero() {
		cr.CheckedAt = time.Now().UTC()
	}
	var statusPtr *int
	if cr.HTTPStatus != 0 {
		statusPtr = &cr.HTTPStatus
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO results
		   (target_id, up, http_status, latency_ms, reason, checked_at)
		 VALUES
		   ($1, $2, $3, $4, $5, $6)`,
		string(cr.TargetID), cr.Up, statusPtr, cr.LatencyMS, cr.Reason, cr.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *Store) History(ctx context.Context, id domain.TargetID) ([]domain.Sample, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT up, checked_at FROM results WHERE target_id = $1`, string(id))
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	var out []domain.Sample
	for rows.Next() {
		var (
			up        bool
			checkedAt time.Time
		)
		if err := rows.Scan(&up, &checkedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, domain.CheckResult{Up: up, CheckedAt: checkedAt}.Sample())
	}
	return out, rows.Err()
}

func (s *Store) Histories(ctx context.Context) (map[domain.TargetID][]domain.Sample, error) {
	rows, err := s.pool.Query(ctx, `SELECT target_id, up, checked_at FROM results`)
	if err != nil {
		return nil, fmt.Errorf("histories: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.TargetID][]domain.Sample)
	for rows.Next() {
		var (
			targetID  string
			up        bool
			checkedAt time.Time
		)
		if err := rows.Scan(&targetID, &up, &checkedAt); err != nil {
			return nil, fmt.Errorf("scan histories: %w", err)
		}
		id := domain.TargetID(targetID)
		out[id] = append(out[id], domain.CheckResult{Up: up, CheckedAt: checkedAt}.Sample())
	}
	return out, rows.Err()
}

func (s *Store) Latest(ctx context.Context) ([]repo.LatestRow, error) {
	rows, err := s.pool.Query(ctx, `
SELECT DISTINCT ON (r.target_id)
       r.target_id,
       t.url,
       r.up,
       r.http_status,
       r.latency_ms,
       r.reason,
       r.checked_at
  FROM results r
  JOIN targets t ON t.id = r.target_id
 ORDER BY r.target_id, r.checked_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("latest: %w", err)
	}
	defer rows.Close()

	var out []repo.LatestRow
	for rows.Next() {
		var (
			targetID  string
			url       string
			up        bool
			httpNull  sql.NullInt32
			latency   float64
			reason    string
			checkedAt time.Time
		)
		if err := rows.Scan(&targetID, &url, &up, &httpNull, &latency, &reason, &checkedAt); err != nil {
			return nil, fmt.Errorf("scan latest: %w", err)
		}

		var httpStatusPtr *int
		if httpNull.Valid {
			v := int(httpNull.Int32)
			httpStatusPtr = &v
		}
		lat := latency

		out = append(out, repo.LatestRow{
			TargetID:   targetID,
			URL:        url,
			Up:         up,
			HTTPStatus: httpStatusPtr,
			LatencyMS:  &lat,
			Reason:     reason,
			CheckedAt:  checkedAt,
		})
	}
	return out, rows.Err()
}

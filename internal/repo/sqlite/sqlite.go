// Package sqlite is a single-file store for small deployments. DSNs look
// like "sqlite:///var/lib/uptime/uptime.db" or "sqlite://:memory:".
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/hamed0406/uptimeboard/internal/domain"
	"github.com/hamed0406/uptimeboard/internal/repo"
)

var _ repo.Store = (*Store)(nil)

const Prefix = "sqlite://"

const schema = `
CREATE TABLE IF NOT EXISTS targets (
	id         TEXT PRIMARY KEY,
	url        TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	target_id   TEXT NOT NULL REFERENCES targets(id) ON DELETE CASCADE,
	up          INTEGER NOT NULL,
	http_status INTEGER NULL,
	latency_ms  REAL NOT NULL,
	reason      TEXT NOT NULL,
	checked_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_target_time ON results (target_id, checked_at);
CREATE TABLE IF NOT EXISTS alerts (
	target_id    TEXT PRIMARY KEY,
	last_status  TEXT NOT NULL,
	last_sent_at TEXT NULL
);`

type Store struct {
	db  *sql.DB
	log *zap.Logger
	mu  sync.Mutex // serializes writes
}

// New opens (or creates) the database named by dsn and applies the schema.
func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	path := strings.TrimPrefix(dsn, Prefix)
	if path == "" {
		return nil, errors.New("sqlite: empty path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// one connection keeps :memory: databases shared and writes ordered
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	log.Info("sqlite_open", zap.String("path", path))
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// timeLayout is fixed width so text comparison in ORDER BY matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) }

// ---- TargetStore ----

func (s *Store) Add(ctx context.Context, t *domain.Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.GetByURL(ctx, t.URL)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrDuplicateTarget
	}
	if t.ID == "" {
		t.ID = repo.NewTargetID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO targets (id, url, created_at) VALUES (?, ?, ?)`,
		string(t.ID), t.URL, formatTime(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert target: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*domain.Target, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, created_at FROM targets ORDER BY created_at DESC, id DESC`)
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
	row := s.db.QueryRowContext(ctx, `SELECT id, url, created_at FROM targets WHERE id = ?`, string(id))
	t, err := scanTarget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTargetNotFound
	}
	return t, err
}

func (s *Store) GetByURL(ctx context.Context, url string) (*domain.Target, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, url, created_at FROM targets WHERE url = ?`, url)
	t, err := scanTarget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTarget(row scanner) (*domain.Target, error) {
	var id, url, created string
	if err := row.Scan(&id, &url, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan target: %w", err)
	}
	ts, err := parseTime(created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &domain.Target{ID: domain.TargetID(id), URL: url, CreatedAt: ts}, nil
}

// ---- ResultStore ----

func (s *Store) Append(ctx context.Context, cr *domain.CheckResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cr.CheckedAt.IsZero() {
		cr.CheckedAt = time.Now().UTC()
	}
	var status sql.NullInt64
	if cr.HTTPStatus != 0 {
		status = sql.NullInt64{Int64: int64(cr.HTTPStatus), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO results (target_id, up, http_status, latency_ms, reason, checked_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(cr.TargetID), boolToInt(cr.Up), status, cr.LatencyMS, cr.Reason, formatTime(cr.CheckedAt))
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *Store) History(ctx context.Context, id domain.TargetID) ([]domain.Sample, error) {
	all, err := s.histories(ctx, `SELECT target_id, up, checked_at FROM results WHERE target_id = ?`, string(id))
	if err != nil {
		return nil, err
	}
	return all[id], nil
}

func (s *Store) Histories(ctx context.Context) (map[domain.TargetID][]domain.Sample, error) {
	return s.histories(ctx, `SELECT target_id, up, checked_at FROM results`)
}

func (s *Store) histories(ctx context.Context, q string, args ...any) (map[domain.TargetID][]domain.Sample, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("histories: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.TargetID][]domain.Sample)
	for rows.Next() {
		var (
			targetID, checked string
			up                int
		)
		if err := rows.Scan(&targetID, &up, &checked); err != nil {
			return nil, fmt.Errorf("scan histories: %w", err)
		}
		ts, err := parseTime(checked)
		if err != nil {
			return nil, fmt.Errorf("parse checked_at: %w", err)
		}
		id := domain.TargetID(targetID)
		out[id] = append(out[id], domain.CheckResult{Up: up != 0, CheckedAt: ts}.Sample())
	}
	return out, rows.Err()
}

func (s *Store) Latest(ctx context.Context) ([]repo.LatestRow, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT r.target_id, t.url, r.up, r.http_status, r.latency_ms, r.reason, r.checked_at
  FROM results r
  JOIN targets t ON t.id = r.target_id
 WHERE r.id = (SELECT r2.id FROM results r2
                WHERE r2.target_id = r.target_id
                ORDER BY r2.checked_at DESC, r2.id DESC LIMIT 1)`)
	if err != nil {
		return nil, fmt.Errorf("latest: %w", err)
	}
	defer rows.Close()

	var out []repo.LatestRow
	for rows.Next() {
		var (
			targetID, url, reason, checked string
			up                             int
			status                         sql.NullInt64
			latency                        float64
		)
		if err := rows.Scan(&targetID, &url, &up, &status, &latency, &reason, &checked); err != nil {
			return nil, fmt.Errorf("scan latest: %w", err)
		}
		ts, err := parseTime(checked)
		if err != nil {
			return nil, fmt.Errorf("parse checked_at: %w", err)
		}
		var hs *int
		if status.Valid {
			v := int(status.Int64)
			hs = &v
		}
		lat := latency
		out = append(out, repo.LatestRow{
			TargetID:   targetID,
			URL:        url,
			Up:         up != 0,
			HTTPStatus: hs,
			LatencyMS:  &lat,
			Reason:     reason,
			CheckedAt:  ts,
		})
	}
	return out, rows.Err()
}

// ---- AlertStore ----

func (s *Store) AlertState(ctx context.Context, id domain.TargetID) (*repo.AlertState, error) {
	var (
		status string
		sent   sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT last_status, last_sent_at FROM alerts WHERE target_id = ?`, string(id)).Scan(&status, &sent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("alert state: %w", err)
	}
	st, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	r := &repo.AlertState{TargetID: id, LastStatus: st}
	if sent.Valid {
		ts, err := parseTime(sent.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_sent_at: %w", err)
		}
		r.LastSentAt = &ts
	}
	return r, nil
}

func (s *Store) SaveAlertState(ctx context.Context, id domain.TargetID, status domain.Status, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sent sql.NullString
	if !sentAt.IsZero() {
		sent = sql.NullString{String: formatTime(sentAt), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts (target_id, last_status, last_sent_at) VALUES (?, ?, ?)
		ON CONFLICT (target_id)
		DO UPDATE SET last_status = excluded.last_status, last_sent_at = excluded.last_sent_at`,
		string(id), string(status), sent)
	if err != nil {
		return fmt.Errorf("save alert state: %w", err)
	}
	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

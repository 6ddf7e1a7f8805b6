package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hamed0406/uptimeboard/internal/domain"
	"github.com/hamed0406/uptimeboard/internal/repo"
)

var _ repo.Store = (*Store)(nil)

type Store struct {
	mu      sync.RWMutex
	targets map[domain.TargetID]*domain.Target
	results map[domain.TargetID][]domain.CheckResult
	alerts  map[domain.TargetID]repo.AlertState
}

func New() *Store {
	return &Store{
		targets: make(map[domain.TargetID]*domain.Target),
		results: make(map[domain.TargetID][]domain.CheckResult),
		alerts:  make(map[domain.TargetID]repo.AlertState),
	}
}

func (m *Store) Close() error { return nil }

// ---- TargetStore ----

func (m *Store) Add(ctx context.Context, t *domain.Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.targets {
		if existing.URL == t.URL {
			return domain.ErrDuplicateTarget
		}
	}
	if t.ID == "" {
		t.ID = repo.NewTargetID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	cp := *t
	m.targets[t.ID] = &cp
	return nil
}

func (m *Store) List(ctx context.Context) ([]*domain.Target, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Target, 0, len(m.targets))
	for _, t := range m.targets {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Store) GetByID(ctx context.Context, id domain.TargetID) (*domain.Target, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.targets[id]
	if !ok {
		return nil, domain.ErrTargetNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *Store) GetByURL(ctx context.Context, url string) (*domain.Target, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.targets {
		if t.URL == url {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

// ---- ResultStore ----

func (m *Store) Append(ctx context.Context, r *domain.CheckResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.CheckedAt.IsZero() {
		r.CheckedAt = time.Now().UTC()
	}
	m.results[r.TargetID] = append(m.results[r.TargetID], *r)
	return nil
}

func (m *Store) History(ctx context.Context, id domain.TargetID) ([]domain.Sample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.Samples(m.results[id]), nil
}

func (m *Store) Histories(ctx context.Context) (map[domain.TargetID][]domain.Sample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[domain.TargetID][]domain.Sample, len(m.results))
	for id, rs := range m.results {
		out[id] = domain.Samples(rs)
	}
	return out, nil
}

func (m *Store) Latest(ctx context.Context) ([]repo.LatestRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]repo.LatestRow, 0, len(m.results))
	for tid, rs := range m.results {
		if len(rs) == 0 {
			continue
		}
		r := rs[0]
		for _, x := range rs[1:] {
			if x.CheckedAt.After(r.CheckedAt) {
				r = x
			}
		}
		var hs *int
		var lat *float64
		if r.HTTPStatus != 0 {
			v := r.HTTPStatus
			hs = &v
		}
		if r.LatencyMS != 0 {
			v := r.LatencyMS
			lat = &v
		}
		url := ""
		if t := m.targets[tid]; t != nil {
			url = t.URL
		}
		out = append(out, repo.LatestRow{
			TargetID:   string(tid),
			URL:        url,
			Up:         r.Up,
			HTTPStatus: hs,
			LatencyMS:  lat,
			Reason:     r.Reason,
			CheckedAt:  r.CheckedAt,
		})
	}
	return out, nil
}

// ---- AlertStore ----

func (m *Store) AlertState(ctx context.Context, id domain.TargetID) (*repo.AlertState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.alerts[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Store) SaveAlertState(ctx context.Context, id domain.TargetID, status domain.Status, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ts *time.Time
	if !sentAt.IsZero() {
		ts = &sentAt
	}
	m.alerts[id] = repo.AlertState{TargetID: id, LastStatus: status, LastSentAt: ts}
	return nil
}

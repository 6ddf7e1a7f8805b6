package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/domain"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	dsn := Prefix + filepath.Join(t.TempDir(), "uptime.db")
	s, err := New(context.Background(), dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_Targets(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	a := &domain.Target{URL: "https://a.example.com", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := &domain.Target{URL: "https://b.example.com", CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)}
	for _, tg := range []*domain.Target{a, b} {
		if err := s.Add(ctx, tg); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if err := s.Add(ctx, &domain.Target{URL: a.URL}); !errors.Is(err, domain.ErrDuplicateTarget) {
		t.Fatalf("want ErrDuplicateTarget, got %v", err)
	}

	list, err := s.List(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("List: %v len=%d", err, len(list))
	}
	if list[0].ID != b.ID {
		t.Fatalf("want newest first, got %s", list[0].URL)
	}

	got, err := s.GetByID(ctx, a.ID)
	if err != nil || got.URL != a.URL || !got.CreatedAt.Equal(a.CreatedAt) {
		t.Fatalf("GetByID: %+v %v", got, err)
	}
	if _, err := s.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrTargetNotFound) {
		t.Fatalf("want ErrTargetNotFound, got %v", err)
	}
	if got, err := s.GetByURL(ctx, "https://missing.example"); got != nil || err != nil {
		t.Fatalf("GetByURL miss should be nil,nil: %+v %v", got, err)
	}
}

func TestSQLiteStore_Results(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	tgt := &domain.Target{URL: "https://example.com"}
	if err := s.Add(ctx, tgt); err != nil {
		t.Fatalf("Add: %v", err)
	}
	base := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
	for i, up := range []bool{true, true, false} {
		cr := &domain.CheckResult{TargetID: tgt.ID, Up: up, HTTPStatus: 200 + i, LatencyMS: 5, Reason: "x", CheckedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := s.Append(ctx, cr); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	h, err := s.History(ctx, tgt.ID)
	if err != nil || len(h) != 3 {
		t.Fatalf("History: %v len=%d", err, len(h))
	}
	bad := 0
	for _, smp := range h {
		if smp.Outcome == domain.Bad {
			bad++
		}
	}
	if bad != 1 {
		t.Fatalf("want 1 bad sample, got %d", bad)
	}

	latest, err := s.Latest(ctx)
	if err != nil || len(latest) != 1 {
		t.Fatalf("Latest: %v %v", latest, err)
	}
	row := latest[0]
	if row.Up || row.HTTPStatus == nil || *row.HTTPStatus != 202 || !row.CheckedAt.Equal(base.Add(2*time.Minute)) {
		t.Fatalf("unexpected latest row: %+v", row)
	}
}

func TestSQLiteStore_AlertState(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	if rec, err := s.AlertState(ctx, "T1"); err != nil || rec != nil {
		t.Fatalf("expected nil, got %+v err=%v", rec, err)
	}
	if err := s.SaveAlertState(ctx, "T1", domain.StatusBad, time.Time{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	rec, err := s.AlertState(ctx, "T1")
	if err != nil || rec == nil || rec.LastSentAt != nil || rec.LastStatus != domain.StatusBad {
		t.Fatalf("unexpected: %+v err=%v", rec, err)
	}
	if err := s.SaveAlertState(ctx, "T1", domain.StatusGood, time.Now()); err != nil {
		t.Fatalf("save2: %v", err)
	}
	rec, err = s.AlertState(ctx, "T1")
	if err != nil || rec == nil || rec.LastSentAt == nil || rec.LastStatus != domain.StatusGood {
		t.Fatalf("unexpected2: %+v err=%v", rec, err)
	}
}

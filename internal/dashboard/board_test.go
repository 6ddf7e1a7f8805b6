package dashboard

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hamed0406/uptimeboard/internal/domain"
)

func summary(id string, created time.Time, st domain.Status) domain.Summary {
	return domain.Summary{ID: domain.TargetID(id), CreatedAt: created, CurrentStatus: st}
}

func TestCompute(t *testing.T) {
	now := time.Now()
	got := Compute([]domain.Summary{
		summary("a", now, domain.StatusGood),
		summary("b", now, domain.StatusGood),
		summary("c", now, domain.StatusBad),
		summary("d", now, domain.StatusUnknown),
	})
	want := Stats{Total: 4, Healthy: 2, Critical: 1, Unknown: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestNewSnapshot_SortsNewestFirst(t *testing.T) {
	base := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
	in := []domain.Summary{
		summary("old", base, domain.StatusGood),
		summary("new", base.Add(time.Hour), domain.StatusBad),
		summary("mid", base.Add(time.Minute), domain.StatusUnknown),
	}
	s := NewSnapshot(base, in)

	var ids []domain.TargetID
	for _, w := range s.Websites {
		ids = append(ids, w.ID)
	}
	if diff := cmp.Diff([]domain.TargetID{"new", "mid", "old"}, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if in[0].ID != "old" {
		t.Fatalf("input slice was reordered")
	}
	if s.Stats.Total != 3 || s.Stats.Critical != 1 {
		t.Fatalf("stats wrong: %+v", s.Stats)
	}
	if _, ok := s.Find("mid"); !ok {
		t.Fatalf("Find should locate mid")
	}
	if _, ok := s.Find("nope"); ok {
		t.Fatalf("Find should miss unknown id")
	}
}

func TestBoard_PublishCurrent(t *testing.T) {
	b := NewBoard()
	if _, ok := b.Current(); ok {
		t.Fatalf("empty board should report no snapshot")
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.Publish(NewSnapshot(time.Unix(int64(i), 0), nil))
			_, _ = b.Current()
		}(i)
	}
	wg.Wait()

	cur, ok := b.Current()
	if !ok {
		t.Fatalf("expected a snapshot after publish")
	}
	if !cur.GeneratedAt.Equal(time.Unix(7, 0)) {
		t.Fatalf("newest snapshot must win, have %v", cur.GeneratedAt)
	}
}

func TestBoard_IgnoresOlderSnapshot(t *testing.T) {
	b := NewBoard()
	newer := time.Date(2024, 1, 1, 12, 0, 30, 0, time.UTC)

	if !b.Publish(NewSnapshot(newer, []domain.Summary{summary("new", newer, domain.StatusGood)})) {
		t.Fatalf("first publish must be accepted")
	}
	if b.Publish(NewSnapshot(newer.Add(-time.Second), nil)) {
		t.Fatalf("older snapshot must be rejected")
	}
	cur, _ := b.Current()
	if !cur.GeneratedAt.Equal(newer) || len(cur.Websites) != 1 {
		t.Fatalf("board was overwritten: %+v", cur)
	}
	if !b.Publish(NewSnapshot(newer, nil)) {
		t.Fatalf("same-time snapshot must replace the current one")
	}
}

package dashboard

import (
	"sort"
	"sync"
	"time"

	"github.com/hamed0406/uptimeboard/internal/domain"
)

// Snapshot is one refresh cycle's worth of summaries.
type Snapshot struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	Websites    []domain.Summary `json:"websites"`
	Stats       Stats            `json:"stats"`
}

func NewSnapshot(now time.Time, summaries []domain.Summary) Snapshot {
	ws := make([]domain.Summary, len(summaries))
	copy(ws, summaries)
	// newest targets first
	sort.SliceStable(ws, func(i, j int) bool {
		return ws[i].CreatedAt.After(ws[j].CreatedAt)
	})
	return Snapshot{GeneratedAt: now, Websites: ws, Stats: Compute(ws)}
}

func (s Snapshot) Find(id domain.TargetID) (domain.Summary, bool) {
	for _, w := range s.Websites {
		if w.ID == id {
			return w, true
		}
	}
	return domain.Summary{}, false
}

// Board holds the latest snapshot. Readers never block a refresh for long.
type Board struct {
	mu   sync.RWMutex
	snap Snapshot
	ok   bool
}

func NewBoard() *Board { return &Board{} }

// Publish replaces the current snapshot unless s was generated before it.
// Overlapping refreshes can finish out of order; the older one loses.
func (b *Board) Publish(s Snapshot) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ok && s.GeneratedAt.Before(b.snap.GeneratedAt) {
		return false
	}
	b.snap = s
	b.ok = true
	return true
}

// Current returns the latest snapshot and whether any refresh has completed.
func (b *Board) Current() (Snapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snap, b.ok
}

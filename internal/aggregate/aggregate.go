// Package aggregate turns a target's raw sample history into a fixed-length
// strip of windowed statuses plus an overall availability figure.
//
// Everything here is pure: the result depends only on the samples, the
// reference time and the Config. Callers pass now explicitly.
package aggregate

import (
	"slices"
	"time"

	"github.com/hamed0406/uptimeboard/internal/domain"
)

const (
	DefaultWindowCount = 10
	DefaultWindowWidth = 3 * time.Minute
	DefaultHorizon     = DefaultWindowCount * DefaultWindowWidth

	// GoodThreshold is the share of Good samples at or above which a window
	// is good. An even split counts as good.
	GoodThreshold = 0.5
)

type Config struct {
	Horizon     time.Duration `yaml:"horizon"`
	WindowWidth time.Duration `yaml:"window_width"`
	WindowCount int           `yaml:"window_count"`
}

func DefaultConfig() Config {
	return Config{
		Horizon:     DefaultHorizon,
		WindowWidth: DefaultWindowWidth,
		WindowCount: DefaultWindowCount,
	}
}

// Normalize fills zero or negative fields. A missing horizon spans all windows.
func (c Config) Normalize() Config {
	if c.WindowCount <= 0 {
		c.WindowCount = DefaultWindowCount
	}
	if c.WindowWidth <= 0 {
		c.WindowWidth = DefaultWindowWidth
	}
	if c.Horizon <= 0 {
		c.Horizon = time.Duration(c.WindowCount) * c.WindowWidth
	}
	return c
}

// Aggregate runs order, select, bucket and summarize for one target.
// It never fails; empty or sparse input resolves to unknown windows.
func Aggregate(t domain.Target, samples []domain.Sample, now time.Time, cfg Config) domain.Summary {
	cfg = cfg.Normalize()

	ordered := order(samples)
	recent := selectRecent(ordered, now, cfg.Horizon)
	windows := bucket(recent, now, cfg)

	good := 0
	for _, s := range ordered {
		if s.IsGood() {
			good++
		}
	}

	sum := domain.Summary{
		ID:               t.ID,
		URL:              t.URL,
		CreatedAt:        t.CreatedAt,
		CurrentStatus:    windows[len(windows)-1].Status,
		UptimePercentage: uptime(good, len(ordered)),
		Windows:          windows,
		GoodCount:        good,
		TotalCount:       len(ordered),
	}
	if len(ordered) > 0 {
		last := ordered[0].Timestamp
		sum.LastChecked = &last
	}
	return sum
}

// order returns a copy sorted newest first. The input is left untouched.
func order(samples []domain.Sample) []domain.Sample {
	out := slices.Clone(samples)
	slices.SortStableFunc(out, func(a, b domain.Sample) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}

// selectRecent keeps samples strictly newer than now-horizon. ordered must
// be newest first, so the kept samples form a prefix.
func selectRecent(ordered []domain.Sample, now time.Time, horizon time.Duration) []domain.Sample {
	cutoff := now.Add(-horizon)
	n := 0
	for n < len(ordered) && ordered[n].Timestamp.After(cutoff) {
		n++
	}
	return ordered[:n]
}

// bucket splits recent samples into cfg.WindowCount windows, oldest first.
// Window i covers [now-(N-i)*W, now-(N-i-1)*W).
func bucket(recent []domain.Sample, now time.Time, cfg Config) []domain.Window {
	n := cfg.WindowCount
	w := cfg.WindowWidth

	windows := make([]domain.Window, n)
	for i := range windows {
		windows[i] = domain.Window{
			Index: i,
			Start: now.Add(-time.Duration(n-i) * w),
			End:   now.Add(-time.Duration(n-i-1) * w),
		}
	}

	for _, s := range recent {
		i := windowIndex(s.Timestamp, now, n, w)
		if i < 0 {
			continue
		}
		windows[i].Total++
		if s.IsGood() {
			windows[i].Good++
		}
	}

	for i := range windows {
		windows[i].Status = vote(windows[i].Good, windows[i].Total)
	}
	return windows
}

// windowIndex maps a timestamp to its window or -1 when it falls outside
// [now-N*W, now).
func windowIndex(ts, now time.Time, n int, w time.Duration) int {
	if !ts.Before(now) {
		return -1
	}
	age := now.Sub(ts)
	// age in ((k-1)*W, k*W] belongs to window N-k
	k := int((age + w - 1) / w)
	i := n - k
	if i < 0 || i >= n {
		return -1
	}
	return i
}

func vote(good, total int) domain.Status {
	switch {
	case total == 0:
		return domain.StatusUnknown
	case float64(good)/float64(total) >= GoodThreshold:
		return domain.StatusGood
	default:
		return domain.StatusBad
	}
}

// uptime is computed over the full history. A target with no history at all
// reports 100.
func uptime(good, total int) float64 {
	if total == 0 {
		return 100
	}
	return 100 * float64(good) / float64(total)
}

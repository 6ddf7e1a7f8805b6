package domain

import (
	"fmt"
	"time"
)

// Status is the three-valued state of a window or a target.
type Status string

const (
	StatusGood    Status = "good"
	StatusBad     Status = "bad"
	StatusUnknown Status = "unknown"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusGood, StatusBad, StatusUnknown:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Window is one fixed-width time bucket. Start is inclusive, End exclusive.
type Window struct {
	Index  int       `json:"index"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Good   int       `json:"good"`
	Total  int       `json:"total"`
	Status Status    `json:"status"`
}

// Summary is the aggregated view of one target at a reference time.
// Windows are ordered oldest to newest. A nil LastChecked means the target
// has never been checked.
type Summary struct {
	ID               TargetID   `json:"id"`
	URL              string     `json:"url"`
	CreatedAt        time.Time  `json:"createdAt"`
	CurrentStatus    Status     `json:"currentStatus"`
	UptimePercentage float64    `json:"uptimePercentage"`
	LastChecked      *time.Time `json:"lastChecked"`
	Windows          []Window   `json:"windows"`
	GoodCount        int        `json:"goodCount"`
	TotalCount       int        `json:"totalCount"`
}

// Ticks returns the window statuses oldest to newest.
func (s Summary) Ticks() []Status {
	out := make([]Status, len(s.Windows))
	for i, w := range s.Windows {
		out[i] = w.Status
	}
	return out
}

func (s Summary) NeverChecked() bool { return s.LastChecked == nil }

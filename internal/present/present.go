// Package present maps aggregation summaries to what a dashboard shows:
// visual states, formatted percentages, severity bands and a text strip.
package present

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hamed0406/uptimeboard/internal/domain"
)

type State string

const (
	Healthy       State = "healthy"
	Critical      State = "critical"
	Indeterminate State = "indeterminate"
)

func VisualState(s domain.Status) State {
	switch s {
	case domain.StatusGood:
		return Healthy
	case domain.StatusBad:
		return Critical
	default:
		return Indeterminate
	}
}

type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityWarn     Severity = "warn"
	SeverityCritical Severity = "critical"
)

// UptimeSeverity bands the percentage: above 99 ok, above 95 warn.
func UptimeSeverity(pct float64) Severity {
	switch {
	case pct > 99:
		return SeverityOK
	case pct > 95:
		return SeverityWarn
	default:
		return SeverityCritical
	}
}

// FormatUptime renders one decimal place, e.g. "99.5%".
func FormatUptime(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

const Never = "never"

// LastChecked renders the newest sample time relative to now.
func LastChecked(t *time.Time, now time.Time) string {
	if t == nil {
		return Never
	}
	return humanize.RelTime(*t, now, "ago", "from now")
}

var glyphs = map[domain.Status]string{
	domain.StatusGood:    "█",
	domain.StatusBad:     "▁",
	domain.StatusUnknown: "·",
}

// Strip renders window statuses oldest to newest, left to right.
func Strip(ticks []domain.Status) string {
	var b strings.Builder
	for _, t := range ticks {
		g, ok := glyphs[t]
		if !ok {
			g = glyphs[domain.StatusUnknown]
		}
		b.WriteString(g)
	}
	return b.String()
}

// Card is the per-target view model.
type Card struct {
	ID          domain.TargetID `json:"id"`
	URL         string          `json:"url"`
	State       State           `json:"state"`
	Status      domain.Status   `json:"status"`
	Uptime      string          `json:"uptime"`
	Severity    Severity        `json:"severity"`
	LastChecked string          `json:"lastChecked"`
	Ticks       []domain.Status `json:"ticks"`
	Strip       string          `json:"strip"`
}

func NewCard(s domain.Summary, now time.Time) Card {
	ticks := s.Ticks()
	return Card{
		ID:          s.ID,
		URL:         s.URL,
		State:       VisualState(s.CurrentStatus),
		Status:      s.CurrentStatus,
		Uptime:      FormatUptime(s.UptimePercentage),
		Severity:    UptimeSeverity(s.UptimePercentage),
		LastChecked: LastChecked(s.LastChecked, now),
		Ticks:       ticks,
		Strip:       Strip(ticks),
	}
}

func Cards(ss []domain.Summary, now time.Time) []Card {
	out := make([]Card, 0, len(ss))
	for _, s := range ss {
		out = append(out, NewCard(s, now))
	}
	return out
}

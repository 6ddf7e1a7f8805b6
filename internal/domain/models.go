package domain

import "time"

type TargetID string

type Target struct {
	ID        TargetID  `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// Outcome is the normalized result of one health check.
type Outcome string

const (
	Good Outcome = "Good"
	Bad  Outcome = "Bad"
)

// Sample is one timestamped health-check outcome for a target.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Outcome   Outcome   `json:"outcome"`
}

func (s Sample) IsGood() bool { return s.Outcome == Good }

// CheckResult is the raw record a probe produces. It carries more than the
// aggregation needs; Sample strips it down to {timestamp, outcome}.
type CheckResult struct {
	TargetID   TargetID  `json:"targetId"`
	Up         bool      `json:"up"`
	HTTPStatus int       `json:"httpStatus,omitempty"`
	LatencyMS  float64   `json:"latencyMs"`
	Reason     string    `json:"reason,omitempty"`
	CheckedAt  time.Time `json:"checkedAt"`
}

func (cr CheckResult) Sample() Sample {
	o := Bad
	if cr.Up {
		o = Good
	}
	return Sample{Timestamp: cr.CheckedAt, Outcome: o}
}

// Samples normalizes a batch of raw results.
func Samples(rs []CheckResult) []Sample {
	out := make([]Sample, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Sample())
	}
	return out
}

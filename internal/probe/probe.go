package probe

import (
	"context"
	"time"

	"github.com/hamed0406/uptimeboard/internal/domain"
)

// CheckResult is the unified result of a single probe.
//
// StatusCode is the HTTP status when available; 0 for transport/DNS errors.
// Name labels the checker that produced it ("HTTP", "DNS").
type CheckResult struct {
	Success    bool
	LatencyMS  float64
	Message    string
	StatusCode int
	Name       string
}

// Checker performs a single check for a given target URL.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}

// Record turns a probe outcome into the stored result for a target.
func Record(id domain.TargetID, out CheckResult, at time.Time) *domain.CheckResult {
	return &domain.CheckResult{
		TargetID:   id,
		Up:         out.Success,
		HTTPStatus: out.StatusCode,
		LatencyMS:  out.LatencyMS,
		Reason:     out.Message,
		CheckedAt:  at.UTC(),
	}
}

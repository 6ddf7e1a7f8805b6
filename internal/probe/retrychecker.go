package probe

import (
	"context"
	"fmt"
	"time"
)

// RetryChecker re-runs Inner until it succeeds, Attempts are used up or ctx
// is done.
type RetryChecker struct {
	Inner    Checker
	Attempts int
	Backoff  time.Duration
}

func NewRetryChecker(inner Checker, attempts int, backoff time.Duration) *RetryChecker {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryChecker{Inner: inner, Attempts: attempts, Backoff: backoff}
}

func (r *RetryChecker) Check(ctx context.Context, target string) CheckResult {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var last CheckResult
	tried := 0
	for i := 0; i < attempts; i++ {
		last = r.Inner.Check(ctx, target)
		tried++
		if last.Success {
			return last
		}
		if i == attempts-1 || !sleep(ctx, r.Backoff) {
			break
		}
	}
	if tried > 1 {
		last.Message = fmt.Sprintf("%s (after %d attempts)", last.Message, tried)
	}
	return last
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// drainLimit bounds how much of a body is read so the connection can be reused.
const drainLimit = 4 << 10

// HTTPChecker probes a URL with a single GET. The first answer decides:
// 2xx and 3xx are up, redirects are not followed.
type HTTPChecker struct {
	Client    *http.Client
	Timeout   time.Duration
	UserAgent string
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPChecker{
		Client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		Timeout:   timeout,
		UserAgent: "uptimeboard/1",
	}
}

func (h *HTTPChecker) Check(ctx context.Context, target string) CheckResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return httpFailure(fmt.Sprintf("bad request: %v", err), 0)
	}
	req.Header.Set("User-Agent", h.UserAgent)

	start := time.Now()
	resp, err := h.Client.Do(req)
	latency := sinceMS(start)
	if err != nil {
		return httpFailure(h.describe(ctx, err), latency)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))

	return CheckResult{
		Name:       "HTTP",
		Success:    isUp(resp.StatusCode),
		Message:    resp.Status,
		StatusCode: resp.StatusCode,
		LatencyMS:  latency,
	}
}

// describe turns a transport error into the reason stored with the result.
func (h *HTTPChecker) describe(ctx context.Context, err error) string {
	var ne net.Error
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return "check cancelled"
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		return fmt.Sprintf("timeout after %s", h.Timeout)
	default:
		return err.Error()
	}
}

func isUp(code int) bool { return code >= 200 && code < 400 }

func httpFailure(msg string, latency float64) CheckResult {
	return CheckResult{Name: "HTTP", Message: msg, LatencyMS: latency}
}

func sinceMS(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

// Package client talks to the dashboard API on behalf of uptimectl.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/hamed0406/uptimeboard/internal/dashboard"
	"github.com/hamed0406/uptimeboard/internal/domain"
)

// APIError is a 4xx answer from the API. It is never retried.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %d: %s", e.Status, e.Message)
}

type Client struct {
	Base     string
	Key      string
	HTTP     *http.Client
	Attempts int
	Backoff  time.Duration
}

func New(base, key string) *Client {
	return &Client{
		Base:     base,
		Key:      key,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
		Attempts: 3,
		Backoff:  500 * time.Millisecond,
	}
}

type AddResult struct {
	Website *domain.Summary     `json:"website"`
	Target  domain.Target       `json:"target"`
	Result  *domain.CheckResult `json:"result"`
}

// Add submits a new target. A duplicate URL comes back as
// domain.ErrDuplicateTarget.
func (c *Client) Add(ctx context.Context, url string) (AddResult, error) {
	body, err := json.Marshal(map[string]string{"url": url})
	if err != nil {
		return AddResult{}, err
	}
	var out AddResult
	err = c.do(ctx, http.MethodPost, "/api/v1/website", body, &out)
	var ae *APIError
	if errors.As(err, &ae) && ae.Status == http.StatusConflict {
		return AddResult{}, fmt.Errorf("%s: %w", url, domain.ErrDuplicateTarget)
	}
	return out, err
}

func (c *Client) Websites(ctx context.Context) (dashboard.Snapshot, error) {
	var snap dashboard.Snapshot
	err := c.do(ctx, http.MethodGet, "/api/v1/websites", nil, &snap)
	return snap, err
}

func (c *Client) Stats(ctx context.Context) (dashboard.Stats, error) {
	var st dashboard.Stats
	err := c.do(ctx, http.MethodGet, "/api/v1/stats", nil, &st)
	return st, err
}

// do retries transport failures and 5xx answers, then reports
// domain.ErrServiceUnavailable.
func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	attempts := c.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var last error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			t := time.NewTimer(c.Backoff * time.Duration(i))
			select {
			case <-ctx.Done():
				t.Stop()
				return fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, ctx.Err())
			case <-t.C:
			}
		}

		retry, err := c.once(ctx, method, path, body, out)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		last = err
	}
	return fmt.Errorf("%w: %v (after %d attempts)", domain.ErrServiceUnavailable, last, attempts)
}

func (c *Client) once(ctx context.Context, method, path string, body []byte, out any) (retry bool, err error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, rd)
	if err != nil {
		return false, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Key != "" {
		req.Header.Set("Authorization", "Bearer "+c.Key)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return true, fmt.Errorf("api returned %s", resp.Status)
	}
	if resp.StatusCode >= 400 {
		var eb struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		if eb.Error == "" {
			eb.Error = resp.Status
		}
		return false, &APIError{Status: resp.StatusCode, Message: eb.Error}
	}
	if out == nil {
		return false, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return false, nil
}

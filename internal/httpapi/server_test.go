package httpapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/dashboard"
	"github.com/hamed0406/uptimeboard/internal/domain"
	apimw "github.com/hamed0406/uptimeboard/internal/httpapi/middleware"
	"github.com/hamed0406/uptimeboard/internal/repo/memory"
)

var refTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&domain.ValidationError{Field: "url", Value: "x", Reason: "bad"}, http.StatusBadRequest},
		{fmt.Errorf("add: %w", domain.ErrDuplicateTarget), http.StatusConflict},
		{domain.ErrTargetNotFound, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", domain.ErrServiceUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := statusFor(c.err); got != c.want {
			t.Fatalf("statusFor(%v)=%d want %d", c.err, got, c.want)
		}
	}
}

func TestRouter_CORS(t *testing.T) {
	store := memory.New()
	srv := NewServer(zap.NewNop(), store, store, &fakeChecker{}, dashboard.NewBoard(), nil)
	h := srv.Router(apimw.Keys{}, []string{"https://dash.example"}, 0, 0, 0, 0)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/websites", nil)
	req.Header.Set("Origin", "https://dash.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.example" {
		t.Fatalf("allowed origin: got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/websites", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("foreign origin must not be allowed, got %q", got)
	}
}

func TestRouter_Gzip(t *testing.T) {
	store := memory.New()
	board := dashboard.NewBoard()
	var ws []domain.Summary
	for i := 0; i < 50; i++ {
		ws = append(ws, domain.Summary{ID: domain.TargetID(fmt.Sprint(i)), URL: fmt.Sprintf("https://%d.example", i)})
	}
	board.Publish(dashboard.NewSnapshot(refTime, ws))
	srv := NewServer(zap.NewNop(), store, store, &fakeChecker{}, board, nil)
	h := srv.Router(apimw.Keys{}, nil, 0, 0, 0, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/websites", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip response")
	}
}

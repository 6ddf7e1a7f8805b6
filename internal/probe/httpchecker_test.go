package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hamed0406/uptimeboard/internal/domain"
)

func TestHTTPChecker_StatusOK(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("ok"))
	}))
	defer s.Close()

	chk := NewHTTPChecker(2 * time.Second)
	out := chk.Check(context.Background(), s.URL)
	if !out.Success {
		t.Fatalf("want success, got %+v", out)
	}
	if out.StatusCode != 200 {
		t.Fatalf("want status 200, got %d", out.StatusCode)
	}
	if !strings.HasPrefix(out.Message, "200") {
		t.Fatalf("want message to start with 200, got %q", out.Message)
	}
	if out.LatencyMS < 0 {
		t.Fatalf("latency should be >= 0, got %f", out.LatencyMS)
	}
}

func TestHTTPChecker_RedirectCountsAsUp(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer s.Close()

	out := NewHTTPChecker(2*time.Second).Check(context.Background(), s.URL)
	if !out.Success || out.StatusCode != http.StatusNotModified {
		t.Fatalf("want 304 to count as up, got %+v", out)
	}
}

func TestHTTPChecker_Status500(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", 500)
	}))
	defer s.Close()

	chk := NewHTTPChecker(2 * time.Second)
	out := chk.Check(context.Background(), s.URL)
	if out.Success {
		t.Fatalf("want failure, got %+v", out)
	}
	if out.StatusCode != 500 {
		t.Fatalf("want status 500, got %d", out.StatusCode)
	}
	if !strings.HasPrefix(out.Message, "500") {
		t.Fatalf("want message to start with 500, got %q", out.Message)
	}
}

func TestHTTPChecker_TimeoutSetsStatusZero(t *testing.T) {
	// Server sleeps longer than client timeout
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer s.Close()

	chk := NewHTTPChecker(50 * time.Millisecond)
	out := chk.Check(context.Background(), s.URL)
	if out.Success {
		t.Fatalf("want failure due to timeout, got %+v", out)
	}
	if out.StatusCode != 0 {
		t.Fatalf("want status 0 on transport error, got %d", out.StatusCode)
	}
	if !strings.HasPrefix(out.Message, "timeout after 50ms") {
		t.Fatalf("want timeout reason, got %q", out.Message)
	}
}

func TestHTTPChecker_DoesNotFollowRedirects(t *testing.T) {
	var hits int32
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/broken", http.StatusFound)
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer s.Close()

	out := NewHTTPChecker(2*time.Second).Check(context.Background(), s.URL+"/")
	if !out.Success || out.StatusCode != http.StatusFound {
		t.Fatalf("want the 302 itself to count as up, got %+v", out)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("redirect target must not be requested, got %d hits", n)
	}
}

func TestHTTPChecker_InvalidTarget(t *testing.T) {
	out := NewHTTPChecker(time.Second).Check(context.Background(), "http://exa mple.com")
	if out.Success || out.StatusCode != 0 || !strings.HasPrefix(out.Message, "bad request") {
		t.Fatalf("want bad request failure, got %+v", out)
	}
}

func TestHTTPChecker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := NewHTTPChecker(time.Second).Check(ctx, "http://127.0.0.1:1")
	if out.Success || out.Message != "check cancelled" {
		t.Fatalf("want cancelled failure, got %+v", out)
	}
}

func TestRecord(t *testing.T) {
	at := time.Date(2025, 8, 18, 14, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	cr := Record("T1", CheckResult{Success: false, StatusCode: 503, LatencyMS: 3, Message: "503 Service Unavailable"}, at)
	if cr.TargetID != "T1" || cr.Up || cr.HTTPStatus != 503 || cr.CheckedAt.Location() != time.UTC {
		t.Fatalf("unexpected record: %+v", cr)
	}
	if cr.Sample().Outcome != domain.Bad {
		t.Fatalf("down record should normalize to Bad")
	}
}

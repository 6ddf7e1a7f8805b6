package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/domain"
	"github.com/hamed0406/uptimeboard/internal/repo/memory"
	"github.com/hamed0406/uptimeboard/internal/repo/sqlite"
)

func TestKind(t *testing.T) {
	cases := map[string]string{
		"":                         "memory",
		"sqlite:///tmp/x.db":       "sqlite",
		"postgres://u:p@h/db":      "postgres",
		"postgresql://u:p@h/db":    "postgres",
		"mysql://root:secret@h/db": "",
	}
	for dsn, want := range cases {
		if got := Kind(dsn); got != want {
			t.Fatalf("Kind(%q)=%q want %q", dsn, got, want)
		}
	}
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), "", zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := s.(*memory.Store); !ok {
		t.Fatalf("want memory store, got %T", s)
	}
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "data", "uptime.db")
	s, err := Open(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := s.(*sqlite.Store); !ok {
		t.Fatalf("want sqlite store, got %T", s)
	}
	if err := s.Add(ctx, &domain.Target{URL: "https://example.com"}); err != nil {
		t.Fatal(err)
	}
}

func TestOpen_UnknownSchemeHidesCredentials(t *testing.T) {
	_, err := Open(context.Background(), "mysql://root:secret@h/db", zap.NewNop())
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "secret") {
		t.Fatalf("credentials leaked: %v", err)
	}
}

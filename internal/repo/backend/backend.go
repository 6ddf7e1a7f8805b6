// Package backend opens the store named by a DATABASE_URL.
package backend

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/repo"
	"github.com/hamed0406/uptimeboard/internal/repo/memory"
	"github.com/hamed0406/uptimeboard/internal/repo/postgres"
	"github.com/hamed0406/uptimeboard/internal/repo/sqlite"
)

// Kind names the adapter a DSN selects.
func Kind(dsn string) string {
	switch {
	case dsn == "":
		return "memory"
	case strings.HasPrefix(dsn, sqlite.Prefix):
		return "sqlite"
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres"
	default:
		return ""
	}
}

// Open returns an in-memory store for an empty dsn, a SQLite store for
// sqlite:// and a migrated Postgres store for postgres://.
func Open(ctx context.Context, dsn string, log *zap.Logger) (repo.Store, error) {
	switch Kind(dsn) {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlite.New(ctx, dsn, log)
	case "postgres":
		pg, err := postgres.New(ctx, dsn, log)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme in %q", redact(dsn))
	}
}

// redact hides everything after the scheme so credentials never reach logs.
func redact(dsn string) string {
	if i := strings.Index(dsn, "://"); i >= 0 {
		return dsn[:i+3] + "…"
	}
	return "…"
}

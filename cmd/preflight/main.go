// cmd/preflight/main.go
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hamed0406/uptimeboard/internal/config"
	"github.com/hamed0406/uptimeboard/internal/repo/backend"
	"github.com/hamed0406/uptimeboard/internal/scheduler"
)

func main() {
	os.Exit(run(os.Stdout, os.Stderr))
}

// run checks the environment the API will start with and returns the exit code.
func run(stdout, stderr io.Writer) int {
	failed := false
	fail := func(msg string) {
		fmt.Fprintln(stderr, "✖", msg)
		failed = true
	}
	warn := func(msg string) { fmt.Fprintln(stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Fprintln(stdout, "✔", msg) }

	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))
	pub := strings.TrimSpace(os.Getenv("PUBLIC_API_KEYS"))

	if admin == "" {
		fail("ADMIN_API_KEYS is empty (admin routes are open to anyone).")
	}
	if pub == "" {
		fail("PUBLIC_API_KEYS is empty (read routes are open to anyone).")
	}

	// Normalize and sanity-check lists (no spaces around commas).
	for name, v := range map[string]string{"ADMIN_API_KEYS": admin, "PUBLIC_API_KEYS": pub} {
		if strings.Contains(v, " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fail("CONFIG_FILE: " + err.Error())
	}

	if os.Getenv("API_ADDR") == "" {
		warn("API_ADDR is empty; default " + cfg.Addr + " will be used.")
	} else {
		ok("API_ADDR=" + cfg.Addr)
	}

	switch kind := backend.Kind(cfg.DatabaseURL); kind {
	case "memory":
		warn("DATABASE_URL empty; API will use the in-memory store and lose history on restart.")
	case "":
		fail("DATABASE_URL has an unsupported scheme (use postgres:// or sqlite://).")
	default:
		ok("DATABASE_URL present (" + kind + ")")
	}

	if _, err := scheduler.ParseSchedule(cfg.CheckSchedule); err != nil {
		fail(err.Error())
	} else if cfg.CheckSchedule == "" {
		warn("CHECK_SCHEDULE empty; targets are only checked when added.")
	} else {
		ok("CHECK_SCHEDULE=" + cfg.CheckSchedule)
	}

	agg := cfg.Aggregation.Normalize()
	ok(fmt.Sprintf("aggregation: %d windows of %s, horizon %s", agg.WindowCount, agg.WindowWidth, agg.Horizon))

	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS empty; every origin will be allowed by CORS.")
	} else {
		ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
	}

	if cfg.SlackWebhook == "" {
		warn("SLACK_WEBHOOK_URL empty; status alerts are disabled.")
	} else {
		ok("SLACK_WEBHOOK_URL present")
	}

	if failed {
		return 1
	}
	ok("preflight passed")
	return 0
}

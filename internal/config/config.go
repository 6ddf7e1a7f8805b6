package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hamed0406/uptimeboard/internal/aggregate"
)

type Config struct {
	Addr        string // API bind address, e.g., "127.0.0.1:8080" (Windows) or ":8080" (Docker)
	LogDir      string // logs directory
	LogLevel    string // zap level name
	DatabaseURL string // postgres://..., sqlite:///path/uptime.db, or empty for in-memory
	ConfigFile  string // optional YAML overlay

	HTTPTimeout         time.Duration // per-probe timeout
	RetryAttempts       int           // how many times to retry HTTP check
	RetryBackoff        time.Duration // backoff between retries
	CheckSchedule       string        // cron spec or "@every 1m"; empty disables rechecks
	MaxConcurrentChecks int

	RefreshInterval time.Duration // how often summaries are recomputed
	Aggregation     aggregate.Config

	PublicAPIKeys  []string
	AdminAPIKeys   []string
	PublicRPM      int
	PublicBurst    int
	AdminRPM       int
	AdminBurst     int
	AllowedOrigins []string

	SlackWebhook    string
	AlertOnRecovery bool
	AlertCooldown   time.Duration
}

func FromEnv() Config {
	// Bind address (Windows-friendly default)
	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	schedule := "@every 1m"
	if v, ok := os.LookupEnv("CHECK_SCHEDULE"); ok {
		schedule = strings.TrimSpace(v)
	}

	return Config{
		Addr:        addr,
		LogDir:      logDir,
		LogLevel:    os.Getenv("LOG_LEVEL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ConfigFile:  os.Getenv("CONFIG_FILE"),

		HTTPTimeout:         envMillis("HTTP_TIMEOUT_MS", 10*time.Second),
		RetryAttempts:       envInt("RETRY_ATTEMPTS", 2, 1),
		RetryBackoff:        envMillis("RETRY_BACKOFF_MS", 300*time.Millisecond),
		CheckSchedule:       schedule,
		MaxConcurrentChecks: envInt("MAX_CONCURRENT_CHECKS", 8, 1),

		RefreshInterval: envMillis("REFRESH_INTERVAL_MS", 15*time.Second),
		Aggregation: aggregate.Config{
			Horizon:     envDuration("AGG_HORIZON", aggregate.DefaultHorizon),
			WindowWidth: envDuration("AGG_WINDOW_WIDTH", aggregate.DefaultWindowWidth),
			WindowCount: envInt("AGG_WINDOW_COUNT", aggregate.DefaultWindowCount, 1),
		},

		PublicAPIKeys:  envList("PUBLIC_API_KEYS"),
		AdminAPIKeys:   envList("ADMIN_API_KEYS"),
		PublicRPM:      envInt("PUBLIC_RPM", 120, 0),
		PublicBurst:    envInt("PUBLIC_BURST", 60, 1),
		AdminRPM:       envInt("ADMIN_RPM", 30, 0),
		AdminBurst:     envInt("ADMIN_BURST", 10, 1),
		AllowedOrigins: envList("ALLOWED_ORIGINS"),

		SlackWebhook:    os.Getenv("SLACK_WEBHOOK_URL"),
		AlertOnRecovery: envBool("ALERT_ON_RECOVERY", true),
		AlertCooldown:   envMillis("ALERT_COOLDOWN_MS", 10*time.Minute),
	}
}

// File is the optional YAML overlay. Environment variables win over it.
type File struct {
	Aggregation     aggregate.Config `yaml:"aggregation"`
	RefreshInterval time.Duration    `yaml:"refresh_interval"`
	CheckSchedule   string           `yaml:"check_schedule"`
}

func LoadFile(path string) (File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return File{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return f, nil
}

// Load reads the environment and, when CONFIG_FILE is set, the YAML overlay.
func Load() (Config, error) {
	cfg := FromEnv()
	if cfg.ConfigFile == "" {
		return cfg, nil
	}
	f, err := LoadFile(cfg.ConfigFile)
	if err != nil {
		return cfg, err
	}
	cfg.Apply(f)
	return cfg, nil
}

// Apply copies values from the file that the environment did not set.
func (c *Config) Apply(f File) {
	c.Aggregation = MergeAggregation(c.Aggregation, f.Aggregation)
	if f.RefreshInterval > 0 && os.Getenv("REFRESH_INTERVAL_MS") == "" {
		c.RefreshInterval = f.RefreshInterval
	}
	if _, set := os.LookupEnv("CHECK_SCHEDULE"); f.CheckSchedule != "" && !set {
		c.CheckSchedule = f.CheckSchedule
	}
}

// MergeAggregation overlays file values onto base unless the matching
// environment variable is set.
func MergeAggregation(base, file aggregate.Config) aggregate.Config {
	if file.Horizon > 0 && os.Getenv("AGG_HORIZON") == "" {
		base.Horizon = file.Horizon
	}
	if file.WindowWidth > 0 && os.Getenv("AGG_WINDOW_WIDTH") == "" {
		base.WindowWidth = file.WindowWidth
	}
	if file.WindowCount > 0 && os.Getenv("AGG_WINDOW_COUNT") == "" {
		base.WindowCount = file.WindowCount
	}
	return base
}

func envInt(key string, def, min int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= min {
			return n
		}
	}
	return def
}

func envMillis(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envList(key string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

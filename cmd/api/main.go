package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/config"
	"github.com/hamed0406/uptimeboard/internal/dashboard"
	"github.com/hamed0406/uptimeboard/internal/httpapi"
	apimw "github.com/hamed0406/uptimeboard/internal/httpapi/middleware"
	"github.com/hamed0406/uptimeboard/internal/logging"
	"github.com/hamed0406/uptimeboard/internal/notify"
	"github.com/hamed0406/uptimeboard/internal/probe"
	"github.com/hamed0406/uptimeboard/internal/repo/backend"
	"github.com/hamed0406/uptimeboard/internal/scheduler"
)

func main() {
	cfg, cfgErr := config.Load()
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	if cfgErr != nil {
		logger.Warn("config_file_error", zap.String("path", cfg.ConfigFile), zap.Error(cfgErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := backend.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("store_open_error", zap.Error(err))
	}
	defer store.Close()
	logger.Info("store_ready", zap.String("kind", backend.Kind(cfg.DatabaseURL)))

	// HTTP check, retried, with a DNS diagnosis attached to failures.
	checker := probe.NewDiagnosing(
		probe.NewRetryChecker(probe.NewHTTPChecker(cfg.HTTPTimeout), cfg.RetryAttempts, cfg.RetryBackoff),
	)

	board := dashboard.NewBoard()
	refresher := scheduler.NewRefresher(
		logger, store, store, board,
		cfg.Aggregation, cfg.RefreshInterval, cfg.MaxConcurrentChecks,
	)

	schedule, err := scheduler.ParseSchedule(cfg.CheckSchedule)
	if err != nil {
		logger.Fatal("check_schedule_error", zap.Error(err))
	}
	perTarget := time.Duration(cfg.RetryAttempts)*cfg.HTTPTimeout + time.Duration(cfg.RetryAttempts-1)*cfg.RetryBackoff
	rechecker := scheduler.NewRechecker(logger, store, store, checker, schedule, perTarget, cfg.MaxConcurrentChecks)
	rechecker.AfterPass = refresher.Trigger

	api := httpapi.NewServer(logger, store, store, checker, board, refresher)
	refresher.Subscribe(api.Hub.Publish)

	if slack := notify.NewSlack(cfg.SlackWebhook); slack != nil {
		alerter := scheduler.NewAlerter(logger, store, notify.Multi{slack}, scheduler.AlerterConfig{
			AlertOnRecovery: cfg.AlertOnRecovery,
			Cooldown:        cfg.AlertCooldown,
		})
		refresher.Subscribe(alerter.Observe)
		logger.Info("alerts_enabled", zap.Bool("on_recovery", cfg.AlertOnRecovery), zap.Duration("cooldown", cfg.AlertCooldown))
	} else {
		logger.Info("alerts_disabled")
	}

	if cfg.ConfigFile != "" {
		envAgg := config.FromEnv().Aggregation
		go func() {
			err := config.Watch(ctx, cfg.ConfigFile, logger, func(f config.File) {
				refresher.SetConfig(config.MergeAggregation(envAgg, f.Aggregation))
			})
			if err != nil {
				logger.Warn("config_watch_error", zap.Error(err))
			}
		}()
	}

	go rechecker.Run(ctx)
	go refresher.Run(ctx)
	go api.Hub.Run(ctx)

	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("api_shutdown_error", zap.Error(err))
		}
	}()

	logger.Info("api_listen",
		zap.String("addr", cfg.Addr),
		zap.String("check_schedule", cfg.CheckSchedule),
		zap.Duration("refresh_interval", cfg.RefreshInterval),
		zap.Int("window_count", cfg.Aggregation.WindowCount),
		zap.Duration("window_width", cfg.Aggregation.WindowWidth),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("api_listen_error", zap.Error(err))
	}
	logger.Info("api_stopped")
}

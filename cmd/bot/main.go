package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/DepSpiel/telegram-pidrgpt/internal/config"
	"github.com/DepSpiel/telegram-pidrgpt/internal/infra/composer"
	workerPkg "github.com/DepSpiel/telegram-pidrgpt/internal/infra/worker"
	"github.com/DepSpiel/telegram-pidrgpt/internal/observability/logging"
	"github.com/DepSpiel/telegram-pidrgpt/internal/publisher"
	digestUC "github.com/DepSpiel/telegram-pidrgpt/internal/usecase/digest"
)

func main() {
	logger := initLogger()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Optional YAML profile overrides the env configuration
	profile := loadProfile(logger)
	applyProfile(workerConfig, profile)

	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("publish_max_concurrent", workerConfig.PublishMaxConcurrent),
		slog.Duration("compose_timeout", workerConfig.ComposeTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	// Initialize publish channels and the dispatch service
	channels := buildChannels(logger, profile)
	publisherService := publisher.NewService(channels, workerConfig.PublishMaxConcurrent)
	logger.Info("Publisher service initialized",
		slog.Int("channels", len(channels)),
		slog.Int("max_concurrent", workerConfig.PublishMaxConcurrent))

	// Initialize the digest composer
	comp := createComposer(logger)
	digestService := digestUC.NewService(comp, publisherService)

	// Start metrics HTTP server
	startMetricsServer(ctx, logger, publisherService)

	// Health check server
	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("health check server starting", slog.String("addr", healthAddr))
		if err := healthServer.Start(gctx); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("health server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return runCronWorker(gctx, logger, digestService, workerConfig, workerMetrics, healthServer)
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("shutdown signal received", slog.String("signal", sig.String()))
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	runErr := g.Wait()

	// Drain in-flight publishes before exiting
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := publisherService.Shutdown(shutdownCtx); err != nil {
		logger.Error("publisher shutdown failed", slog.Any("error", err))
	}

	if runErr != nil {
		logger.Error("bot terminated with error", slog.Any("error", runErr))
		os.Exit(1)
	}
	logger.Info("bot stopped")
}

// initLogger initializes the daemon logger and installs it as the default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// loadProfile loads the optional YAML bot profile named by BOT_PROFILE.
// Returns nil when no profile is configured.
func loadProfile(logger *slog.Logger) *config.BotProfile {
	path := os.Getenv("BOT_PROFILE")
	if path == "" {
		return nil
	}

	profile, err := config.LoadBotProfile(path)
	if err != nil {
		logger.Error("failed to load bot profile", slog.String("path", path), slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("bot profile loaded",
		slog.String("path", path),
		slog.Bool("dry_run", profile.IsDryRun()))
	return profile
}

// applyProfile overlays profile values onto the env-derived worker config.
func applyProfile(cfg *workerPkg.WorkerConfig, profile *config.BotProfile) {
	if profile == nil {
		return
	}
	if schedule := profile.GetSchedule(); schedule != "" {
		cfg.CronSchedule = schedule
	}
	if timezone := profile.GetTimezone(); timezone != "" {
		cfg.Timezone = timezone
	}
}

// buildChannels creates the publish channels. In dry-run mode the only
// channel is the noop sink, so a digest run exercises the full pipeline
// without reaching Telegram.
func buildChannels(logger *slog.Logger, profile *config.BotProfile) []publisher.Channel {
	if profile != nil && profile.IsDryRun() {
		logger.Info("dry-run mode enabled, digests will not leave the process")
		return []publisher.Channel{publisher.NewNoopChannel()}
	}

	telegramConfig := publisher.LoadTelegramConfig()
	if profile != nil {
		if chatIDs := profile.GetChatIDs(); len(chatIDs) > 0 {
			telegramConfig.ChatIDs = chatIDs
		}
		if parseMode := profile.GetParseMode(); parseMode != "" {
			telegramConfig.ParseMode = parseMode
		}
	}

	telegramChannel, err := publisher.NewTelegramChannel(telegramConfig)
	if err != nil {
		logger.Error("failed to initialize Telegram channel", slog.Any("error", err))
		os.Exit(1)
	}

	if telegramChannel.IsEnabled() {
		logger.Info("Telegram channel initialized",
			slog.String("status", "enabled"),
			slog.Int("chats", len(telegramConfig.ChatIDs)))
	} else {
		logger.Info("Telegram channel disabled")
	}

	return []publisher.Channel{telegramChannel}
}

// createComposer creates the Perplexity-backed digest composer.
func createComposer(logger *slog.Logger) *composer.Perplexity {
	apiKey := os.Getenv("PERPLEXITY_API_KEY")
	if apiKey == "" {
		logger.Error("PERPLEXITY_API_KEY is required")
		os.Exit(1)
	}
	logger.Info("Using Perplexity API for digest composition")
	return composer.NewPerplexity(apiKey)
}

// runCronWorker starts the cron scheduler and blocks until ctx is canceled.
func runCronWorker(ctx context.Context, logger *slog.Logger, svc digestUC.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) error {
	// Load timezone
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runDigestJob(logger, svc, cfg, metrics, healthServer)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	c.Start()

	markReady(ctx, logger, svc, healthServer)

	logger.Info("bot started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	<-ctx.Done()

	logger.Info("stopping cron scheduler")
	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}

// markReady flips the readiness probe once the composer answers a
// connectivity check. If the check fails, readiness is deferred to the
// first successful digest run.
func markReady(ctx context.Context, logger *slog.Logger, svc digestUC.Service, healthServer *workerPkg.HealthServer) {
	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if svc.CheckConnectivity(checkCtx) {
		healthServer.SetReady(true)
		logger.Info("bot marked as ready")
		return
	}
	logger.Warn("composer connectivity check failed, readiness deferred to first successful run")
}

// runDigestJob executes a single digest run with timeout and error handling.
func runDigestJob(logger *slog.Logger, svc digestUC.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	startTime := time.Now()
	metrics.RecordRun("started")
	logger.Info("digest run started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ComposeTimeout)
	defer cancel()

	stats, err := svc.ComposeAndPublish(ctx)
	if err != nil {
		logger.Error("digest run failed", slog.Any("error", err))
		metrics.RecordRun("failure")
		metrics.RecordRunDuration(time.Since(startTime).Seconds())
		return
	}

	// Record metrics
	metrics.RecordRun("success")
	metrics.RecordRunDuration(time.Since(startTime).Seconds())
	metrics.RecordLastSuccess()

	// A run that publishes proves the pipeline works end to end
	healthServer.SetReady(true)

	logger.Info("digest published",
		slog.String("request_id", stats.RequestID),
		slog.Int("enabled_channels", stats.EnabledChannels),
		slog.Duration("duration", stats.Duration),
	)
}

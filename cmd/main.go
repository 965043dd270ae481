package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"channelwatch/internal/adapters/config"
	"channelwatch/internal/adapters/creatorapi"
	"channelwatch/internal/adapters/errors/noop"
	"channelwatch/internal/adapters/errors/sentry"
	"channelwatch/internal/adapters/postgres"
	redisclient "channelwatch/internal/adapters/redis"
	"channelwatch/internal/adapters/telegram"
	"channelwatch/internal/analytics"
	"channelwatch/internal/discovery"
	"channelwatch/internal/domain/channel"
	"channelwatch/internal/metrics"
	"channelwatch/internal/repository/memory"
	pgrepo "channelwatch/internal/repository/postgres"
	redisrepo "channelwatch/internal/repository/redis"
	"channelwatch/internal/workers"
	"channelwatch/pkg/errors"
	"channelwatch/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	// Initialize error tracker
	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	// Prometheus collectors and the /metrics endpoint
	metrics.Init()
	metricsSrv := startMetricsServer(cfg, log)

	// Channel store: postgres in production, in-memory for local runs
	repo, audit, pgClient := initStores(cfg, log)
	if pgClient != nil {
		defer pgClient.Close()
	}

	// Seen store: redis survives restarts, in-memory does not
	seen, redisConn := initSeenStore(cfg, log)
	if redisConn != nil {
		defer redisConn.Close()
	}

	channelSvc := channel.NewService(repo)
	if tracked, err := channelSvc.ActiveCount(context.Background()); err != nil {
		log.Warnf("Failed to count tracked channels: %v", err)
	} else {
		log.Infof("Resuming with %d tracked channels", tracked)
	}

	// External creator-metrics source
	source, err := creatorapi.NewClient(creatorapi.Config{
		BaseURL:       cfg.Source.BaseURL,
		APIKeys:       cfg.Source.APIKeys,
		Timeout:       cfg.Source.Timeout,
		RatePerSecond: cfg.Source.RatePerSecond,
		RateBurst:     cfg.Source.RateBurst,
	})
	if err != nil {
		log.Fatalf("Failed to create source client: %v", err)
	}

	// Telegram publisher
	bot, err := telegram.NewBot(telegram.Config{
		Token: cfg.Telegram.BotToken,
		Debug: cfg.Telegram.Debug,
	}, log)
	if err != nil {
		log.Fatalf("Failed to create Telegram bot: %v", err)
	}
	publisher := telegram.NewPublisher(bot, cfg.Telegram.ChatID, audit, log)

	// Change detection with default adaptive thresholds
	detector := analytics.NewDetector(analytics.DefaultThresholds())

	discoverySvc := discovery.NewService(source, repo, publisher, discovery.Config{
		Region:        cfg.Source.Region,
		TrendingLimit: cfg.Workers.DiscoveryTrendingLimit,
		TopK:          cfg.Workers.DiscoveryTopK,
	})

	// Workers and scheduler
	metricsWorkerCfg := workers.MetricsWorkerConfig{
		InterChannelDelay: cfg.Workers.InterChannelDelay,
		RetentionDays:     cfg.Workers.RetentionDays,
		MinPostGapTier1:   cfg.Workers.MinPostGapTier1,
		MinPostGapTier2:   cfg.Workers.MinPostGapTier2,
		MinPostGapTier3:   cfg.Workers.MinPostGapTier3,
		SmallChannelBelow: 10_000,
		VeryLargeAbove:    1_000_000,
	}

	scheduler := workers.NewScheduler()
	scheduler.RegisterWorker(workers.NewMetricsWorker(
		repo, source, publisher, detector, seen,
		cfg.Workers.MetricsInterval, metricsWorkerCfg,
	))
	scheduler.RegisterWorker(workers.NewDiscoveryWorker(
		discoverySvc, cfg.Workers.DiscoveryInterval,
	))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler.Start(ctx)
	log.Info("System initialized successfully")

	waitForShutdown(ctx, cancel, scheduler, metricsSrv, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// initStores wires the channel repository and the notification audit log.
// With postgres disabled both run in memory and the audit log is dropped.
func initStores(cfg *config.Config, log *logger.Logger) (channel.Repository, channel.NotificationLog, *postgres.Client) {
	if !cfg.Postgres.Enabled {
		log.Warn("Postgres disabled, using in-memory channel store")
		return memory.NewChannelRepository(), nil, nil
	}

	client, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}

	return pgrepo.NewChannelRepository(client.DB()), pgrepo.NewNotificationRepository(client.DB()), client
}

// initSeenStore wires new-upload de-duplication
func initSeenStore(cfg *config.Config, log *logger.Logger) (channel.SeenStore, *redisclient.Client) {
	if !cfg.Redis.Enabled {
		log.Warn("Redis disabled, new-upload de-dup resets on restart")
		return memory.NewSeenStore(), nil
	}

	client, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	return redisrepo.NewSeenStore(client.Client(), cfg.Redis.SeenTTL), client
}

// startMetricsServer exposes prometheus metrics when enabled
func startMetricsServer(cfg *config.Config, log *logger.Logger) *http.Server {
	if !cfg.Metrics.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:    cfg.Metrics.ListenAddr,
		Handler: mux,
	}

	go func() {
		log.Infof("Metrics endpoint listening on %s", cfg.Metrics.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("Metrics server error: %v", err)
		}
	}()

	return srv
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	scheduler *workers.Scheduler,
	metricsSrv *http.Server,
	errorTracker errors.Tracker,
	log *logger.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down...")

	// Stop scheduling new iterations, wait for in-flight ones to drain
	scheduler.Stop()
	cancel()

	if metricsSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Warnf("Metrics server shutdown: %v", err)
		}
	}

	// Flush error tracker
	if errorTracker != nil {
		if err := errorTracker.Flush(context.Background()); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/gods-bracket/cache"
	"github.com/Dosada05/gods-bracket/config"
	"github.com/Dosada05/gods-bracket/db"
	"github.com/Dosada05/gods-bracket/handlers"
	"github.com/Dosada05/gods-bracket/repositories"
	api "github.com/Dosada05/gods-bracket/routes"
	"github.com/Dosada05/gods-bracket/scheduler"
	"github.com/Dosada05/gods-bracket/services"
	"github.com/Dosada05/gods-bracket/sleeper"
	"github.com/Dosada05/gods-bracket/storage"
	"github.com/Dosada05/gods-bracket/utils"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	logger.WithFields(logrus.Fields{"port": cfg.ServerPort, "year": cfg.Tournament.Year}).Info("Configuration loaded")

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.WithError(err).Error("Failed to close database connection")
		} else {
			logger.Info("Database connection closed")
		}
	}()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.Migrate(migrateCtx, dbConn)
	cancelMigrate()
	if err != nil {
		logger.WithError(err).Fatal("Failed to apply database schema")
	}
	logger.Info("Database connection established")

	feed := sleeper.NewHTTPClient(sleeperOptions(cfg), logger)

	store, closeStore := newPlayerStore(cfg, logger)
	defer closeStore()
	players := cache.NewPlayerDirectory(store, feed, cfg.Cache.PlayersTTL, logger)

	var publisher services.SnapshotPublisher
	if r2 := r2Config(cfg); r2.Enabled() {
		uploader, err := storage.NewCloudflareR2Uploader(context.Background(), r2)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize Cloudflare R2 uploader")
		}
		publisher = storage.NewSnapshotPublisher(uploader, cfg.R2.Prefix)
		logger.WithField("bucket", cfg.R2.BucketName).Info("Cloudflare R2 snapshot mirror enabled")
	} else {
		logger.Info("Cloudflare R2 not configured, snapshot mirror disabled")
	}

	settings := tournamentSettings(cfg)

	seedRepo := repositories.NewPostgresSeedRepository(dbConn)
	snapshotRepo := repositories.NewPostgresSnapshotRepository(dbConn)

	seedService := services.NewSeedService(dbConn, seedRepo, feed, logger, settings.Workers)
	leagueService := services.NewLeagueService(feed, settings, logger)
	snapshotService := services.NewSnapshotService(seedService, leagueService, players, snapshotRepo, publisher, settings, logger)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.RebuildCron != "" {
		sched = scheduler.New(snapshotService, cfg.Tournament.Year, logger)
		if err := sched.Start(cfg.Scheduler.RebuildCron); err != nil {
			logger.WithError(err).Fatal("Failed to start rebuild scheduler")
		}
	} else {
		logger.Info("REBUILD_CRON not set, snapshots rebuild only on request")
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, logger, cfg.CORSOrigins, api.Handlers{
		Snapshots: handlers.NewSnapshotHandler(snapshotService),
		Seeds:     handlers.NewSeedHandler(seedService),
		Health:    handlers.NewHealthHandler(dbConn),
	})

	errorLog := logger.WriterLevel(logrus.ErrorLevel)
	defer errorLog.Close()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     log.New(errorLog, "", 0),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.WithField("address", server.Addr).Info("Starting server")
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Server error")
			os.Exit(1)
		}
		logger.Info("Server stopped gracefully")
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("Shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		if sched != nil {
			sched.Stop(shutdownCtx)
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Graceful shutdown failed")
			if closeErr := server.Close(); closeErr != nil {
				logger.WithError(closeErr).Error("Failed to force close server")
			}
			os.Exit(1)
		}
		logger.Info("Server shutdown complete")
	}
	logger.Info("Application exited")
}

// newPlayerStore picks Redis when configured and falls back to process memory.
func newPlayerStore(cfg *config.Config, logger *logrus.Logger) (cache.Store, func()) {
	if cfg.Cache.RedisURL == "" {
		logger.Info("REDIS_URL not set, caching players in memory")
		return cache.NewMemoryStore(), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := cache.NewRedisStoreFromURL(ctx, cfg.Cache.RedisURL)
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, caching players in memory")
		return cache.NewMemoryStore(), func() {}
	}
	logger.Info("Caching players in Redis")
	return store, func() {
		if err := store.Close(); err != nil {
			logger.WithError(err).Error("Failed to close Redis client")
		}
	}
}

func tournamentSettings(cfg *config.Config) services.TournamentSettings {
	t := cfg.Tournament
	return services.TournamentSettings{
		Name:             t.Name,
		GuillotineWeeks:  append([]int(nil), t.GuillotineWeeks...),
		PlayoffWeeks:     append([]int(nil), t.PlayoffWeeks...),
		ChampionshipWeek: t.ChampionshipWeek,
		SurvivorTarget:   t.SurvivorTarget,
		MaxSeeds:         t.MaxSeeds,
		Workers:          t.Workers,
	}
}

func sleeperOptions(cfg *config.Config) sleeper.Options {
	return sleeper.Options{
		BaseURL:   cfg.Sleeper.BaseURL,
		Timeout:   cfg.Sleeper.Timeout,
		Retry:     sleeper.RetryPolicy{MaxAttempts: cfg.Sleeper.RetryAttempts, Backoff: cfg.Sleeper.RetryBackoff},
		RateLimit: cfg.Sleeper.RateLimit,
	}
}

func r2Config(cfg *config.Config) storage.CloudflareR2UploaderConfig {
	return storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2.AccountID,
		AccessKeyID:     cfg.R2.AccessKeyID,
		SecretAccessKey: cfg.R2.SecretAccessKey,
		BucketName:      cfg.R2.BucketName,
		PublicBaseURL:   cfg.R2.PublicBaseURL,
		CacheControl:    cfg.R2.CacheControl,
	}
}

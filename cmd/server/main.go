package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vedalearn/session-backend/internal/cache"
	"github.com/vedalearn/session-backend/internal/catalog"
	"github.com/vedalearn/session-backend/internal/config"
	"github.com/vedalearn/session-backend/internal/database"
	"github.com/vedalearn/session-backend/internal/events"
	"github.com/vedalearn/session-backend/internal/handler"
	"github.com/vedalearn/session-backend/internal/logger"
	"github.com/vedalearn/session-backend/internal/remote"
	"github.com/vedalearn/session-backend/internal/router"
	"github.com/vedalearn/session-backend/internal/store"
	"github.com/vedalearn/session-backend/internal/validator"
	"github.com/vedalearn/session-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("learning_api", cfg.LearningAPIURL).
		Msg("Starting VedaLearn Session Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis (Optional Cache) ─────────────────────────────
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		var err error
		rdb, err = database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, running without cache")
			rdb = nil
		} else {
			defer rdb.Close()
		}
	} else {
		log.Info().Msg("No REDIS_URL configured, running without cache")
	}

	// ─── Build Core Services ───────────────────────────────────────────
	remoteClient := remote.NewClient(cfg.LearningAPIURL, cfg.LearningAPITimeout, log)
	contentCache := cache.New(rdb, cfg.CacheTTL, log)
	catalogService := catalog.NewService(remoteClient, contentCache, log)
	sessionStore := store.New()
	bus := events.NewBus(log)

	// ─── Start Background Reporter ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	reporter := worker.NewReporter(bus, remoteClient, log)
	go func() {
		if err := reporter.Start(workerCtx); err != nil {
			log.Error().Err(err).Msg("Reporter failed to start")
		}
	}()

	// ─── Initialize Handlers ───────────────────────────────────────────
	handlers := &router.Handlers{
		Session:   handler.NewSessionHandler(cfg, catalogService, sessionStore, bus, log),
		Lesson:    handler.NewLessonHandler(catalogService, sessionStore, bus, log),
		Challenge: handler.NewChallengeHandler(catalogService, log),
		WS:        handler.NewWSHandler(sessionStore, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Let in-flight reports drain, then stop the reporter and the bus.
	time.Sleep(2 * time.Second)
	workerCancel()
	if err := bus.Close(); err != nil {
		log.Error().Err(err).Msg("Event bus close error")
	}

	// 3. Stop live session timers.
	sessionStore.Close()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

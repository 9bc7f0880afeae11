package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bandready/ielts-backend/internal/config"
	"github.com/bandready/ielts-backend/internal/database"
	"github.com/bandready/ielts-backend/internal/handler"
	"github.com/bandready/ielts-backend/internal/logger"
	"github.com/bandready/ielts-backend/internal/repository"
	"github.com/bandready/ielts-backend/internal/review"
	"github.com/bandready/ielts-backend/internal/router"
	"github.com/bandready/ielts-backend/internal/service"
	"github.com/bandready/ielts-backend/internal/validator"
	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting BandReady Backend")

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	userRepo := repository.NewUserRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)

	engine := review.NewEngine(log)

	authService := service.NewAuthService(cfg, rdb)
	testService := service.NewTestService(testRepo, rdb, log)
	attemptService := service.NewAttemptService(attemptRepo, testRepo, engine, log)
	reviewService := service.NewReviewService(
		service.NewStorageSource(testRepo, attemptRepo),
		rdb, engine, cfg.ReviewCacheTTL, log,
	)

	handlers := &router.Handlers{
		Auth:    handler.NewAuthHandler(authService, userRepo),
		Test:    handler.NewTestHandler(testService),
		Attempt: handler.NewAttemptHandler(attemptService, reviewService),
		Review:  handler.NewReviewHandler(reviewService),
	}

	// Load all published tests into Redis BEFORE accepting traffic.
	// This avoids race conditions from lazy loading under thundering herd.
	if err := testService.PrewarmAllCaches(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	r := router.SetupRouter(authService, handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

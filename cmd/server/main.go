package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/studydeck/studydeck/internal/api"
	"github.com/studydeck/studydeck/internal/config"
	"github.com/studydeck/studydeck/internal/db"
	"github.com/studydeck/studydeck/internal/logger"
	"github.com/studydeck/studydeck/internal/repository/sqlite"
	"github.com/studydeck/studydeck/internal/services"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.WithLevel(logger.ParseLevel(cfg.LogLevel)))
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("StudyDeck server starting")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("study_batch_size=%d", cfg.StudyBatchSize)
	log.Debug("review_retries=%d", cfg.ReviewRetries)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	// Repositories
	profileRepo := sqlite.NewProfileRepository(database.DB)
	deckRepo := sqlite.NewDeckRepository(database.DB)
	cardRepo := sqlite.NewCardRepository(database.DB)
	reviewRepo := sqlite.NewReviewRepository(database.DB)
	streakRepo := sqlite.NewStreakRepository(database.DB)

	// Services
	srv := &api.Server{
		DB:             database,
		ProfileService: services.NewProfileService(profileRepo),
		DeckService:    services.NewDeckService(deckRepo),
		CardService:    services.NewCardService(cardRepo, deckRepo),
		ReviewService:  services.NewReviewService(cardRepo, deckRepo, reviewRepo, streakRepo, cfg.StudyBatchSize, cfg.ReviewRetries),
		StatsService:   services.NewStatsService(reviewRepo, streakRepo),
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.RequestTimeoutMS) * time.Millisecond,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, shutting down", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Info("StudyDeck server stopped")
}

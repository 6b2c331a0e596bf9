package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jerbear472/WaveSight/internal/alerts"
	"github.com/jerbear472/WaveSight/internal/config"
	"github.com/jerbear472/WaveSight/internal/cultural"
	"github.com/jerbear472/WaveSight/internal/models"
	"github.com/jerbear472/WaveSight/internal/notifications"
	"github.com/jerbear472/WaveSight/internal/scheduler"
	"github.com/jerbear472/WaveSight/internal/sentiment"
	"github.com/jerbear472/WaveSight/internal/sources"
	"github.com/jerbear472/WaveSight/internal/storage"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting WaveSight")

	ctx := context.Background()

	store, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Snapshot archiving is optional; the bot runs fine without it.
	var archiver storage.Archiver
	if cfg.StorageAccount != "" {
		archiver, err = storage.NewBlobArchiver(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Errorf("Failed to initialize scan archive, continuing without it: %v", err)
			archiver = nil
		}
	}

	notificationService := notifications.NewService(cfg)
	scorer := sentiment.NewScorer()

	synthetic := sources.NewSyntheticSource()
	contentSources := []sources.ContentSource{synthetic}
	if youtube := sources.NewYouTubeSource(cfg.YouTubeAPIKey); youtube.IsEnabled() {
		contentSources = []sources.ContentSource{youtube}
	}

	var evidence sources.EvidenceSource
	if reddit := sources.NewRedditSource(cfg.RedditClientID, cfg.RedditClientSecret); reddit.IsEnabled() {
		evidence = reddit
	}

	engine := alerts.NewEngine(contentSources, scorer, store, archiver, notificationService, cfg.Queries)
	engine.UpdateCriteria(criteriaFromConfig(cfg))

	projector := cultural.NewProjector(evidence, synthetic, scorer)

	schedulerService := scheduler.NewService(cfg, engine, projector, store, notificationService)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	api := newAPI(engine, projector, store, scorer)

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.HandleFunc("/metrics", api.metricsHandler).Methods("GET")
	router.HandleFunc("/api/alerts/scan", api.scanHandler).Methods("POST")
	router.HandleFunc("/api/alerts/criteria", api.criteriaHandler).Methods("PATCH")
	router.HandleFunc("/api/alerts/recent", api.recentAlertsHandler).Methods("GET")
	router.HandleFunc("/api/cultural/analyze", api.culturalAnalyzeHandler).Methods("POST")
	router.HandleFunc("/api/trends/aggregate", api.trendsAggregateHandler).Methods("POST")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func criteriaFromConfig(cfg *config.Config) models.CriteriaPatch {
	return models.CriteriaPatch{
		MinViewCount:  &cfg.MinViewCount,
		MinLikeRatio:  &cfg.MinLikeRatio,
		MinWaveScore:  &cfg.MinWaveScore,
		MaxHoursOld:   &cfg.MaxHoursOld,
		MinGrowthRate: &cfg.MinGrowthRate,
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

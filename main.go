package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/ewaste-ai-be/internal/api"
	"github.com/isdelr/ewaste-ai-be/internal/auth"
	"github.com/isdelr/ewaste-ai-be/internal/classifier"
	"github.com/isdelr/ewaste-ai-be/internal/config"
	"github.com/isdelr/ewaste-ai-be/internal/database"
	"github.com/isdelr/ewaste-ai-be/internal/logger"
	"github.com/isdelr/ewaste-ai-be/internal/metrics"
	"github.com/isdelr/ewaste-ai-be/internal/monitoring"
	"github.com/isdelr/ewaste-ai-be/internal/services"
	"github.com/isdelr/ewaste-ai-be/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/process"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info")
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel)

	if cfg.UsesDefaultSecret() {
		ev := log.Debug()
		if cfg.IsProd() {
			ev = log.Warn()
		}
		ev.Msg("JWT_SECRET is the development default; set a real secret")
	}

	// Set up database
	db := database.New()

	// Metrics
	recorder := metrics.NewPrometheus(prometheus.DefaultRegisterer)

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	userService := services.NewUserService(db, cfg.BcryptCost, recorder)
	analysisService := services.NewAnalysisService(db, classifier.New(nil), hub, recorder)
	statsService := services.NewStatsService(db)
	centerService := services.NewCenterService()

	admin, err := userService.EnsureAdmin(cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed admin account")
	}
	log.Info().Int64("user_id", admin.ID).Str("email", admin.Email).Msg("Admin account ready")

	// Set up and run the background stats reporter
	var cpu monitoring.CPUSampler
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		cpu = proc
	} else {
		log.Warn().Err(err).Msg("Process CPU sampling disabled")
	}
	reporter, err := monitoring.NewReporter(cfg.StatsCron, db, recorder, cpu)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up stats reporter")
	}
	reporter.Start()

	// Set up router
	router := api.NewRouter(api.Dependencies{
		Tokens:         tokens,
		Users:          userService,
		Analyses:       analysisService,
		Stats:          statsService,
		Centers:        centerService,
		Totals:         db,
		Hub:            hub,
		Gatherer:       prometheus.DefaultGatherer,
		Port:           cfg.ServerPort,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().
			Int("port", cfg.ServerPort).
			Str("env", cfg.AppEnv).
			Int("categories", len(classifier.Categories())).
			Int("centers", centerService.Count()).
			Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	reporter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("Server exiting")
}

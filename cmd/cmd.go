package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"station-tracker-backend/internal/config"
	"station-tracker-backend/internal/database"
	"station-tracker-backend/internal/handlers"
	"station-tracker-backend/internal/middleware"
	"station-tracker-backend/internal/notify"
	"station-tracker-backend/internal/repository"
	"station-tracker-backend/internal/seed"
	"station-tracker-backend/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Run starts the API server
func Run() {
	cfg, db := setup()
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	stationRepo := repository.NewStationRepository(db)
	visitRepo := repository.NewVisitRepository(db)

	// Initialize services
	notifier, err := notify.NewAPNSNotifier(cfg.APNS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create push notifier")
	}
	if notifier == nil {
		log.Info().Msg("Push notifications disabled (no APNs key configured)")
	}

	userService := services.NewUserService(userRepo, cfg.JWT.Secret, 0)
	stationService := services.NewStationService(stationRepo)

	var pushNotifier services.Notifier
	if notifier != nil {
		pushNotifier = notifier
	}
	visitService := services.NewVisitService(visitRepo, stationRepo, userRepo, pushNotifier)

	// Initialize handlers and routes
	accountHandler := handlers.NewAccountHandler(userService)
	stationHandler := handlers.NewStationHandler(stationService)
	visitHandler := handlers.NewVisitHandler(visitService)

	r := handlers.NewRouter(accountHandler, stationHandler, visitHandler,
		middleware.AuthMiddleware(userService))

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// RunSeed provisions the station catalog and exits
func RunSeed() {
	cfg, db := setup()
	defer db.Close()

	stationService := services.NewStationService(repository.NewStationRepository(db))
	seeder := seed.NewSeeder(stationService, cfg.Seed.OverpassURL,
		time.Duration(cfg.Seed.TimeoutSeconds)*time.Second)

	if err := seeder.Run(context.Background(), seed.YamanoteStations); err != nil {
		log.Fatal().Err(err).Msg("Station seeding failed")
	}
}

// setup loads config, configures logging and connects to the database
func setup() (*config.Config, *pgxpool.Pool) {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.Log.Level)

	db, err := database.Connect(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	log.Info().Msg("Database connection established")

	return cfg, db
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

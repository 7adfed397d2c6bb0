package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/pdralston/puttingLeague/brackets"
	"github.com/pdralston/puttingLeague/config"
	"github.com/pdralston/puttingLeague/db"
	"github.com/pdralston/puttingLeague/handlers"
	"github.com/pdralston/puttingLeague/middleware"
	"github.com/pdralston/puttingLeague/repositories"
	api "github.com/pdralston/puttingLeague/routes"
	"github.com/pdralston/puttingLeague/services"
	"github.com/pdralston/puttingLeague/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.Int("stations", cfg.StationCount))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Snapshot archiving is optional; the league runs fine without R2.
	var uploader storage.FileUploader
	if cfg.ArchivingEnabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("tournament archiving enabled", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Info("tournament archiving disabled")
	}

	wsHub := brackets.NewHub()
	go wsHub.Run()

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	regRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	acePotRepo := repositories.NewPostgresAcePotRepository(dbConn)
	historyRepo := repositories.NewPostgresTeamHistoryRepository(dbConn)

	locks := services.NewTournamentLocks()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	authService := services.NewAuthService(dbConn, userRepo)
	playerService := services.NewPlayerService(dbConn, playerRepo, historyRepo)
	tournamentService := services.NewTournamentService(dbConn, tournamentRepo, locks)
	teamService := services.NewTeamService(dbConn, playerRepo, regRepo, teamRepo, matchRepo, tournamentRepo, locks, rng)
	bracketService := services.NewBracketService(dbConn, tournamentRepo, teamRepo, matchRepo, locks, wsHub)
	standingsService := services.NewStandingsService(
		dbConn,
		tournamentRepo,
		teamRepo,
		matchRepo,
		playerRepo,
		regRepo,
		historyRepo,
		acePotRepo,
		uploader,
		logger,
	)
	matchService := services.NewMatchService(dbConn, tournamentRepo, teamRepo, matchRepo, standingsService, locks, wsHub, cfg.StationCount)
	acePotService := services.NewAcePotService(dbConn, acePotRepo)
	logger.Info("services initialized")

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, teamService, bracketService)
	matchHandler := handlers.NewMatchHandler(matchService)
	playerHandler := handlers.NewPlayerHandler(playerService, standingsService)
	acePotHandler := handlers.NewAcePotHandler(acePotService)
	adminHandler := handlers.NewAdminHandler(standingsService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)

	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)
	rateLimiter := middleware.NewRateLimiter(5, 10)
	defer rateLimiter.Stop()

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authHandler,
		tournamentHandler,
		matchHandler,
		playerHandler,
		acePotHandler,
		adminHandler,
		webSocketHandler,
		authenticator,
		rateLimiter,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}

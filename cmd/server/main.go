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

	"github.com/HammerMeetNail/reelcanon/internal/config"
	"github.com/HammerMeetNail/reelcanon/internal/database"
	"github.com/HammerMeetNail/reelcanon/internal/logging"
	"github.com/HammerMeetNail/reelcanon/internal/middleware"
	"github.com/HammerMeetNail/reelcanon/internal/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Unknown LOG_LEVEL; using info", map[string]interface{}{"value": cfg.Server.LogLevel})
	}
	if cfg.Server.Debug {
		level = logging.LevelDebug
	}
	logger.SetLevel(level)
	logging.SetDefaultLevel(level)

	logger.Info("Starting reelcanon server...", map[string]interface{}{"env": cfg.Server.Environment})

	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(context.Background(), cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()

	migrator, err := database.NewMigrator(cfg.Database.DSN(), database.DefaultMigrationsDir)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	_ = migrator.Close()

	logger.Info("Connecting to Redis", map[string]interface{}{"addr": cfg.Redis.Addr()})
	redisDB, err := database.NewRedisDB(context.Background(), cfg.Redis)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()

	dbAdapter := services.NewPoolAdapter(db.Pool)
	friendshipService := services.NewFriendshipService(dbAdapter)
	leaderboardService := services.NewLeaderboardService(dbAdapter, redisDB.Client)

	svc := appServices{
		users:        services.NewUserService(dbAdapter, friendshipService, leaderboardService),
		auth:         services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, redisDB.Client),
		friendships:  services.NewFriendshipWorkflow(friendshipService),
		movies:       services.NewMovieService(dbAdapter, leaderboardService),
		reelProgress: services.NewReelProgressService(dbAdapter, leaderboardService),
		leaderboard:  leaderboardService,
		db:           db,
		redis:        redisDB,
	}
	limiter := middleware.NewLoginRateLimiter(redisDB.Client, cfg.RateLimit.LoginAttempts, cfg.RateLimit.LoginWindow)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      newRouter(cfg, svc, limiter, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{"addr": addr})
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}

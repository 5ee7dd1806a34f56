package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/classmood/moodboard/internal/config"
	"github.com/classmood/moodboard/internal/database"
	"github.com/classmood/moodboard/internal/engine"
	"github.com/classmood/moodboard/internal/handlers"
	"github.com/classmood/moodboard/internal/identity"
	"github.com/classmood/moodboard/internal/logging"
	"github.com/classmood/moodboard/internal/middleware"
	"github.com/classmood/moodboard/internal/services"
	"github.com/classmood/moodboard/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	// Initialize logger
	logger := logging.New()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Server.Debug {
		logger.SetLevel(logging.LevelDebug)
		logging.SetDefaultLevel(logging.LevelDebug)
		logger.Debug("Debug logging enabled", map[string]interface{}{
			"env": cfg.Server.Environment,
		})
	}

	logger.Info("Starting Moodboard server...")

	// Connect to PostgreSQL
	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	// Run migrations
	logger.Info("Running database migrations...")
	migrator, err := database.NewMigrator(cfg.Database.DSN(), "migrations")
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	_ = migrator.Close()
	logger.Info("Migrations completed")

	// Connect to Redis
	logger.Info("Connecting to Redis", map[string]interface{}{
		"addr": cfg.Redis.Addr(),
	})
	redisDB, err := database.NewRedisDB(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()
	logger.Info("Connected to Redis")

	// Initialize the store, engine and services
	dbAdapter := store.NewPoolAdapter(db.Pool)
	bus := store.NewRedisBus(redisDB.Client, cfg.Engine.EventChannel)
	reactionStore := store.NewPostgresStore(dbAdapter, bus)
	resolver := identity.NewResolver()
	reactionEngine := engine.New(reactionStore, resolver, logger)
	moodService := services.NewMoodService(dbAdapter)

	loadCtx, loadCancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = reactionEngine.LoadAll(loadCtx)
	loadCancel()
	if err != nil {
		return fmt.Errorf("loading reaction cache: %w", err)
	}
	logger.Info("Reaction cache loaded")

	// Long-lived subscription: remote change events flow into the engine
	// until shutdown cancels the context.
	runCtx, runCancel := context.WithCancel(context.Background())
	events := bus.Subscribe(runCtx)
	go reactionEngine.Run(runCtx, events, cfg.Engine.ResyncInterval)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, redisDB)
	moodHandler := handlers.NewMoodHandler(moodService)
	reactionHandler := handlers.NewReactionHandler(reactionEngine)
	identityHandler := handlers.NewIdentityHandler(resolver)
	eventsHandler := handlers.NewEventsHandler(logger)
	reactionEngine.OnChange(eventsHandler.Broadcast)

	// Initialize middleware
	requestLogger := middleware.NewRequestLogger(logger)
	toggleLimit := resolveToggleRateLimit(cfg, logger, os.LookupEnv)
	toggleLimiter := middleware.NewRateLimiter(redisDB.Client, toggleLimit, time.Minute, "ratelimit:toggle:", middleware.GetClientIP, true)

	// Set up router
	mux := http.NewServeMux()

	// Health endpoints
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)

	// Identity endpoints
	mux.HandleFunc("GET /api/identity", identityHandler.Get)
	mux.HandleFunc("POST /api/identity", identityHandler.Set)

	// Mood endpoints
	mux.HandleFunc("POST /api/moods", moodHandler.Create)
	mux.HandleFunc("GET /api/moods", moodHandler.List)
	mux.HandleFunc("GET /api/moods/{id}", moodHandler.Get)

	// Reaction endpoints
	mux.Handle("POST /api/moods/{id}/reactions/toggle", toggleLimiter.Middleware(http.HandlerFunc(reactionHandler.Toggle)))
	mux.HandleFunc("GET /api/moods/{id}/reactions", reactionHandler.List)
	mux.HandleFunc("GET /api/reactions/allowed", reactionHandler.GetAllowedReactions)

	// Change notifications for browser redraws
	mux.HandleFunc("GET /api/events", eventsHandler.Stream)

	handler := requestLogger.Apply(mux)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// The SSE stream must outlive the write timeout.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")
		runCancel()

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

	logger.Info("Server listening", map[string]interface{}{
		"addr": addr,
	})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}

func resolveToggleRateLimit(cfg *config.Config, logger *logging.Logger, lookupEnv func(string) (string, bool)) int64 {
	toggleLimit := int64(30)
	if cfg.Server.Environment == "development" {
		toggleLimit = 300
		logger.Info("Using development toggle rate limit", map[string]interface{}{"limit": toggleLimit})
	}
	if v, ok := lookupEnv("TOGGLE_RATE_LIMIT"); ok && v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			toggleLimit = parsed
			logger.Info("Using toggle rate limit from env", map[string]interface{}{"limit": toggleLimit})
		} else {
			logger.Warn("Invalid TOGGLE_RATE_LIMIT; using default", map[string]interface{}{
				"value": v,
				"limit": toggleLimit,
			})
		}
	}
	return toggleLimit
}

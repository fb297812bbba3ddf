// Package server defines the core Server struct that composes the app's main dependencies.
//
// It contains the initialization logic for the shared resources and, when
// the service runs as a plain HTTP process, spins up the HTTP server and
// handles graceful shutdowns.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - the survival predictor (loaded once, read-only afterwards)
//   - database pool (postgres backend only)
//   - redis client (redis backend only)
//   - http.Server (cmd/api only)
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/survival-api/internal/config"
	"github.com/deppfellow/survival-api/internal/database"
	"github.com/deppfellow/survival-api/internal/predictor"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/survival-api/internal/logger"
)

// Server is the application container that holds shared resources.
//
// It is not the HTTP server itself. It holds:
//   - the config
//   - the logger(s)
//   - the predictor
//   - the connections owned by the configured store backend
//   - an internal *http.Server used to listen and serve requests
type Server struct {
	// Config holds all environment/config values for the app.
	Config *config.Config

	// Logger is the application's main structured logger.
	Logger *zerolog.Logger

	// LoggerService optionally holds the New Relic application instance.
	// If New Relic is disabled, this may exist but contain nil nrApp.
	LoggerService *loggerPkg.LoggerService

	// Predictor is loaded from the configured model artifact.
	Predictor predictor.Predictor

	// DB holds the PostgreSQL pool wrapper. Nil unless store.backend is postgres.
	DB *database.Database

	// Redis is the Redis client. Nil unless store.backend is redis.
	Redis *redis.Client

	// httpServer is the standard library HTTP server instance.
	// It is configured in SetupHTTPServer and started in Start().
	httpServer *http.Server
}

// New constructs a Server and initializes core dependencies.
//
// It does NOT start the HTTP server directly. That is done in SetupHTTPServer + Start.
//
// Initialization performed:
//   - model artifact load (failure is fatal)
//   - PostgreSQL pool + optional migrations + optional New Relic tracing
//   - Redis client + optional New Relic hooks
//
// Only the connections the selected store backend needs are opened, and
// each one must be reachable: a store the service cannot reach is a
// startup error rather than a stream of 500s.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	survivalModel, err := predictor.Load(cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	logger.Info().
		Str("model_path", cfg.Model.Path).
		Str("model_version", survivalModel.Version()).
		Msg("model loaded")

	server := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Predictor:     survivalModel,
	}

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		if cfg.Database.Migrate {
			if err := database.Migrate(ctx, logger, cfg); err != nil {
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}

		// This also pings the DB to ensure connectivity.
		db, err := database.New(ctx, cfg, logger, loggerService)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		server.DB = db

	case config.BackendRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		// Hooks instrument Redis commands so they show up in distributed traces.
		if loggerService.GetApplication() != nil {
			redisClient.AddHook(nrredis.NewHook(redisClient.Options()))
		}

		// Test Redis connection with a timeout so it doesn't hang startup.
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			_ = redisClient.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		logger.Info().Str("address", cfg.Redis.Address).Msg("connected to redis")
		server.Redis = redisClient
	}

	return server, nil
}

// SetupHTTPServer configures the internal net/http server.
//
// The actual router/mux is passed in as handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:    ":" + s.Config.Server.Port,
		Handler: handler,

		// Config stores int values, interpreted here as seconds.
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server.
//
// It requires SetupHTTPServer to be called first. It blocks until the
// server stops; after Shutdown it returns http.ErrServerClosed.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Str("store_backend", s.Config.Store.Backend).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and its dependencies.
//
// It attempts to:
//   - stop HTTP server (finish inflight requests until ctx deadline)
//   - close the DB pool
//   - close the Redis client
//   - flush New Relic
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			return fmt.Errorf("failed to close redis connection: %w", err)
		}
	}

	s.LoggerService.Shutdown()

	return nil
}

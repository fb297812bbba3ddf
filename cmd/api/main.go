// Command api serves the survival prediction API over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/survival-api/internal/config"
	"github.com/deppfellow/survival-api/internal/handler"
	"github.com/deppfellow/survival-api/internal/logger"
	"github.com/deppfellow/survival-api/internal/repository"
	"github.com/deppfellow/survival-api/internal/router"
	"github.com/deppfellow/survival-api/internal/server"
	"github.com/deppfellow/survival-api/internal/service"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Flushed by srv.Shutdown.
	loggerService := logger.NewLoggerService(cfg.Observability)

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	repos, err := repository.NewRepositories(ctx, srv)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize repositories")
	}

	services := service.NewServices(srv, repos)
	handlers := handler.NewHandlers(srv, services, repos)
	r := router.New(srv, handlers)

	srv.SetupHTTPServer(router.NewRouter(srv, handlers, r))

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	if err := repos.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close record store")
	}

	log.Info().Msg("server exited properly")
}

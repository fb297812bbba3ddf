// Command lambda serves the survival prediction API behind API Gateway.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/deppfellow/survival-api/internal/config"
	"github.com/deppfellow/survival-api/internal/handler"
	"github.com/deppfellow/survival-api/internal/logger"
	"github.com/deppfellow/survival-api/internal/repository"
	"github.com/deppfellow/survival-api/internal/router"
	"github.com/deppfellow/survival-api/internal/server"
	"github.com/deppfellow/survival-api/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	ctx := context.Background()

	// Built once per container; warm invocations reuse the predictor and
	// the store connections.
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

	lambda.StartWithOptions(r.Handle, lambda.WithEnableSIGTERM(func() {
		_ = repos.Close()
		_ = srv.Shutdown(context.Background())
	}))
}

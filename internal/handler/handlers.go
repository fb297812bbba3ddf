package handler

import (
	"github.com/deppfellow/survival-api/internal/repository"
	"github.com/deppfellow/survival-api/internal/server"
	"github.com/deppfellow/survival-api/internal/service"
)

// Handlers is a container that groups all handlers, so router setup passes
// one object around instead of many.
type Handlers struct {
	Health     *HealthHandler     // Health serves /status.
	OpenAPI    *OpenAPIHandler    // OpenAPI serves the API document and its UI.
	Prediction *PredictionHandler // Prediction serves /sobreviventes.
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server, services *service.Services, repos *repository.Repositories) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(s, repos),
		OpenAPI:    NewOpenAPIHandler(s),
		Prediction: NewPredictionHandler(s, services),
	}
}

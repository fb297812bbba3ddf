package service

import (
	"github.com/deppfellow/survival-api/internal/repository"
	"github.com/deppfellow/survival-api/internal/server"
)

// Services groups the business services handed to the handler layer.
type Services struct {
	Prediction *PredictionService
	Query      *QueryService
	Deletion   *DeletionService
}

// NewServices wires every service to the shared store and predictor.
func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	return &Services{
		Prediction: NewPredictionService(repos.Predictions, s.Predictor, NewIDGenerator(s.Config.IDs)),
		Query:      NewQueryService(repos.Predictions),
		Deletion:   NewDeletionService(repos.Predictions),
	}
}

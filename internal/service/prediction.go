package service

import (
	"context"
	"fmt"

	"github.com/deppfellow/survival-api/internal/errs"
	"github.com/deppfellow/survival-api/internal/metrics"
	"github.com/deppfellow/survival-api/internal/model"
	"github.com/deppfellow/survival-api/internal/predictor"
	"github.com/deppfellow/survival-api/internal/repository"
	"github.com/rs/zerolog"
)

// PredictionService runs the model on a validated request and stores the outcome.
type PredictionService struct {
	store     repository.RecordStore
	predictor predictor.Predictor
	ids       IDGenerator
}

func NewPredictionService(store repository.RecordStore, p predictor.Predictor, ids IDGenerator) *PredictionService {
	return &PredictionService{
		store:     store,
		predictor: p,
		ids:       ids,
	}
}

// Create predicts survival for req and writes the record.
//
// The write completes before Create returns; a failed write is reported
// as a store error and the prediction is not returned.
func (s *PredictionService) Create(ctx context.Context, req *model.CreatePredictionRequest) (*model.CreatePredictionResponse, error) {
	logger := zerolog.Ctx(ctx)

	prediction, err := s.predictor.Predict(ctx, req.Vector())
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, errs.NewPredictorError(err)
	}
	if prediction != 0 && prediction != 1 {
		metrics.PredictionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, errs.NewPredictorError(fmt.Errorf("model returned %d, expected 0 or 1", prediction))
	}
	metrics.PredictionsTotal.WithLabelValues(metrics.Outcome(prediction)).Inc()

	passengerID := req.PassengerID
	if passengerID == "" {
		passengerID = s.ids.NewID()
		logger.Debug().Str("passenger_id", passengerID).Msg("generated passenger id")
	}

	record := model.PredictionRecord{
		PassengerID:        passengerID,
		SurvivalPrediction: prediction,
		Features:           req.Features,
	}

	if err := s.store.Put(ctx, record); err != nil {
		return nil, errs.NewStoreError(err)
	}

	logger.Info().
		Str("passenger_id", passengerID).
		Int("survival_prediction", prediction).
		Str("model_version", s.predictor.Version()).
		Msg("prediction stored")

	return &model.CreatePredictionResponse{
		PassengerID:         passengerID,
		SurvivalProbability: prediction,
	}, nil
}

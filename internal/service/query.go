package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/survival-api/internal/errs"
	"github.com/deppfellow/survival-api/internal/model"
	"github.com/deppfellow/survival-api/internal/repository"
)

// QueryService reads stored predictions.
type QueryService struct {
	store repository.RecordStore
}

func NewQueryService(store repository.RecordStore) *QueryService {
	return &QueryService{store: store}
}

// GetOne returns the record for req.ID, or a 404 when there is none.
func (s *QueryService) GetOne(ctx context.Context, req *model.PassengerIDRequest) (*model.PredictionView, error) {
	record, err := s.store.Get(ctx, req.ID)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, errs.NewNotFoundError(fmt.Sprintf("passenger %s not found", req.ID), false, nil)
	}
	if err != nil {
		return nil, errs.NewStoreError(err)
	}

	view := record.View()
	return &view, nil
}

// ListAll returns every stored record in the store's scan order.
func (s *QueryService) ListAll(ctx context.Context, _ *model.ListPredictionsRequest) ([]model.PredictionView, error) {
	records, err := s.store.Scan(ctx)
	if err != nil {
		return nil, errs.NewStoreError(err)
	}
	return model.Views(records), nil
}

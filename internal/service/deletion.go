package service

import (
	"context"
	"fmt"

	"github.com/deppfellow/survival-api/internal/errs"
	"github.com/deppfellow/survival-api/internal/model"
	"github.com/deppfellow/survival-api/internal/repository"
	"github.com/rs/zerolog"
)

// DeletionService removes stored predictions.
type DeletionService struct {
	store repository.RecordStore
}

func NewDeletionService(store repository.RecordStore) *DeletionService {
	return &DeletionService{store: store}
}

// Delete removes the record for req.ID. Deleting an id that does not exist
// succeeds with the same confirmation.
func (s *DeletionService) Delete(ctx context.Context, req *model.PassengerIDRequest) (*model.MessageResponse, error) {
	if err := s.store.Delete(ctx, req.ID); err != nil {
		return nil, errs.NewStoreError(err)
	}

	zerolog.Ctx(ctx).Info().Str("passenger_id", req.ID).Msg("prediction deleted")

	return &model.MessageResponse{
		Message: fmt.Sprintf("passenger %s deleted", req.ID),
	}, nil
}

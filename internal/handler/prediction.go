package handler

import (
	"net/http"

	"github.com/deppfellow/survival-api/internal/model"
	"github.com/deppfellow/survival-api/internal/server"
	"github.com/deppfellow/survival-api/internal/service"
)

// PredictionHandler serves the /sobreviventes resource.
type PredictionHandler struct {
	Handler
	services *service.Services
}

func NewPredictionHandler(s *server.Server, services *service.Services) *PredictionHandler {
	return &PredictionHandler{
		Handler:  NewHandler(s),
		services: services,
	}
}

// CreatePrediction handles POST /sobreviventes.
func (h *PredictionHandler) CreatePrediction() Endpoint {
	return Handle(h.Handler, "create_prediction", h.services.Prediction.Create, http.StatusOK,
		func() *model.CreatePredictionRequest { return &model.CreatePredictionRequest{} })
}

// ListPredictions handles GET /sobreviventes.
func (h *PredictionHandler) ListPredictions() Endpoint {
	return Handle(h.Handler, "list_predictions", h.services.Query.ListAll, http.StatusOK,
		func() *model.ListPredictionsRequest { return &model.ListPredictionsRequest{} })
}

// GetPrediction handles GET /sobreviventes/{id}.
func (h *PredictionHandler) GetPrediction() Endpoint {
	return Handle(h.Handler, "get_prediction", h.services.Query.GetOne, http.StatusOK,
		func() *model.PassengerIDRequest { return &model.PassengerIDRequest{} })
}

// DeletePrediction handles DELETE /sobreviventes/{id}.
func (h *PredictionHandler) DeletePrediction() Endpoint {
	return Handle(h.Handler, "delete_prediction", h.services.Deletion.Delete, http.StatusOK,
		func() *model.PassengerIDRequest { return &model.PassengerIDRequest{} })
}

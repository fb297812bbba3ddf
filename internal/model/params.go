package model

import (
	"strings"

	"github.com/deppfellow/survival-api/internal/validation"
)

// PathParamID is the path parameter carrying the passenger id.
const PathParamID = "id"

// PassengerIDRequest addresses one record through the {id} path parameter.
type PassengerIDRequest struct {
	ID string `json:"id" validate:"required"`
}

func (r *PassengerIDRequest) BindParams(params map[string]string) {
	r.ID = strings.TrimSpace(params[PathParamID])
}

func (r *PassengerIDRequest) Validate() error {
	return validation.Struct(r)
}

// ListPredictionsRequest has no inputs; listing takes no filters or pages.
type ListPredictionsRequest struct{}

func (r *ListPredictionsRequest) BindParams(map[string]string) {}

func (r *ListPredictionsRequest) Validate() error {
	return nil
}

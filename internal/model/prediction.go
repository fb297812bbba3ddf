// Package model holds the domain types shared by every layer: the passenger
// features a prediction is made from, the stored PredictionRecord, and the
// request/response payloads exchanged with clients.
package model

import (
	"encoding/json"

	"github.com/deppfellow/survival-api/internal/validation"
	"github.com/shopspring/decimal"
)

// Request body keys. They are also the attribute names used in storage.
const (
	FieldPassengerID         = "PassengerId"
	FieldSurvivalProbability = "SurvivalProbability"
	FieldAge                 = "Age"
	FieldFare                = "Fare"
	FieldPclass              = "Pclass"
	FieldParch               = "Parch"
	FieldSibSp               = "SibSp"
	FieldSexMale             = "Sex_male"
	FieldEmbarkedQ           = "Embarked_Q"
	FieldEmbarkedS           = "Embarked_S"
)

// FeatureNames is the fixed order of the model input vector.
var FeatureNames = [FeatureCount]string{
	"age", "fare", "pclass", "parch", "sibsp", "sex_male", "embarked_q", "embarked_s",
}

// FeatureCount is the length of the model input vector.
const FeatureCount = 8

// FeatureVector is the numeric input consumed by a predictor, in FeatureNames order.
type FeatureVector [FeatureCount]float64

// Features are the eight passenger attributes a prediction is made from.
//
// Age and Fare stay decimals so they round-trip through storage exactly;
// they only become floats when fed to the model or written to a response.
type Features struct {
	Age       decimal.Decimal `json:"Age" validate:"gte=0"`
	Fare      decimal.Decimal `json:"Fare" validate:"gte=0"`
	Pclass    int             `json:"Pclass" validate:"oneof=1 2 3"`
	Parch     int             `json:"Parch" validate:"min=0"`
	SibSp     int             `json:"SibSp" validate:"min=0"`
	SexMale   int             `json:"Sex_male" validate:"oneof=0 1"`
	EmbarkedQ int             `json:"Embarked_Q" validate:"oneof=0 1"`
	EmbarkedS int             `json:"Embarked_S" validate:"oneof=0 1"`
}

// Vector assembles the model input in the fixed feature order.
func (f Features) Vector() FeatureVector {
	return FeatureVector{
		f.Age.InexactFloat64(),
		f.Fare.InexactFloat64(),
		float64(f.Pclass),
		float64(f.Parch),
		float64(f.SibSp),
		float64(f.SexMale),
		float64(f.EmbarkedQ),
		float64(f.EmbarkedS),
	}
}

// PredictionRecord is one stored prediction, keyed by PassengerID.
//
// Its JSON form is the storage encoding (decimals as strings); clients
// receive a PredictionView instead.
type PredictionRecord struct {
	PassengerID        string `json:"PassengerId"`
	SurvivalPrediction int    `json:"SurvivalProbability"`
	Features
}

// View converts the record into its response shape.
func (r PredictionRecord) View() PredictionView {
	return PredictionView{
		PassengerID:         r.PassengerID,
		SurvivalProbability: float64(r.SurvivalPrediction),
		Age:                 r.Age.InexactFloat64(),
		Fare:                r.Fare.InexactFloat64(),
		Pclass:              float64(r.Pclass),
		Parch:               float64(r.Parch),
		SibSp:               float64(r.SibSp),
		SexMale:             float64(r.SexMale),
		EmbarkedQ:           float64(r.EmbarkedQ),
		EmbarkedS:           float64(r.EmbarkedS),
	}
}

// PredictionView is a stored record as returned by the read endpoints.
// Every numeric field is serialized as a floating-point number.
type PredictionView struct {
	PassengerID         string  `json:"PassengerId"`
	SurvivalProbability float64 `json:"SurvivalProbability"`
	Age                 float64 `json:"Age"`
	Fare                float64 `json:"Fare"`
	Pclass              float64 `json:"Pclass"`
	Parch               float64 `json:"Parch"`
	SibSp               float64 `json:"SibSp"`
	SexMale             float64 `json:"Sex_male"`
	EmbarkedQ           float64 `json:"Embarked_Q"`
	EmbarkedS           float64 `json:"Embarked_S"`
}

// Views converts a scan result, keeping its order. The result is never nil
// so an empty store serializes as [] rather than null.
func Views(records []PredictionRecord) []PredictionView {
	views := make([]PredictionView, 0, len(records))
	for _, record := range records {
		views = append(views, record.View())
	}
	return views
}

// CreatePredictionRequest is the POST /sobreviventes body.
type CreatePredictionRequest struct {
	// PassengerID is optional; a generated id is used when empty.
	PassengerID string `json:"PassengerId"`
	Features
}

// Bind coerces the raw body fields. All eight features are required;
// PassengerId may be a string or a number.
func (r *CreatePredictionRequest) Bind(fields map[string]json.RawMessage) error {
	c := validation.NewCollector(fields)

	r.Age = c.Decimal(FieldAge)
	r.Fare = c.Decimal(FieldFare)
	r.Pclass = c.Int(FieldPclass)
	r.Parch = c.Int(FieldParch)
	r.SibSp = c.Int(FieldSibSp)
	r.SexMale = c.Int(FieldSexMale)
	r.EmbarkedQ = c.Int(FieldEmbarkedQ)
	r.EmbarkedS = c.Int(FieldEmbarkedS)
	r.PassengerID = c.OptionalString(FieldPassengerID)

	return c.Err()
}

func (r *CreatePredictionRequest) Validate() error {
	return validation.Struct(r)
}

// CreatePredictionResponse is returned by a successful POST.
type CreatePredictionResponse struct {
	PassengerID         string `json:"PassengerId"`
	SurvivalProbability int    `json:"SurvivalProbability"`
}

// MessageResponse carries a plain confirmation, e.g. after a delete.
type MessageResponse struct {
	Message string `json:"message"`
}

package predictor

import (
	"context"
	"math"

	"github.com/deppfellow/survival-api/internal/model"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

const defaultThreshold = 0.5

// Logistic is a logistic regression: sigmoid(w·x + b) >= threshold means survived.
type Logistic struct {
	version   string
	weights   []float64
	bias      float64
	threshold float64
}

func newLogistic(version string, weights []float64, bias, threshold float64) (*Logistic, error) {
	if len(weights) != model.FeatureCount {
		return nil, errors.Errorf("logistic regression has %d weights, expected %d", len(weights), model.FeatureCount)
	}
	if floats.HasNaN(weights) || math.IsNaN(bias) {
		return nil, errors.New("logistic regression parameters contain NaN")
	}
	if threshold == 0 {
		threshold = defaultThreshold
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, errors.Errorf("threshold %v must be between 0 and 1", threshold)
	}

	w := make([]float64, len(weights))
	copy(w, weights)
	return &Logistic{version: version, weights: w, bias: bias, threshold: threshold}, nil
}

func (l *Logistic) Version() string {
	return l.version
}

// Probability returns the modelled survival probability.
func (l *Logistic) Probability(features model.FeatureVector) float64 {
	z := floats.Dot(l.weights, features[:]) + l.bias
	return 1 / (1 + math.Exp(-z))
}

func (l *Logistic) Predict(ctx context.Context, features model.FeatureVector) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if l.Probability(features) >= l.threshold {
		return 1, nil
	}
	return 0, nil
}

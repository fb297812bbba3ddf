// Package predictor loads the survival model artifact and runs inference.
//
// The artifact is a JSON (or YAML) document produced offline. It names its
// version, its model type and the feature order it was trained on, and
// carries the model parameters. Loading happens once at process start; the
// returned Predictor is read-only and safe for concurrent use.
package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deppfellow/survival-api/internal/config"
	"github.com/deppfellow/survival-api/internal/model"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Model types understood by Parse.
const (
	TypeRandomForest       = "random_forest"
	TypeLogisticRegression = "logistic_regression"
)

// Predictor returns a binary survival outcome (0 or 1) for a feature vector.
type Predictor interface {
	Predict(ctx context.Context, features model.FeatureVector) (int, error)
	Version() string
}

// Artifact is the serialized model.
type Artifact struct {
	Version  string   `json:"version" yaml:"version"`
	Type     string   `json:"type" yaml:"type"`
	Features []string `json:"features" yaml:"features"`

	// random_forest
	Trees []Tree `json:"trees,omitempty" yaml:"trees,omitempty"`

	// logistic_regression
	Weights   []float64 `json:"weights,omitempty" yaml:"weights,omitempty"`
	Bias      float64   `json:"bias,omitempty" yaml:"bias,omitempty"`
	Threshold float64   `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

// Load reads the artifact named by the model configuration.
//
// A non-empty cfg.Version must equal the artifact's version.
func Load(cfg config.ModelConfig) (Predictor, error) {
	p, err := LoadFile(cfg.Path)
	if err != nil {
		return nil, err
	}

	if cfg.Version != "" && p.Version() != cfg.Version {
		return nil, fmt.Errorf("model artifact %s has version %q, expected %q", cfg.Path, p.Version(), cfg.Version)
	}

	return p, nil
}

// LoadFile reads and parses an artifact from disk. Files ending in .yaml or
// .yml are decoded as YAML, everything else as JSON.
func LoadFile(path string) (Predictor, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading model artifact %s", path)
	}

	var artifact Artifact
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(payload, &artifact)
	default:
		err = json.Unmarshal(payload, &artifact)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decoding model artifact %s", path)
	}

	p, err := Parse(artifact)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid model artifact %s", path)
	}
	return p, nil
}

// Parse checks an artifact and builds the matching Predictor.
func Parse(artifact Artifact) (Predictor, error) {
	if artifact.Version == "" {
		return nil, errors.New("artifact has no version")
	}

	if err := checkFeatureOrder(artifact.Features); err != nil {
		return nil, err
	}

	switch artifact.Type {
	case TypeRandomForest:
		return newForest(artifact.Version, artifact.Trees)
	case TypeLogisticRegression:
		return newLogistic(artifact.Version, artifact.Weights, artifact.Bias, artifact.Threshold)
	default:
		return nil, errors.Errorf("unsupported model type %q", artifact.Type)
	}
}

// checkFeatureOrder refuses artifacts trained on a different input layout.
func checkFeatureOrder(features []string) error {
	if len(features) != model.FeatureCount {
		return errors.Errorf("artifact declares %d features, expected %d", len(features), model.FeatureCount)
	}
	for i, name := range features {
		if !strings.EqualFold(name, model.FeatureNames[i]) {
			return errors.Errorf("feature %d is %q, expected %q", i, name, model.FeatureNames[i])
		}
	}
	return nil
}

package predictor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deppfellow/survival-api/internal/config"
	"github.com/deppfellow/survival-api/internal/model"
)

const bundledModel = "../../models/survival-v1.json"

var featureNames = []string{"age", "fare", "pclass", "parch", "sibsp", "sex_male", "embarked_q", "embarked_s"}

func leaf(label int) TreeNode {
	return TreeNode{LeftChild: -1, RightChild: -1, ClassLabel: label, IsLeaf: true}
}

func TestBundledModel(t *testing.T) {
	p, err := Load(config.ModelConfig{Path: bundledModel, Version: "survival-v1"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name     string
		features model.FeatureVector
		want     int
	}{
		{name: "third class adult male", features: model.FeatureVector{22, 7.25, 3, 0, 1, 1, 0, 1}, want: 0},
		{name: "first class woman", features: model.FeatureVector{38, 71.28, 1, 0, 1, 0, 0, 0}, want: 1},
		{name: "second class boy", features: model.FeatureVector{5, 20, 2, 1, 2, 1, 0, 1}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Predict(context.Background(), tt.features)
			if err != nil {
				t.Fatalf("Predict: %v", err)
			}
			if got != tt.want {
				t.Errorf("Predict = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLoadVersionMismatch(t *testing.T) {
	_, err := Load(config.ModelConfig{Path: bundledModel, Version: "survival-v2"})
	if err == nil || !strings.Contains(err.Error(), "survival-v2") {
		t.Fatalf("Load error = %v, want version mismatch", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

func TestLoadFileYAML(t *testing.T) {
	artifact := `version: lr-1
type: logistic_regression
features: [age, fare, pclass, parch, sibsp, sex_male, embarked_q, embarked_s]
weights: [0, 0, -1, 0, 0, -2.5, 0, 0]
bias: 3
`
	path := filepath.Join(t.TempDir(), "model.yaml")
	if err := os.WriteFile(path, []byte(artifact), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if p.Version() != "lr-1" {
		t.Errorf("Version = %q, want lr-1", p.Version())
	}

	// z = -3 - 2.5 + 3 = -2.5 -> perished; z = -1 + 3 = 2 -> survived.
	if got, _ := p.Predict(context.Background(), model.FeatureVector{22, 7.25, 3, 0, 1, 1, 0, 1}); got != 0 {
		t.Errorf("male third class = %d, want 0", got)
	}
	if got, _ := p.Predict(context.Background(), model.FeatureVector{38, 71.28, 1, 0, 1, 0, 0, 0}); got != 1 {
		t.Errorf("female first class = %d, want 1", got)
	}
}

func TestParseRejects(t *testing.T) {
	validTrees := []Tree{{Nodes: []TreeNode{leaf(1)}}}

	tests := []struct {
		name     string
		artifact Artifact
		wantErr  string
	}{
		{
			name:     "no version",
			artifact: Artifact{Type: TypeRandomForest, Features: featureNames, Trees: validTrees},
			wantErr:  "no version",
		},
		{
			name:     "wrong feature order",
			artifact: Artifact{Version: "v", Type: TypeRandomForest, Features: []string{"fare", "age", "pclass", "parch", "sibsp", "sex_male", "embarked_q", "embarked_s"}, Trees: validTrees},
			wantErr:  "feature 0",
		},
		{
			name:     "too few features",
			artifact: Artifact{Version: "v", Type: TypeRandomForest, Features: featureNames[:7], Trees: validTrees},
			wantErr:  "7 features",
		},
		{
			name:     "unknown type",
			artifact: Artifact{Version: "v", Type: "svm", Features: featureNames},
			wantErr:  "unsupported model type",
		},
		{
			name:     "empty forest",
			artifact: Artifact{Version: "v", Type: TypeRandomForest, Features: featureNames},
			wantErr:  "no trees",
		},
		{
			name: "child out of range",
			artifact: Artifact{Version: "v", Type: TypeRandomForest, Features: featureNames, Trees: []Tree{{Nodes: []TreeNode{
				{FeatureIdx: 0, Threshold: 1, LeftChild: 1, RightChild: 5},
				leaf(0),
			}}}},
			wantErr: "child index 5",
		},
		{
			name: "feature out of range",
			artifact: Artifact{Version: "v", Type: TypeRandomForest, Features: featureNames, Trees: []Tree{{Nodes: []TreeNode{
				{FeatureIdx: 8, Threshold: 1, LeftChild: 1, RightChild: 2},
				leaf(0),
				leaf(1),
			}}}},
			wantErr: "feature index 8",
		},
		{
			name:     "bad label",
			artifact: Artifact{Version: "v", Type: TypeRandomForest, Features: featureNames, Trees: []Tree{{Nodes: []TreeNode{leaf(2)}}}},
			wantErr:  "class label 2",
		},
		{
			name:     "short weights",
			artifact: Artifact{Version: "v", Type: TypeLogisticRegression, Features: featureNames, Weights: []float64{1, 2}},
			wantErr:  "2 weights",
		},
		{
			name:     "threshold out of range",
			artifact: Artifact{Version: "v", Type: TypeLogisticRegression, Features: featureNames, Weights: make([]float64, 8), Threshold: 1.5},
			wantErr:  "threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.artifact)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Parse error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestForestTieVotesZero(t *testing.T) {
	p, err := Parse(Artifact{
		Version:  "tie",
		Type:     TypeRandomForest,
		Features: featureNames,
		Trees:    []Tree{{Nodes: []TreeNode{leaf(1)}}, {Nodes: []TreeNode{leaf(0)}}},
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got, err := p.Predict(context.Background(), model.FeatureVector{})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != 0 {
		t.Errorf("tie = %d, want 0", got)
	}
}

func TestForestDetectsCycle(t *testing.T) {
	p, err := Parse(Artifact{
		Version:  "cycle",
		Type:     TypeRandomForest,
		Features: featureNames,
		Trees: []Tree{{Nodes: []TreeNode{
			{FeatureIdx: 0, Threshold: 1, LeftChild: 1, RightChild: 1},
			{FeatureIdx: 0, Threshold: 1, LeftChild: 2, RightChild: 2},
			{FeatureIdx: 0, Threshold: 1, LeftChild: 1, RightChild: 1},
		}}},
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if _, err := p.Predict(context.Background(), model.FeatureVector{}); err == nil {
		t.Fatal("expected cycle error")
	}
}

func TestPredictHonoursCancelledContext(t *testing.T) {
	p, err := LoadFile(bundledModel)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Predict(ctx, model.FeatureVector{}); err == nil {
		t.Fatal("expected context error")
	}
}

func TestLogisticProbability(t *testing.T) {
	l, err := newLogistic("lr", make([]float64, model.FeatureCount), 0, 0)
	if err != nil {
		t.Fatalf("newLogistic: %v", err)
	}
	if got := l.Probability(model.FeatureVector{}); got != 0.5 {
		t.Errorf("Probability = %v, want 0.5", got)
	}
	// 0.5 >= default threshold 0.5.
	if got, _ := l.Predict(context.Background(), model.FeatureVector{}); got != 1 {
		t.Errorf("Predict = %d, want 1", got)
	}
}

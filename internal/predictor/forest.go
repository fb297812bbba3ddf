package predictor

import (
	"context"
	"fmt"

	"github.com/deppfellow/survival-api/internal/model"
	"github.com/pkg/errors"
)

// TreeNode is one node of a flattened decision tree. Children are indexes
// into the tree's node list; leaves carry the class label.
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx" yaml:"feature_idx"`
	Threshold  float64 `json:"threshold" yaml:"threshold"`
	LeftChild  int     `json:"left_child" yaml:"left_child"`
	RightChild int     `json:"right_child" yaml:"right_child"`
	ClassLabel int     `json:"class_label" yaml:"class_label"`
	IsLeaf     bool    `json:"is_leaf" yaml:"is_leaf"`
}

// Tree is a decision tree stored as a flat node list rooted at index 0.
type Tree struct {
	Nodes []TreeNode `json:"nodes" yaml:"nodes"`
}

// Forest predicts by majority vote of its trees. A tie votes 0.
type Forest struct {
	version string
	trees   []Tree
}

func newForest(version string, trees []Tree) (*Forest, error) {
	if len(trees) == 0 {
		return nil, errors.New("random forest has no trees")
	}
	for i, tree := range trees {
		if err := tree.check(); err != nil {
			return nil, errors.Wrapf(err, "tree %d", i)
		}
	}
	return &Forest{version: version, trees: trees}, nil
}

func (f *Forest) Version() string {
	return f.version
}

func (f *Forest) Predict(ctx context.Context, features model.FeatureVector) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	survived := 0
	for i, tree := range f.trees {
		label, err := tree.predict(features)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		survived += label
	}

	if 2*survived > len(f.trees) {
		return 1, nil
	}
	return 0, nil
}

// predict walks from the root: feature <= threshold goes left.
func (t Tree) predict(features model.FeatureVector) (int, error) {
	idx := 0
	// A well-formed tree reaches a leaf in at most len(Nodes) steps.
	for steps := 0; steps <= len(t.Nodes); steps++ {
		node := t.Nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
	return 0, errors.New("tree contains a cycle")
}

// check validates indexes and labels once at load time so predict never
// has to bounds-check a malformed tree.
func (t Tree) check() error {
	if len(t.Nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range t.Nodes {
		if node.IsLeaf {
			if node.ClassLabel != 0 && node.ClassLabel != 1 {
				return errors.Errorf("node %d: class label %d is not 0 or 1", i, node.ClassLabel)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= model.FeatureCount {
			return errors.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= 0 || child >= len(t.Nodes) {
				return errors.Errorf("node %d: child index %d out of range", i, child)
			}
		}
	}
	return nil
}

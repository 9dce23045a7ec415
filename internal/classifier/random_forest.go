package classifier

import (
	"fmt"

	"fraud-assessment-service/internal/models"

	"github.com/goccy/go-json"
)

const leafMarker = -1

// forestTree uses the flat array layout of a fitted scikit-learn tree.
type forestTree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

type randomForestArtifact struct {
	FeatureNames []string     `json:"feature_names"`
	Trees        []forestTree `json:"trees"`
}

type RandomForest struct {
	name         string
	featureNames []string
	trees        []forestTree
}

func decodeRandomForest(name string, data []byte) (*RandomForest, error) {
	var artifact randomForestArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("invalid random forest artifact: %w", err)
	}
	if len(artifact.Trees) == 0 {
		return nil, fmt.Errorf("random forest artifact has no trees")
	}
	for i, tree := range artifact.Trees {
		if err := tree.validate(len(artifact.FeatureNames)); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return &RandomForest{name: name, featureNames: artifact.FeatureNames, trees: artifact.Trees}, nil
}

func (t forestTree) validate(featureCount int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays have mismatched lengths")
	}
	for i := 0; i < n; i++ {
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left == leafMarker {
			if len(t.Value[i]) != 2 {
				return fmt.Errorf("leaf %d must hold two class weights", i)
			}
			if t.Value[i][0]+t.Value[i][1] <= 0 {
				return fmt.Errorf("leaf %d has no weight", i)
			}
			continue
		}
		if left <= i || left >= n || right <= i || right >= n {
			return fmt.Errorf("node %d has out-of-order children %d/%d", i, left, right)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= featureCount {
			return fmt.Errorf("node %d splits on unknown feature %d", i, t.Feature[i])
		}
	}
	return nil
}

func (r *RandomForest) Name() string { return r.name }

// PredictProbability averages the fraud-class share of each tree's leaf.
func (r *RandomForest) PredictProbability(vector *models.FeatureVector) (float64, error) {
	x, err := alignFeatures(r.name, r.featureNames, vector)
	if err != nil {
		return 0, err
	}

	var sum float64
	for _, tree := range r.trees {
		node := 0
		for tree.ChildrenLeft[node] != leafMarker {
			if x[tree.Feature[node]] <= tree.Threshold[node] {
				node = tree.ChildrenLeft[node]
			} else {
				node = tree.ChildrenRight[node]
			}
		}
		weights := tree.Value[node]
		sum += weights[1] / (weights[0] + weights[1])
	}
	return sum / float64(len(r.trees)), nil
}

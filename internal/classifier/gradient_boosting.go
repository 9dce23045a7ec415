package classifier

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"fraud-assessment-service/internal/models"

	"github.com/goccy/go-json"
)

// treeNode mirrors one node of an XGBoost JSON dump.
type treeNode struct {
	NodeID         int         `json:"nodeid"`
	Split          string      `json:"split,omitempty"`
	SplitCondition float64     `json:"split_condition,omitempty"`
	Yes            int         `json:"yes,omitempty"`
	No             int         `json:"no,omitempty"`
	Missing        int         `json:"missing,omitempty"`
	Leaf           *float64    `json:"leaf,omitempty"`
	Children       []*treeNode `json:"children,omitempty"`
}

type gradientBoostingArtifact struct {
	FeatureNames []string    `json:"feature_names"`
	BaseScore    *float64    `json:"base_score"`
	Trees        []*treeNode `json:"trees"`
}

// compiledNode is a tree node with splits resolved to feature positions.
type compiledNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	yes       int
	no        int
	missing   int
}

type compiledTree struct {
	root  int
	nodes map[int]compiledNode
}

type GradientBoosting struct {
	name         string
	featureNames []string
	baseMargin   float64
	trees        []compiledTree
}

func decodeGradientBoosting(name string, data []byte) (*GradientBoosting, error) {
	var artifact gradientBoostingArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("invalid gradient boosting artifact: %w", err)
	}
	if len(artifact.Trees) == 0 {
		return nil, fmt.Errorf("gradient boosting artifact has no trees")
	}

	baseScore := 0.5
	if artifact.BaseScore != nil {
		baseScore = *artifact.BaseScore
	}
	if baseScore <= 0 || baseScore >= 1 {
		return nil, fmt.Errorf("base_score must lie in (0,1), got %v", baseScore)
	}

	positions := make(map[string]int, len(artifact.FeatureNames))
	for i, f := range artifact.FeatureNames {
		positions[f] = i
	}

	gb := &GradientBoosting{
		name:         name,
		featureNames: artifact.FeatureNames,
		baseMargin:   logit(baseScore),
		trees:        make([]compiledTree, 0, len(artifact.Trees)),
	}
	for i, root := range artifact.Trees {
		tree, err := compileTree(root, positions, len(artifact.FeatureNames))
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		gb.trees = append(gb.trees, tree)
	}
	return gb, nil
}

func compileTree(root *treeNode, positions map[string]int, featureCount int) (compiledTree, error) {
	if root == nil {
		return compiledTree{}, fmt.Errorf("empty tree")
	}
	tree := compiledTree{root: root.NodeID, nodes: map[int]compiledNode{}}
	stack := []*treeNode{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, dup := tree.nodes[n.NodeID]; dup {
			return compiledTree{}, fmt.Errorf("duplicate node id %d", n.NodeID)
		}
		if n.Leaf != nil {
			tree.nodes[n.NodeID] = compiledNode{leaf: true, value: *n.Leaf}
			continue
		}

		feature, err := resolveSplit(n.Split, positions, featureCount)
		if err != nil {
			return compiledTree{}, fmt.Errorf("node %d: %w", n.NodeID, err)
		}
		tree.nodes[n.NodeID] = compiledNode{
			feature:   feature,
			threshold: n.SplitCondition,
			yes:       n.Yes,
			no:        n.No,
			missing:   n.Missing,
		}
		stack = append(stack, n.Children...)
	}

	// Child ids always exceed their parent's, which keeps traversal finite.
	for id, n := range tree.nodes {
		if n.leaf {
			continue
		}
		for _, child := range []int{n.yes, n.no, n.missing} {
			if _, ok := tree.nodes[child]; !ok {
				return compiledTree{}, fmt.Errorf("node %d references unknown child %d", id, child)
			}
			if child <= id {
				return compiledTree{}, fmt.Errorf("node %d points back to node %d", id, child)
			}
		}
	}
	return tree, nil
}

// resolveSplit accepts either a trained column name or XGBoost's "f<index>".
func resolveSplit(split string, positions map[string]int, featureCount int) (int, error) {
	if pos, ok := positions[split]; ok {
		return pos, nil
	}
	if idx, ok := strings.CutPrefix(split, "f"); ok {
		if n, err := strconv.Atoi(idx); err == nil && n >= 0 && n < featureCount {
			return n, nil
		}
	}
	return 0, fmt.Errorf("unknown split feature %q", split)
}

func (g *GradientBoosting) Name() string { return g.name }

func (g *GradientBoosting) PredictProbability(vector *models.FeatureVector) (float64, error) {
	x, err := alignFeatures(g.name, g.featureNames, vector)
	if err != nil {
		return 0, err
	}

	margin := g.baseMargin
	for _, tree := range g.trees {
		margin += tree.score(x)
	}
	return sigmoid(margin), nil
}

func (t compiledTree) score(x []float64) float64 {
	id := t.root
	for {
		n := t.nodes[id]
		if n.leaf {
			return n.value
		}
		v := x[n.feature]
		switch {
		case math.IsNaN(v):
			id = n.missing
		case v < n.threshold:
			id = n.yes
		default:
			id = n.no
		}
	}
}

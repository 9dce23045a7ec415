package classifier

import (
	"errors"
	"math"
	"testing"

	"fraud-assessment-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

const gradientBoostingFixture = `{
	"kind": "gradient_boosting",
	"feature_names": ["age", "witnesses"],
	"base_score": 0.5,
	"trees": [
		{"nodeid": 0, "split": "witnesses", "split_condition": 0.5, "yes": 1, "no": 2, "missing": 1,
		 "children": [{"nodeid": 1, "leaf": 1.0}, {"nodeid": 2, "leaf": -1.0}]},
		{"nodeid": 0, "split": "f0", "split_condition": 30, "yes": 1, "no": 2, "missing": 2,
		 "children": [{"nodeid": 1, "leaf": 0.5}, {"nodeid": 2, "leaf": 0.0}]}
	]
}`

const randomForestFixture = `{
	"kind": "random_forest",
	"feature_names": ["witnesses"],
	"trees": [
		{"children_left": [1, -1, -1], "children_right": [2, -1, -1], "feature": [0, -2, -2],
		 "threshold": [0.5, -2, -2], "value": [[4, 4], [1, 3], [3, 1]]},
		{"children_left": [-1], "children_right": [-1], "feature": [-2],
		 "threshold": [-2], "value": [[1, 1]]}
	]
}`

const logisticFixture = `{
	"kind": "logistic_regression",
	"feature_names": ["witnesses"],
	"coefficients": [2.0],
	"intercept": -1.0,
	"scaler": {"mean": [1.0], "scale": [2.0]}
}`

func vector(values map[string]float64) *models.FeatureVector {
	v := &models.FeatureVector{}
	for _, c := range []string{"age", "witnesses", "auto_year"} {
		if val, ok := values[c]; ok {
			v.Columns = append(v.Columns, c)
			v.Values = append(v.Values, val)
		}
	}
	return v
}

func mustDecode(t *testing.T, name, fixture string) Classifier {
	t.Helper()
	c, err := Decode(name, []byte(fixture))
	require.NoError(t, err)
	return c
}

// ============================================================================
// TEST SUITE 1: VARIANT PREDICTIONS
// ============================================================================

func TestGradientBoosting_SumsLeafMargins(t *testing.T) {
	c := mustDecode(t, "XGBoost", gradientBoostingFixture)
	assert.Equal(t, "XGBoost", c.Name())

	p, err := c.PredictProbability(vector(map[string]float64{"age": 25, "witnesses": 0}))
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-1.5)), p, 1e-12)

	p, err = c.PredictProbability(vector(map[string]float64{"age": 45, "witnesses": 2}))
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(1.0)), p, 1e-12)
}

func TestGradientBoosting_MissingValueFollowsMissingBranch(t *testing.T) {
	c := mustDecode(t, "XGBoost", gradientBoostingFixture)

	p, err := c.PredictProbability(vector(map[string]float64{"age": math.NaN(), "witnesses": math.NaN()}))
	require.NoError(t, err)
	// witnesses -> missing=1 (leaf 1.0), age -> missing=2 (leaf 0.0)
	assert.InDelta(t, 1/(1+math.Exp(-1.0)), p, 1e-12)
}

func TestRandomForest_AveragesLeafShares(t *testing.T) {
	c := mustDecode(t, "Random Forest", randomForestFixture)

	p, err := c.PredictProbability(vector(map[string]float64{"witnesses": 0}))
	require.NoError(t, err)
	assert.InDelta(t, (0.75+0.5)/2, p, 1e-12)

	p, err = c.PredictProbability(vector(map[string]float64{"witnesses": 3}))
	require.NoError(t, err)
	assert.InDelta(t, (0.25+0.5)/2, p, 1e-12)
}

func TestLogisticRegression_AppliesScaler(t *testing.T) {
	c := mustDecode(t, "Logistic Regression", logisticFixture)

	p, err := c.PredictProbability(vector(map[string]float64{"witnesses": 3}))
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-1.0)), p, 1e-12)
}

func TestPredictions_IgnoreExtraColumnsAndOrder(t *testing.T) {
	c := mustDecode(t, "XGBoost", gradientBoostingFixture)

	reordered := &models.FeatureVector{
		Columns: []string{"auto_year", "witnesses", "age"},
		Values:  []float64{2010, 0, 25},
	}
	p, err := c.PredictProbability(reordered)
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-1.5)), p, 1e-12)
}

// ============================================================================
// TEST SUITE 2: FAILURES
// ============================================================================

func TestPredict_SchemaMismatch(t *testing.T) {
	for _, fixture := range []string{gradientBoostingFixture, randomForestFixture, logisticFixture} {
		c := mustDecode(t, "model", fixture)

		_, err := c.PredictProbability(vector(map[string]float64{"auto_year": 2010}))
		require.Error(t, err)

		var mismatch *SchemaMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Contains(t, mismatch.Missing, "witnesses")
	}
}

func TestPredict_RejectsMalformedVector(t *testing.T) {
	c := mustDecode(t, "model", logisticFixture)

	_, err := c.PredictProbability(nil)
	assert.Error(t, err)

	_, err = c.PredictProbability(&models.FeatureVector{Columns: []string{"witnesses"}})
	assert.Error(t, err)
}

func TestDecode_RejectsCorruptArtifacts(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{"kind":`},
		{"unknown kind", `{"kind": "svm", "feature_names": ["a"]}`},
		{"no features", `{"kind": "logistic_regression", "coefficients": [], "intercept": 0}`},
		{"gb without trees", `{"kind": "gradient_boosting", "feature_names": ["a"], "trees": []}`},
		{"gb unknown split", `{"kind": "gradient_boosting", "feature_names": ["a"], "trees": [
			{"nodeid": 0, "split": "b", "split_condition": 1, "yes": 1, "no": 2, "missing": 1,
			 "children": [{"nodeid": 1, "leaf": 0}, {"nodeid": 2, "leaf": 0}]}]}`},
		{"gb dangling child", `{"kind": "gradient_boosting", "feature_names": ["a"], "trees": [
			{"nodeid": 0, "split": "a", "split_condition": 1, "yes": 1, "no": 5, "missing": 1,
			 "children": [{"nodeid": 1, "leaf": 0}]}]}`},
		{"gb bad base score", `{"kind": "gradient_boosting", "feature_names": ["a"], "base_score": 1.0,
			"trees": [{"nodeid": 0, "leaf": 0}]}`},
		{"rf mismatched arrays", `{"kind": "random_forest", "feature_names": ["a"], "trees": [
			{"children_left": [-1], "children_right": [], "feature": [-2], "threshold": [-2], "value": [[1, 1]]}]}`},
		{"rf feature out of range", `{"kind": "random_forest", "feature_names": ["a"], "trees": [
			{"children_left": [1, -1, -1], "children_right": [2, -1, -1], "feature": [4, -2, -2],
			 "threshold": [0.5, -2, -2], "value": [[1, 1], [1, 0], [0, 1]]}]}`},
		{"lr coefficient count", `{"kind": "logistic_regression", "feature_names": ["a", "b"], "coefficients": [1], "intercept": 0}`},
		{"lr zero scale", `{"kind": "logistic_regression", "feature_names": ["a"], "coefficients": [1], "intercept": 0,
			"scaler": {"mean": [0], "scale": [0]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode("bad", []byte(tt.payload))
			assert.Error(t, err)
		})
	}
}

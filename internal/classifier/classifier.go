// Package classifier evaluates offline-trained fraud models exported as JSON.
// Every variant answers one question: the probability that a claim vector
// belongs to the fraud class.
package classifier

import (
	"fmt"
	"math"
	"strings"

	"fraud-assessment-service/internal/models"

	"github.com/goccy/go-json"
)

type Classifier interface {
	Name() string
	PredictProbability(vector *models.FeatureVector) (float64, error)
}

type Kind string

const (
	KindGradientBoosting   Kind = "gradient_boosting"
	KindRandomForest       Kind = "random_forest"
	KindLogisticRegression Kind = "logistic_regression"
)

// SchemaMismatchError is returned when the vector lacks columns the model was
// trained on.
type SchemaMismatchError struct {
	Model   string
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("model %q expects columns not present in the feature vector: %s",
		e.Model, strings.Join(e.Missing, ", "))
}

type envelope struct {
	Kind         Kind     `json:"kind"`
	FeatureNames []string `json:"feature_names"`
}

// Decode builds a classifier from an exported artifact.
func Decode(name string, data []byte) (Classifier, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("invalid artifact envelope: %w", err)
	}
	if len(env.FeatureNames) == 0 {
		return nil, fmt.Errorf("artifact has no feature_names")
	}

	switch env.Kind {
	case KindGradientBoosting:
		return decodeGradientBoosting(name, data)
	case KindRandomForest:
		return decodeRandomForest(name, data)
	case KindLogisticRegression:
		return decodeLogisticRegression(name, data)
	default:
		return nil, fmt.Errorf("unsupported classifier kind %q", env.Kind)
	}
}

// alignFeatures returns the vector values in the model's feature order.
func alignFeatures(model string, featureNames []string, vector *models.FeatureVector) ([]float64, error) {
	if vector == nil {
		return nil, fmt.Errorf("model %q: nil feature vector", model)
	}
	if len(vector.Columns) != len(vector.Values) {
		return nil, fmt.Errorf("model %q: vector has %d columns but %d values", model, len(vector.Columns), len(vector.Values))
	}

	index := vector.Index()
	aligned := make([]float64, len(featureNames))
	var missing []string
	for i, name := range featureNames {
		pos, ok := index[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		aligned[i] = vector.Values[pos]
	}
	if len(missing) > 0 {
		return nil, &SchemaMismatchError{Model: model, Missing: missing}
	}
	return aligned, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}

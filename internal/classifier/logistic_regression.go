package classifier

import (
	"fmt"

	"fraud-assessment-service/internal/models"

	"github.com/goccy/go-json"
)

type standardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

type logisticArtifact struct {
	FeatureNames []string        `json:"feature_names"`
	Coefficients []float64       `json:"coefficients"`
	Intercept    float64         `json:"intercept"`
	Scaler       *standardScaler `json:"scaler,omitempty"`
}

type LogisticRegression struct {
	name         string
	featureNames []string
	coefficients []float64
	intercept    float64
	scaler       *standardScaler
}

func decodeLogisticRegression(name string, data []byte) (*LogisticRegression, error) {
	var artifact logisticArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("invalid logistic regression artifact: %w", err)
	}
	n := len(artifact.FeatureNames)
	if len(artifact.Coefficients) != n {
		return nil, fmt.Errorf("expected %d coefficients, got %d", n, len(artifact.Coefficients))
	}
	if s := artifact.Scaler; s != nil {
		if len(s.Mean) != n || len(s.Scale) != n {
			return nil, fmt.Errorf("scaler must have %d means and scales", n)
		}
		for i, v := range s.Scale {
			if v == 0 {
				return nil, fmt.Errorf("scaler has zero scale for %s", artifact.FeatureNames[i])
			}
		}
	}
	return &LogisticRegression{
		name:         name,
		featureNames: artifact.FeatureNames,
		coefficients: artifact.Coefficients,
		intercept:    artifact.Intercept,
		scaler:       artifact.Scaler,
	}, nil
}

func (l *LogisticRegression) Name() string { return l.name }

func (l *LogisticRegression) PredictProbability(vector *models.FeatureVector) (float64, error) {
	x, err := alignFeatures(l.name, l.featureNames, vector)
	if err != nil {
		return 0, err
	}

	z := l.intercept
	for i, v := range x {
		if l.scaler != nil {
			v = (v - l.scaler.Mean[i]) / l.scaler.Scale[i]
		}
		z += l.coefficients[i] * v
	}
	return sigmoid(z), nil
}

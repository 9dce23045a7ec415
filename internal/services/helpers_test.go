package services

import (
	"context"
	"testing"
	"time"

	"fraud-assessment-service/internal/assets"
	"fraud-assessment-service/internal/models"

	"github.com/stretchr/testify/require"
)

const fixtureDir = "../assets/testdata/models"

func loadTestStore(t *testing.T) *assets.Store {
	t.Helper()
	store, err := assets.Load(context.Background(), fixtureDir, assets.DefaultModelFiles)
	require.NoError(t, err)
	return store
}

func defaultSubmission(t *testing.T) *models.RawSubmission {
	t.Helper()
	req := models.DefaultAssessmentRequest()
	raw, err := req.ToRawSubmission()
	require.NoError(t, err)
	return raw
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(models.DateLayout, s)
	require.NoError(t, err)
	return d
}

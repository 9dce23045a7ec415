package services

import (
	"testing"

	"fraud-assessment-service/internal/assets"
	"fraud-assessment-service/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// TEST SUITE 1: DERIVED FIELDS
// ============================================================================

func TestBuild_DefaultSubmission(t *testing.T) {
	pipeline := NewFeaturePipeline(loadTestStore(t).Encoders())

	record, vector := pipeline.Build(defaultSubmission(t))
	require.NotNil(t, record)
	require.NotNil(t, vector)

	// 2020 is a leap year.
	assert.Equal(t, 366, record.DaysSincePolicyBind)
	assert.Equal(t, 1, record.IncidentMonth)
	assert.Equal(t, 4, record.IncidentDayOfWeek, "2021-01-01 is a Friday")
	assert.InDelta(t, 0.1, record.InjuryClaimRatio, 1e-9)
	assert.InDelta(t, 0.1, record.PropertyClaimRatio, 1e-9)
	assert.InDelta(t, 0.8, record.VehicleClaimRatio, 1e-9)
	assert.Empty(t, vector.Fallbacks)
}

func TestBuild_DaysSincePolicyBind(t *testing.T) {
	tests := []struct {
		name     string
		bind     string
		incident string
		want     int
	}{
		{"nine days", "2024-01-01", "2024-01-10", 9},
		{"same day", "2024-03-05", "2024-03-05", 0},
		{"incident before bind", "2024-01-10", "2024-01-01", -9},
		{"across leap day", "2024-02-28", "2024-03-01", 2},
	}

	pipeline := NewFeaturePipeline(loadTestStore(t).Encoders())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := defaultSubmission(t)
			raw.PolicyBindDate = date(t, tt.bind)
			raw.IncidentDate = date(t, tt.incident)

			record, vector := pipeline.Build(raw)
			assert.Equal(t, tt.want, record.DaysSincePolicyBind)

			v, ok := vector.Value("days_since_policy_bind")
			require.True(t, ok)
			assert.Equal(t, float64(tt.want), v)
		})
	}
}

func TestBuild_DayOfWeekStartsMonday(t *testing.T) {
	pipeline := NewFeaturePipeline(loadTestStore(t).Encoders())
	days := map[string]int{
		"2024-01-01": 0, // Monday
		"2024-01-03": 2,
		"2024-01-07": 6, // Sunday
	}
	for d, want := range days {
		raw := defaultSubmission(t)
		raw.IncidentDate = date(t, d)
		record, _ := pipeline.Build(raw)
		assert.Equal(t, want, record.IncidentDayOfWeek, d)
	}
}

func TestBuild_ZeroTotalGivesZeroRatios(t *testing.T) {
	pipeline := NewFeaturePipeline(loadTestStore(t).Encoders())
	raw := defaultSubmission(t)
	raw.TotalClaimAmount = 0
	raw.InjuryClaim = 100

	record, vector := pipeline.Build(raw)
	assert.Zero(t, record.InjuryClaimRatio)
	assert.Zero(t, record.PropertyClaimRatio)
	assert.Zero(t, record.VehicleClaimRatio)
	for _, c := range []string{"injury_claim_ratio", "property_claim_ratio", "vehicle_claim_ratio"} {
		v, ok := vector.Value(c)
		require.True(t, ok)
		assert.Zero(t, v, c)
	}
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	pipeline := NewFeaturePipeline(loadTestStore(t).Encoders())
	raw := defaultSubmission(t)
	raw.IncidentCity = "  Springfield  "
	before := *raw

	record, _ := pipeline.Build(raw)
	assert.Equal(t, before, *raw)
	assert.Equal(t, "Springfield", record.IncidentCity)
}

// ============================================================================
// TEST SUITE 2: ENCODING
// ============================================================================

func TestBuild_VectorSchema(t *testing.T) {
	pipeline := NewFeaturePipeline(loadTestStore(t).Encoders())
	_, vector := pipeline.Build(defaultSubmission(t))

	assert.Len(t, vector.Columns, 38)
	assert.Equal(t, pipeline.ModelColumns(), vector.Columns)
	assert.NotContains(t, vector.Columns, "policy_bind_date")
	assert.NotContains(t, vector.Columns, "incident_date")
	assert.Len(t, vector.Values, len(vector.Columns))
}

func TestBuild_EncodesKnownCategories(t *testing.T) {
	pipeline := NewFeaturePipeline(loadTestStore(t).Encoders())
	_, vector := pipeline.Build(defaultSubmission(t))

	want := map[string]float64{
		"policy_state":            2, // OH
		"incident_type":           2, // Single Vehicle Collision
		"collision_type":          2, // Side Collision
		"incident_severity":       1, // Minor Damage
		"police_report_available": 1, // YES
		"insured_hobbies":         17,
		"auto_make":               10, // Saab
		"total_claim_amount":      50000,
		"witnesses":               0,
		"auto_year":               2010,
	}
	got := map[string]float64{}
	for c := range want {
		v, ok := vector.Value(c)
		require.True(t, ok, c)
		got[c] = v
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("encoded values mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_UnknownCategoriesFallBack(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.RawSubmission)
		column string
		value  string
	}{
		{"placeholder collision type", func(r *models.RawSubmission) { r.CollisionType = models.Placeholder }, "collision_type", "?"},
		{"placeholder police report", func(r *models.RawSubmission) { r.PoliceReportAvailable = models.Placeholder }, "police_report_available", "?"},
		{"unseen city", func(r *models.RawSubmission) { r.IncidentCity = "Gotham" }, "incident_city", "Gotham"},
		{"unseen model", func(r *models.RawSubmission) { r.AutoModel = "Model T" }, "auto_model", "Model T"},
	}

	pipeline := NewFeaturePipeline(loadTestStore(t).Encoders())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := defaultSubmission(t)
			tt.mutate(raw)

			record, vector := pipeline.Build(raw)
			v, ok := vector.Value(tt.column)
			require.True(t, ok)
			assert.Equal(t, float64(FallbackCode), v)

			require.Len(t, vector.Fallbacks, 1)
			assert.Equal(t, models.EncodingFallback{
				Column: tt.column,
				Value:  tt.value,
				Reason: models.FallbackUnseenCategory,
			}, vector.Fallbacks[0])

			// the display record keeps the human value
			shown, _ := record.Lookup(tt.column)
			assert.Equal(t, tt.value, shown)
		})
	}
}

func TestBuild_MissingEncoderKeepsColumn(t *testing.T) {
	encoders, err := assets.NewEncoderBundle(map[string][]string{
		"policy_state": {"IL", "IN", "OH"},
	})
	require.NoError(t, err)
	pipeline := NewFeaturePipeline(encoders)

	_, vector := pipeline.Build(defaultSubmission(t))
	assert.Len(t, vector.Columns, 38)

	v, ok := vector.Value("incident_city")
	require.True(t, ok)
	assert.Equal(t, float64(FallbackCode), v)

	v, _ = vector.Value("policy_state")
	assert.Equal(t, 2.0, v)

	reasons := map[string]models.FallbackReason{}
	for _, f := range vector.Fallbacks {
		reasons[f.Column] = f.Reason
	}
	assert.Equal(t, models.FallbackMissingEncoder, reasons["incident_city"])
	assert.NotContains(t, reasons, "policy_state")
}

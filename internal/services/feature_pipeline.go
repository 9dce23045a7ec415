package services

import (
	"log/slog"
	"math"
	"slices"
	"time"

	"fraud-assessment-service/internal/assets"
	"fraud-assessment-service/internal/metrics"
	"fraud-assessment-service/internal/models"
	"fraud-assessment-service/internal/utils"
)

// FallbackCode is assigned to text values the encoders cannot map.
const FallbackCode = 0

// DroppedColumns never reach the classifier. Names absent from the record are
// ignored.
var DroppedColumns = []string{
	"policy_number",
	"policy_csl",
	"insured_zip",
	"incident_location",
	"_c39",
	"policy_bind_date",
	"incident_date",
}

type FeaturePipeline struct {
	encoders     *assets.EncoderBundle
	modelColumns []string
}

func NewFeaturePipeline(encoders *assets.EncoderBundle) *FeaturePipeline {
	columns := make([]string, 0, len(models.RecordColumns))
	for _, c := range models.RecordColumns {
		if !slices.Contains(DroppedColumns, c) {
			columns = append(columns, c)
		}
	}
	return &FeaturePipeline{encoders: encoders, modelColumns: columns}
}

// ModelColumns is the classifier input schema in order.
func (p *FeaturePipeline) ModelColumns() []string {
	return slices.Clone(p.modelColumns)
}

// Build turns a submission into the human-readable record and the numeric
// classifier vector. It never fails for values inside the form's domain.
func (p *FeaturePipeline) Build(raw *models.RawSubmission) (*models.DisplayRecord, *models.FeatureVector) {
	record := &models.DisplayRecord{RawSubmission: normalize(raw)}
	deriveFields(record)
	return record, p.encode(record)
}

func normalize(raw *models.RawSubmission) models.RawSubmission {
	clean := *raw
	utils.TrimStrings(&clean)
	clean.PolicyBindDate = calendarDay(clean.PolicyBindDate)
	clean.IncidentDate = calendarDay(clean.IncidentDate)
	return clean
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func deriveFields(r *models.DisplayRecord) {
	r.DaysSincePolicyBind = int(math.Floor(r.IncidentDate.Sub(r.PolicyBindDate).Hours() / 24))
	r.IncidentMonth = int(r.IncidentDate.Month())
	// Monday=0 ... Sunday=6
	r.IncidentDayOfWeek = (int(r.IncidentDate.Weekday()) + 6) % 7

	if r.TotalClaimAmount > 0 {
		r.InjuryClaimRatio = r.InjuryClaim / r.TotalClaimAmount
		r.PropertyClaimRatio = r.PropertyClaim / r.TotalClaimAmount
		r.VehicleClaimRatio = r.VehicleClaim / r.TotalClaimAmount
	} else {
		r.InjuryClaimRatio = 0
		r.PropertyClaimRatio = 0
		r.VehicleClaimRatio = 0
	}
}

func (p *FeaturePipeline) encode(record *models.DisplayRecord) *models.FeatureVector {
	vector := &models.FeatureVector{
		Columns: slices.Clone(p.modelColumns),
		Values:  make([]float64, len(p.modelColumns)),
	}

	for i, column := range p.modelColumns {
		value, _ := record.Lookup(column)
		switch v := value.(type) {
		case string:
			code, fallback := p.encodeCategory(column, v)
			vector.Values[i] = float64(code)
			if fallback != nil {
				vector.Fallbacks = append(vector.Fallbacks, *fallback)
			}
		case int:
			vector.Values[i] = float64(v)
		case float64:
			vector.Values[i] = v
		case time.Time:
			// only reachable if a date column is removed from DroppedColumns
			vector.Values[i] = float64(v.Unix())
		}
	}
	return vector
}

// encodeCategory maps one text value to its trained code. Unknown values and
// columns without an encoder get FallbackCode; the column stays in the vector.
func (p *FeaturePipeline) encodeCategory(column, value string) (int, *models.EncodingFallback) {
	enc, ok := p.encoders.Encoder(column)
	if !ok {
		slog.Warn("no encoder for text column, using fallback code",
			"column", column, "fallback_code", FallbackCode)
		metrics.EncoderFallbacks.WithLabelValues(column, string(models.FallbackMissingEncoder)).Inc()
		return FallbackCode, &models.EncodingFallback{Column: column, Value: value, Reason: models.FallbackMissingEncoder}
	}

	if value != models.Placeholder {
		if code, known := enc.Encode(value); known {
			return code, nil
		}
	}

	slog.Debug("unseen category, using fallback code", "column", column, "value", value)
	metrics.EncoderFallbacks.WithLabelValues(column, string(models.FallbackUnseenCategory)).Inc()
	return FallbackCode, &models.EncodingFallback{Column: column, Value: value, Reason: models.FallbackUnseenCategory}
}

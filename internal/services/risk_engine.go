package services

import (
	"fmt"

	"fraud-assessment-service/internal/config"
	"fraud-assessment-service/internal/models"
)

// RiskRule inspects a record and raises at most one driver.
type RiskRule struct {
	Code     models.DriverCode
	Evaluate func(r *models.DisplayRecord) (models.RiskDriver, bool)
}

type RiskEngine struct {
	cfg   config.RiskConfig
	rules []RiskRule
}

func NewRiskEngine(cfg config.RiskConfig) *RiskEngine {
	return &RiskEngine{
		cfg: cfg,
		rules: []RiskRule{
			recentPolicyRule(cfg.RecentPolicyDays),
			highValueNoPoliceReportRule(cfg.HighValueClaim),
			majorIncidentNoWitnessesRule(),
			singleVehicleIncidentRule(),
		},
	}
}

// Assess combines the classifier probability with the heuristic drivers.
// Drivers come back in rule order.
func (e *RiskEngine) Assess(probability float64, record *models.DisplayRecord) (models.Verdict, []models.RiskDriver) {
	drivers := e.Drivers(record)
	return e.Classify(probability, len(drivers)), drivers
}

func (e *RiskEngine) Drivers(record *models.DisplayRecord) []models.RiskDriver {
	drivers := []models.RiskDriver{}
	if record == nil {
		return drivers
	}
	for _, rule := range e.rules {
		if d, ok := rule.Evaluate(record); ok {
			drivers = append(drivers, d)
		}
	}
	return drivers
}

// Classify applies the verdict table top-down; either signal alone can
// escalate.
func (e *RiskEngine) Classify(probability float64, driverCount int) models.Verdict {
	switch {
	case probability > e.cfg.HighProbability || driverCount >= e.cfg.HighDrivers:
		return models.VerdictHigh
	case probability > e.cfg.MediumProbability || driverCount >= e.cfg.MediumDrivers:
		return models.VerdictMedium
	case probability > e.cfg.LowProbability || driverCount >= e.cfg.LowDrivers:
		return models.VerdictLowMedium
	default:
		return models.VerdictLow
	}
}

// ============================================================================
// RULES
// ============================================================================

func recentPolicyRule(maxDays int) RiskRule {
	return RiskRule{
		Code: models.DriverRecentPolicy,
		Evaluate: func(r *models.DisplayRecord) (models.RiskDriver, bool) {
			if r.DaysSincePolicyBind < maxDays {
				return models.RiskDriver{
					Code:        models.DriverRecentPolicy,
					Description: fmt.Sprintf("Recent Policy (Bind < %d days)", maxDays),
				}, true
			}
			return models.RiskDriver{}, false
		},
	}
}

func highValueNoPoliceReportRule(threshold float64) RiskRule {
	return RiskRule{
		Code: models.DriverHighValueNoPoliceReport,
		Evaluate: func(r *models.DisplayRecord) (models.RiskDriver, bool) {
			if r.PoliceReportAvailable == models.AnswerNo && r.TotalClaimAmount > threshold {
				return models.RiskDriver{
					Code:        models.DriverHighValueNoPoliceReport,
					Description: "High Value Claim without Police Report",
				}, true
			}
			return models.RiskDriver{}, false
		},
	}
}

func majorIncidentNoWitnessesRule() RiskRule {
	return RiskRule{
		Code: models.DriverMajorIncidentNoWitnesses,
		Evaluate: func(r *models.DisplayRecord) (models.RiskDriver, bool) {
			if r.IncidentSeverity == models.SeverityMajorDamage && r.Witnesses == 0 {
				return models.RiskDriver{
					Code:        models.DriverMajorIncidentNoWitnesses,
					Description: "Major Incident with No Witnesses",
				}, true
			}
			return models.RiskDriver{}, false
		},
	}
}

func singleVehicleIncidentRule() RiskRule {
	return RiskRule{
		Code: models.DriverSingleVehicleIncident,
		Evaluate: func(r *models.DisplayRecord) (models.RiskDriver, bool) {
			if r.IncidentType == models.IncidentSingleVehicle {
				return models.RiskDriver{
					Code:        models.DriverSingleVehicleIncident,
					Description: "Single Vehicle Incident Category",
				}, true
			}
			return models.RiskDriver{}, false
		},
	}
}

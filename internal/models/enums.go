package models

type Verdict string

const (
	VerdictLow       Verdict = "Low"
	VerdictLowMedium Verdict = "Low-Medium"
	VerdictMedium    Verdict = "Medium"
	VerdictHigh      Verdict = "High"
)

// Rank orders verdicts from Low (0) to High (3).
func (v Verdict) Rank() int {
	switch v {
	case VerdictHigh:
		return 3
	case VerdictMedium:
		return 2
	case VerdictLowMedium:
		return 1
	default:
		return 0
	}
}

func (v Verdict) Label() string {
	switch v {
	case VerdictHigh:
		return "HIGH RISK"
	case VerdictMedium:
		return "MODERATE RISK"
	case VerdictLowMedium:
		return "LOW-MODERATE RISK"
	default:
		return "LOW RISK"
	}
}

func (v Verdict) Color() string {
	switch v {
	case VerdictHigh:
		return "#FF0000"
	case VerdictMedium:
		return "#FFA500"
	case VerdictLowMedium:
		return "#FFD700"
	default:
		return "#008000"
	}
}

type DriverCode string

const (
	DriverRecentPolicy             DriverCode = "recent_policy"
	DriverHighValueNoPoliceReport  DriverCode = "high_value_no_police_report"
	DriverMajorIncidentNoWitnesses DriverCode = "major_incident_no_witnesses"
	DriverSingleVehicleIncident    DriverCode = "single_vehicle_incident"
)

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

type FallbackReason string

const (
	FallbackUnseenCategory FallbackReason = "unseen"
	FallbackMissingEncoder FallbackReason = "missing_encoder"
)

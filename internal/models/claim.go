package models

import "time"

// RawSubmission is one claim as entered on the intake form.
type RawSubmission struct {
	MonthsAsCustomer    int       `json:"months_as_customer" validate:"gte=0"`
	Age                 int       `json:"age" validate:"gte=18,lte=120"`
	PolicyBindDate      time.Time `json:"policy_bind_date" validate:"required"`
	PolicyState         string    `json:"policy_state" validate:"required,option=policy_state"`
	PolicyDeductable    float64   `json:"policy_deductable" validate:"finite,gte=0"`
	PolicyAnnualPremium float64   `json:"policy_annual_premium" validate:"finite,gte=0"`
	UmbrellaLimit       float64   `json:"umbrella_limit" validate:"finite,gte=0"`

	InsuredSex            string `json:"insured_sex" validate:"required"`
	InsuredEducationLevel string `json:"insured_education_level" validate:"required"`
	InsuredOccupation     string `json:"insured_occupation" validate:"required"`
	InsuredHobbies        string `json:"insured_hobbies" validate:"required"`
	InsuredRelationship   string `json:"insured_relationship" validate:"required"`

	CapitalGains float64 `json:"capital-gains" validate:"finite,gte=0"`
	CapitalLoss  float64 `json:"capital-loss" validate:"finite"`

	IncidentDate             time.Time `json:"incident_date" validate:"required"`
	IncidentType             string    `json:"incident_type" validate:"required,option=incident_type"`
	CollisionType            string    `json:"collision_type" validate:"required,option=collision_type"`
	IncidentSeverity         string    `json:"incident_severity" validate:"required,option=incident_severity"`
	AuthoritiesContacted     string    `json:"authorities_contacted" validate:"required,option=authorities_contacted"`
	IncidentState            string    `json:"incident_state" validate:"required,option=incident_state"`
	IncidentCity             string    `json:"incident_city" validate:"required,max=100"`
	IncidentHourOfTheDay     int       `json:"incident_hour_of_the_day" validate:"gte=0,lte=23"`
	NumberOfVehiclesInvolved int       `json:"number_of_vehicles_involved" validate:"gte=1,lte=4"`
	PropertyDamage           string    `json:"property_damage" validate:"required,option=property_damage"`
	BodilyInjuries           int       `json:"bodily_injuries" validate:"gte=0,lte=2"`
	Witnesses                int       `json:"witnesses" validate:"gte=0,lte=10"`
	PoliceReportAvailable    string    `json:"police_report_available" validate:"required,option=police_report_available"`

	TotalClaimAmount float64 `json:"total_claim_amount" validate:"finite,gte=0"`
	InjuryClaim      float64 `json:"injury_claim" validate:"finite,gte=0"`
	PropertyClaim    float64 `json:"property_claim" validate:"finite,gte=0"`
	VehicleClaim     float64 `json:"vehicle_claim" validate:"finite,gte=0"`

	AutoMake  string `json:"auto_make" validate:"required,max=50"`
	AutoModel string `json:"auto_model" validate:"required,max=50"`
	AutoYear  int    `json:"auto_year" validate:"gte=1990,lte=2024"`
}

// DisplayRecord is the submission plus derived fields, in human units.
type DisplayRecord struct {
	RawSubmission

	DaysSincePolicyBind int     `json:"days_since_policy_bind"`
	IncidentMonth       int     `json:"incident_month"`
	IncidentDayOfWeek   int     `json:"incident_day_of_week"` // Monday=0
	InjuryClaimRatio    float64 `json:"injury_claim_ratio"`
	PropertyClaimRatio  float64 `json:"property_claim_ratio"`
	VehicleClaimRatio   float64 `json:"vehicle_claim_ratio"`
}

// RecordColumns lists every DisplayRecord column in model training order.
var RecordColumns = []string{
	"months_as_customer",
	"age",
	"policy_bind_date",
	"policy_state",
	"policy_deductable",
	"policy_annual_premium",
	"umbrella_limit",
	"insured_sex",
	"insured_education_level",
	"insured_occupation",
	"insured_hobbies",
	"insured_relationship",
	"capital-gains",
	"capital-loss",
	"incident_date",
	"incident_type",
	"collision_type",
	"incident_severity",
	"authorities_contacted",
	"incident_state",
	"incident_city",
	"incident_hour_of_the_day",
	"number_of_vehicles_involved",
	"property_damage",
	"bodily_injuries",
	"witnesses",
	"police_report_available",
	"total_claim_amount",
	"injury_claim",
	"property_claim",
	"vehicle_claim",
	"auto_make",
	"auto_model",
	"auto_year",
	"days_since_policy_bind",
	"incident_month",
	"incident_day_of_week",
	"injury_claim_ratio",
	"property_claim_ratio",
	"vehicle_claim_ratio",
}

// Lookup returns the value of a column by its training-set name. Values are
// int, float64, string or time.Time.
func (r *DisplayRecord) Lookup(column string) (any, bool) {
	if r == nil {
		return nil, false
	}
	switch column {
	case "months_as_customer":
		return r.MonthsAsCustomer, true
	case "age":
		return r.Age, true
	case "policy_bind_date":
		return r.PolicyBindDate, true
	case "policy_state":
		return r.PolicyState, true
	case "policy_deductable":
		return r.PolicyDeductable, true
	case "policy_annual_premium":
		return r.PolicyAnnualPremium, true
	case "umbrella_limit":
		return r.UmbrellaLimit, true
	case "insured_sex":
		return r.InsuredSex, true
	case "insured_education_level":
		return r.InsuredEducationLevel, true
	case "insured_occupation":
		return r.InsuredOccupation, true
	case "insured_hobbies":
		return r.InsuredHobbies, true
	case "insured_relationship":
		return r.InsuredRelationship, true
	case "capital-gains":
		return r.CapitalGains, true
	case "capital-loss":
		return r.CapitalLoss, true
	case "incident_date":
		return r.IncidentDate, true
	case "incident_type":
		return r.IncidentType, true
	case "collision_type":
		return r.CollisionType, true
	case "incident_severity":
		return r.IncidentSeverity, true
	case "authorities_contacted":
		return r.AuthoritiesContacted, true
	case "incident_state":
		return r.IncidentState, true
	case "incident_city":
		return r.IncidentCity, true
	case "incident_hour_of_the_day":
		return r.IncidentHourOfTheDay, true
	case "number_of_vehicles_involved":
		return r.NumberOfVehiclesInvolved, true
	case "property_damage":
		return r.PropertyDamage, true
	case "bodily_injuries":
		return r.BodilyInjuries, true
	case "witnesses":
		return r.Witnesses, true
	case "police_report_available":
		return r.PoliceReportAvailable, true
	case "total_claim_amount":
		return r.TotalClaimAmount, true
	case "injury_claim":
		return r.InjuryClaim, true
	case "property_claim":
		return r.PropertyClaim, true
	case "vehicle_claim":
		return r.VehicleClaim, true
	case "auto_make":
		return r.AutoMake, true
	case "auto_model":
		return r.AutoModel, true
	case "auto_year":
		return r.AutoYear, true
	case "days_since_policy_bind":
		return r.DaysSincePolicyBind, true
	case "incident_month":
		return r.IncidentMonth, true
	case "incident_day_of_week":
		return r.IncidentDayOfWeek, true
	case "injury_claim_ratio":
		return r.InjuryClaimRatio, true
	case "property_claim_ratio":
		return r.PropertyClaimRatio, true
	case "vehicle_claim_ratio":
		return r.VehicleClaimRatio, true
	default:
		return nil, false
	}
}

// FeatureVector is the numeric, schema-aligned classifier input.
type FeatureVector struct {
	Columns   []string           `json:"columns"`
	Values    []float64          `json:"values"`
	Fallbacks []EncodingFallback `json:"fallbacks,omitempty"`
}

func (v *FeatureVector) Value(column string) (float64, bool) {
	if v == nil {
		return 0, false
	}
	for i, c := range v.Columns {
		if c == column {
			return v.Values[i], true
		}
	}
	return 0, false
}

// Index maps column name to position.
func (v *FeatureVector) Index() map[string]int {
	index := make(map[string]int, len(v.Columns))
	for i, c := range v.Columns {
		index[c] = i
	}
	return index
}

// EncodingFallback records a text column that was set to the fallback code.
type EncodingFallback struct {
	Column string         `json:"column"`
	Value  string         `json:"value"`
	Reason FallbackReason `json:"reason"`
}

type RiskDriver struct {
	Code        DriverCode `json:"code"`
	Description string     `json:"description"`
}

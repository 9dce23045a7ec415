package models

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// AssessmentRequest is the intake form payload. It binds from both
// application/x-www-form-urlencoded and JSON bodies.
type AssessmentRequest struct {
	Model string `json:"model" form:"model"`

	MonthsAsCustomer    int     `json:"months_as_customer" form:"months_as_customer"`
	Age                 int     `json:"age" form:"age"`
	PolicyState         string  `json:"policy_state" form:"policy_state"`
	PolicyBindDate      string  `json:"policy_bind_date" form:"policy_bind_date"`
	PolicyAnnualPremium float64 `json:"policy_annual_premium" form:"policy_annual_premium"`
	PolicyDeductable    float64 `json:"policy_deductable" form:"policy_deductable"`

	IncidentDate         string `json:"incident_date" form:"incident_date"`
	IncidentType         string `json:"incident_type" form:"incident_type"`
	CollisionType        string `json:"collision_type" form:"collision_type"`
	IncidentSeverity     string `json:"incident_severity" form:"incident_severity"`
	AuthoritiesContacted string `json:"authorities_contacted" form:"authorities_contacted"`
	IncidentState        string `json:"incident_state" form:"incident_state"`
	IncidentCity         string `json:"incident_city" form:"incident_city"`

	TotalClaimAmount float64 `json:"total_claim_amount" form:"total_claim_amount"`
	InjuryClaim      float64 `json:"injury_claim" form:"injury_claim"`
	PropertyClaim    float64 `json:"property_claim" form:"property_claim"`
	VehicleClaim     float64 `json:"vehicle_claim" form:"vehicle_claim"`

	AutoMake  string `json:"auto_make" form:"auto_make"`
	AutoModel string `json:"auto_model" form:"auto_model"`
	AutoYear  int    `json:"auto_year" form:"auto_year"`

	Witnesses             int    `json:"witnesses" form:"witnesses"`
	PoliceReportAvailable string `json:"police_report_available" form:"police_report_available"`
	PropertyDamage        string `json:"property_damage" form:"property_damage"`

	UmbrellaLimit            float64 `json:"umbrella_limit" form:"umbrella_limit"`
	CapitalGains             float64 `json:"capital-gains" form:"capital-gains"`
	CapitalLoss              float64 `json:"capital-loss" form:"capital-loss"`
	IncidentHourOfTheDay     int     `json:"incident_hour_of_the_day" form:"incident_hour_of_the_day"`
	NumberOfVehiclesInvolved int     `json:"number_of_vehicles_involved" form:"number_of_vehicles_involved"`
	BodilyInjuries           int     `json:"bodily_injuries" form:"bodily_injuries"`
}

// DefaultAssessmentRequest holds the values the intake form starts with.
func DefaultAssessmentRequest() AssessmentRequest {
	return AssessmentRequest{
		MonthsAsCustomer:         12,
		Age:                      35,
		PolicyState:              "OH",
		PolicyBindDate:           "2020-01-01",
		PolicyAnnualPremium:      1000,
		PolicyDeductable:         1000,
		IncidentDate:             "2021-01-01",
		IncidentType:             IncidentSingleVehicle,
		CollisionType:            "Side Collision",
		IncidentSeverity:         "Minor Damage",
		AuthoritiesContacted:     "Police",
		IncidentState:            "NY",
		IncidentCity:             "Springfield",
		TotalClaimAmount:         50000,
		InjuryClaim:              5000,
		PropertyClaim:            5000,
		VehicleClaim:             40000,
		AutoMake:                 "Saab",
		AutoModel:                "92x",
		AutoYear:                 2010,
		Witnesses:                0,
		PoliceReportAvailable:    AnswerYes,
		PropertyDamage:           AnswerYes,
		IncidentHourOfTheDay:     12,
		NumberOfVehiclesInvolved: 1,
		BodilyInjuries:           1,
	}
}

// ToRawSubmission parses dates, applies the hidden defaults and the vehicle
// count rule. Field-level validation happens afterwards.
func (r *AssessmentRequest) ToRawSubmission() (*RawSubmission, error) {
	bindDate, err := time.Parse(DateLayout, strings.TrimSpace(r.PolicyBindDate))
	if err != nil {
		return nil, fmt.Errorf("policy_bind_date must use YYYY-MM-DD: %w", err)
	}
	incidentDate, err := time.Parse(DateLayout, strings.TrimSpace(r.IncidentDate))
	if err != nil {
		return nil, fmt.Errorf("incident_date must use YYYY-MM-DD: %w", err)
	}

	vehicles := r.NumberOfVehiclesInvolved
	if r.IncidentType != IncidentMultiVehicle {
		vehicles = 1
	} else if vehicles < 2 || vehicles > 4 {
		return nil, fmt.Errorf("number_of_vehicles_involved must be between 2 and 4 for a multi-vehicle collision")
	}

	return &RawSubmission{
		MonthsAsCustomer:         r.MonthsAsCustomer,
		Age:                      r.Age,
		PolicyBindDate:           bindDate,
		PolicyState:              r.PolicyState,
		PolicyDeductable:         r.PolicyDeductable,
		PolicyAnnualPremium:      r.PolicyAnnualPremium,
		UmbrellaLimit:            r.UmbrellaLimit,
		InsuredSex:               DefaultInsuredSex,
		InsuredEducationLevel:    DefaultInsuredEducationLevel,
		InsuredOccupation:        DefaultInsuredOccupation,
		InsuredHobbies:           DefaultInsuredHobbies,
		InsuredRelationship:      DefaultInsuredRelationship,
		CapitalGains:             r.CapitalGains,
		CapitalLoss:              r.CapitalLoss,
		IncidentDate:             incidentDate,
		IncidentType:             r.IncidentType,
		CollisionType:            r.CollisionType,
		IncidentSeverity:         r.IncidentSeverity,
		AuthoritiesContacted:     r.AuthoritiesContacted,
		IncidentState:            r.IncidentState,
		IncidentCity:             r.IncidentCity,
		IncidentHourOfTheDay:     r.IncidentHourOfTheDay,
		NumberOfVehiclesInvolved: vehicles,
		PropertyDamage:           r.PropertyDamage,
		BodilyInjuries:           r.BodilyInjuries,
		Witnesses:                r.Witnesses,
		PoliceReportAvailable:    r.PoliceReportAvailable,
		TotalClaimAmount:         r.TotalClaimAmount,
		InjuryClaim:              r.InjuryClaim,
		PropertyClaim:            r.PropertyClaim,
		VehicleClaim:             r.VehicleClaim,
		AutoMake:                 r.AutoMake,
		AutoModel:                r.AutoModel,
		AutoYear:                 r.AutoYear,
	}, nil
}

type QuestionRequest struct {
	Question string `json:"question" form:"question" validate:"required,max=500"`
}

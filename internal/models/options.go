package models

import "slices"

// Placeholder is the "unknown / not provided" choice offered by some selects.
const Placeholder = "?"

const (
	IncidentSingleVehicle = "Single Vehicle Collision"
	IncidentMultiVehicle  = "Multi-vehicle Collision"
	IncidentParkedCar     = "Parked Car"
	IncidentVehicleTheft  = "Vehicle Theft"

	SeverityMajorDamage = "Major Damage"

	AnswerYes = "YES"
	AnswerNo  = "NO"
)

// Fields the intake form does not collect.
const (
	DefaultInsuredSex            = "MALE"
	DefaultInsuredEducationLevel = "MD"
	DefaultInsuredOccupation     = "sales"
	DefaultInsuredHobbies        = "sleeping"
	DefaultInsuredRelationship   = "husband"
)

// FormOptions are the categorical choices offered per column, in display order.
var FormOptions = map[string][]string{
	"policy_state":            {"OH", "IL", "IN"},
	"incident_type":           {IncidentSingleVehicle, IncidentMultiVehicle, IncidentParkedCar, IncidentVehicleTheft},
	"collision_type":          {"Side Collision", "Rear Collision", "Front Collision", Placeholder},
	"incident_severity":       {"Minor Damage", "Total Loss", SeverityMajorDamage, "Trivial Damage"},
	"authorities_contacted":   {"Police", "Fire", "Ambulance", "Other", "None"},
	"incident_state":          {"NY", "SC", "WV", "VA", "NC", "PA", "OH"},
	"police_report_available": {AnswerYes, AnswerNo, Placeholder},
	"property_damage":         {AnswerYes, AnswerNo, Placeholder},
}

func IsFormOption(column, value string) bool {
	return slices.Contains(FormOptions[column], value)
}

package utils

import "time"

const APIVersion = "v1"

// Error codes returned in ErrorResponse.Error.Code.
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnknownModel      = "UNKNOWN_MODEL"
	CodeNoAssessment      = "NO_ASSESSMENT"
	CodeAssetsUnavailable = "ASSETS_UNAVAILABLE"
	CodeReportFailed      = "REPORT_FAILED"
	CodeInternal          = "INTERNAL_ERROR"
)

type SuccessResponse struct {
	Success bool  `json:"success"`
	Data    any   `json:"data"`
	Meta    *Meta `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

// APIError carries per-field problems in Details for VALIDATION_ERROR.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details []ValidationError `json:"details,omitempty"`
}

type Meta struct {
	Timestamp  time.Time `json:"timestamp"`
	APIVersion string    `json:"api_version"`
}

func CreateErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: APIError{Code: code, Message: message}}
}

func CreateValidationErrorResponse(message string, details []ValidationError) ErrorResponse {
	resp := CreateErrorResponse(CodeValidation, message)
	resp.Error.Details = details
	return resp
}

func CreateSuccessResponse(data any) SuccessResponse {
	return SuccessResponse{
		Success: true,
		Data:    data,
		Meta:    &Meta{Timestamp: time.Now().UTC(), APIVersion: APIVersion},
	}
}

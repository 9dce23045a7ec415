package services

import (
	"errors"
	"fmt"
	"strings"

	"fraud-assessment-service/internal/utils"
)

var (
	ErrAssetsUnavailable = errors.New("model assets unavailable")
	ErrNoAssessment      = errors.New("no assessment in this session")
	ErrUnknownModel      = errors.New("unknown classifier")
)

// ValidationFailedError carries the per-field problems of a rejected
// submission.
type ValidationFailedError struct {
	Fields []utils.ValidationError
}

func (e *ValidationFailedError) Error() string {
	return "invalid claim submission: " + utils.JoinValidationErrors(e.Fields)
}

func unknownModelError(name string, known []string) error {
	return fmt.Errorf("%w %q, expected one of: %s", ErrUnknownModel, name, strings.Join(known, ", "))
}

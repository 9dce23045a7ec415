package repository

import (
	"context"
	"errors"
	"fmt"

	"fraud-assessment-service/internal/models"

	"github.com/goccy/go-json"
)

var (
	// ErrSessionNotFound is returned by Get for unknown or expired sessions.
	ErrSessionNotFound = errors.New("session not found")

	// ErrUpdateConflict is returned by Update when other writers kept
	// changing the session until the retries ran out.
	ErrUpdateConflict = errors.New("session changed concurrently")
)

// UpdateFunc receives the stored session, or nil when there is none, and
// returns the session to store. Returning an error aborts the update.
type UpdateFunc func(current *models.AssessmentSession) (*models.AssessmentSession, error)

// SessionRepository stores one AssessmentSession per session id. Save
// replaces whatever was stored before. Update is a read-modify-write that no
// concurrent Save or Update on the same id can interleave with; fn may run
// more than once.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*models.AssessmentSession, error)
	Save(ctx context.Context, session *models.AssessmentSession) error
	Update(ctx context.Context, id string, fn UpdateFunc) (*models.AssessmentSession, error)
	Delete(ctx context.Context, id string) error
}

func decodeSession(id string, data []byte) (*models.AssessmentSession, error) {
	var session models.AssessmentSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &session, nil
}

func encodeSession(session *models.AssessmentSession) ([]byte, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}
	return data, nil
}

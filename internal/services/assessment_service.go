package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"fraud-assessment-service/internal/assets"
	"fraud-assessment-service/internal/classifier"
	"fraud-assessment-service/internal/metrics"
	"fraud-assessment-service/internal/models"
	"fraud-assessment-service/internal/repository"
	"fraud-assessment-service/internal/utils"

	"github.com/google/uuid"
)

// ModelCatalog is the read-only view of loaded assets the service needs.
// *assets.Store implements it.
type ModelCatalog interface {
	Variants() []string
	Classifier(name string) (classifier.Classifier, bool)
	Encoders() *assets.EncoderBundle
}

// Evaluation is the outcome of running one submission through the pipeline,
// a classifier and the risk engine.
type Evaluation struct {
	Model             string
	Submission        *models.RawSubmission
	Record            *models.DisplayRecord
	Vector            *models.FeatureVector
	Probability       float64
	PredictionWarning string
	Drivers           []models.RiskDriver
	Verdict           models.Verdict
}

// ApplyTo copies the evaluation into the session's analysis fields.
func (e *Evaluation) ApplyTo(s *models.AssessmentSession) {
	s.Model = e.Model
	s.Submission = e.Submission
	s.Record = e.Record
	s.Vector = e.Vector
	s.Probability = e.Probability
	s.PredictionWarning = e.PredictionWarning
	s.Drivers = e.Drivers
	s.Verdict = e.Verdict
}

type AssessmentService struct {
	catalog      ModelCatalog
	assetErr     error
	defaultModel string
	pipeline     *FeaturePipeline
	risk         *RiskEngine
	qa           *QAResponder
	sessions     repository.SessionRepository
	now          func() time.Time
}

// NewAssessmentService wires the service. When assetErr is set the catalog is
// ignored and every inference call fails with ErrAssetsUnavailable; sessions
// and Q&A keep working.
func NewAssessmentService(
	catalog ModelCatalog,
	assetErr error,
	sessions repository.SessionRepository,
	risk *RiskEngine,
	defaultModel string,
) *AssessmentService {
	s := &AssessmentService{
		assetErr:     assetErr,
		defaultModel: defaultModel,
		risk:         risk,
		qa:           NewQAResponder(),
		sessions:     sessions,
		now:          time.Now,
	}
	if assetErr == nil && catalog != nil {
		s.catalog = catalog
		s.pipeline = NewFeaturePipeline(catalog.Encoders())
	} else if assetErr == nil {
		s.assetErr = errors.New("no asset store configured")
	}
	return s
}

func NewSessionID() string {
	return uuid.NewString()
}

// ============================================================================
// MODELS
// ============================================================================

func (s *AssessmentService) AssetsAvailable() error {
	if s.assetErr != nil {
		return fmt.Errorf("%w: %w", ErrAssetsUnavailable, s.assetErr)
	}
	return nil
}

// Models lists the classifier variants and the one used when none is chosen.
func (s *AssessmentService) Models() models.ModelsResponse {
	if s.catalog == nil {
		return models.ModelsResponse{Models: []string{}, Default: s.defaultModel}
	}
	return models.ModelsResponse{Models: s.catalog.Variants(), Default: s.resolveDefault()}
}

func (s *AssessmentService) resolveDefault() string {
	if _, ok := s.catalog.Classifier(s.defaultModel); ok {
		return s.defaultModel
	}
	if v := s.catalog.Variants(); len(v) > 0 {
		return v[0]
	}
	return s.defaultModel
}

func (s *AssessmentService) classifierFor(name string) (string, classifier.Classifier, error) {
	if err := s.AssetsAvailable(); err != nil {
		return "", nil, err
	}
	if name == "" {
		name = s.resolveDefault()
	}
	c, ok := s.catalog.Classifier(name)
	if !ok {
		return "", nil, unknownModelError(name, s.catalog.Variants())
	}
	return name, c, nil
}

// ============================================================================
// EVALUATION
// ============================================================================

// Prepare converts an intake request into a validated RawSubmission.
func (s *AssessmentService) Prepare(req *models.AssessmentRequest) (*models.RawSubmission, error) {
	raw, err := req.ToRawSubmission()
	if err != nil {
		return nil, &ValidationFailedError{Fields: []utils.ValidationError{{Message: err.Error()}}}
	}
	utils.TrimStrings(raw)
	if errs := utils.ValidateStruct(raw); len(errs) > 0 {
		return nil, &ValidationFailedError{Fields: errs}
	}
	return raw, nil
}

// Evaluate scores one submission without touching any session.
func (s *AssessmentService) Evaluate(raw *models.RawSubmission, model string) (*Evaluation, error) {
	name, c, err := s.classifierFor(model)
	if err != nil {
		return nil, err
	}

	record, vector := s.pipeline.Build(raw)
	probability, warning := predict(c, vector)
	verdict, drivers := s.risk.Assess(probability, record)

	return &Evaluation{
		Model:             name,
		Submission:        raw,
		Record:            record,
		Vector:            vector,
		Probability:       probability,
		PredictionWarning: warning,
		Drivers:           drivers,
		Verdict:           verdict,
	}, nil
}

// predict never fails: errors, panics and out-of-range outputs all degrade to
// probability 0 with a warning for the page.
func predict(c classifier.Classifier, vector *models.FeatureVector) (probability float64, warning string) {
	fail := func(cause any) {
		probability = 0
		warning = fmt.Sprintf("Prediction Error: %v", cause)
		metrics.PredictionFailures.WithLabelValues(c.Name()).Inc()
		slog.Warn("prediction failed, using probability 0", "model", c.Name(), "error", cause)
	}
	defer func() {
		if r := recover(); r != nil {
			fail(r)
		}
	}()

	p, err := c.PredictProbability(vector)
	if err != nil {
		fail(err)
		return
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		fail(fmt.Sprintf("probability %v outside [0, 1]", p))
		return
	}
	return p, ""
}

// ============================================================================
// SESSION OPERATIONS
// ============================================================================

// Submit validates, scores and stores a new assessment. Any previous
// assessment and chat history in the session is replaced.
func (s *AssessmentService) Submit(ctx context.Context, sessionID string, req *models.AssessmentRequest) (*models.AssessmentSession, error) {
	if err := s.AssetsAvailable(); err != nil {
		return nil, err
	}
	raw, err := s.Prepare(req)
	if err != nil {
		return nil, err
	}
	eval, err := s.Evaluate(raw, req.Model)
	if err != nil {
		return nil, err
	}

	session := models.NewAssessmentSession(sessionID, s.now())
	eval.ApplyTo(session)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store assessment: %w", err)
	}

	metrics.AssessmentsTotal.WithLabelValues(string(eval.Verdict), eval.Model).Inc()
	slog.Info("claim assessed",
		"session_id", sessionID,
		"model", eval.Model,
		"probability", eval.Probability,
		"drivers", len(eval.Drivers),
		"verdict", eval.Verdict,
		"encoder_fallbacks", len(eval.Vector.Fallbacks))
	return session, nil
}

// Session returns the stored session, or ErrNoAssessment when there is none.
func (s *AssessmentService) Session(ctx context.Context, sessionID string) (*models.AssessmentSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrNoAssessment
		}
		return nil, err
	}
	return session, nil
}

// update applies fn to the stored session atomically. Errors returned by fn
// come back unwrapped.
func (s *AssessmentService) update(ctx context.Context, sessionID, op string, fn repository.UpdateFunc) (*models.AssessmentSession, error) {
	var fnErr error
	session, err := s.sessions.Update(ctx, sessionID, func(current *models.AssessmentSession) (*models.AssessmentSession, error) {
		next, err := fn(current)
		fnErr = err
		return next, err
	})
	if fnErr != nil {
		return nil, fnErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", op, err)
	}
	return session, nil
}

// Result re-scores the stored record with the chosen variant (the session's
// variant when model is empty) and recomputes drivers, so the page always
// reflects the current selection.
func (s *AssessmentService) Result(ctx context.Context, sessionID, model string) (*models.AssessmentSession, error) {
	changed := false
	session, err := s.update(ctx, sessionID, "assessment", func(session *models.AssessmentSession) (*models.AssessmentSession, error) {
		if !session.HasAssessment() {
			return nil, ErrNoAssessment
		}
		chosen := model
		if chosen == "" {
			chosen = session.Model
		}
		name, c, err := s.classifierFor(chosen)
		if err != nil {
			return nil, err
		}

		probability, warning := predict(c, session.Vector)
		verdict, drivers := s.risk.Assess(probability, session.Record)

		changed = name != session.Model || verdict != session.Verdict
		session.Model = name
		session.Probability = probability
		session.PredictionWarning = warning
		session.Drivers = drivers
		session.Verdict = verdict
		session.UpdatedAt = s.now()
		return session, nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		metrics.AssessmentsTotal.WithLabelValues(string(session.Verdict), session.Model).Inc()
	}
	return session, nil
}

// Ask answers a question about the session's claim and appends the exchange
// to the conversation.
func (s *AssessmentService) Ask(ctx context.Context, sessionID, question string) (string, *models.AssessmentSession, error) {
	question = strings.TrimSpace(question)
	if errs := utils.ValidateStruct(&models.QuestionRequest{Question: question}); len(errs) > 0 {
		return "", nil, &ValidationFailedError{Fields: errs}
	}

	var answer string
	session, err := s.update(ctx, sessionID, "conversation", func(session *models.AssessmentSession) (*models.AssessmentSession, error) {
		if session == nil {
			session = models.NewAssessmentSession(sessionID, s.now())
		}
		answer = s.qa.Respond(question, session.Record, session.Probability, session.Drivers)
		session.AppendExchange(question, answer)
		session.UpdatedAt = s.now()
		return session, nil
	})
	if err != nil {
		return "", nil, err
	}
	return answer, session, nil
}

// RecordReport remembers the latest generated report on the session.
func (s *AssessmentService) RecordReport(ctx context.Context, sessionID string, artifact *models.ReportArtifact) error {
	_, err := s.update(ctx, sessionID, "report", func(session *models.AssessmentSession) (*models.AssessmentSession, error) {
		if session == nil {
			return nil, ErrNoAssessment
		}
		session.LastReport = artifact
		session.UpdatedAt = s.now()
		return session, nil
	})
	return err
}

// Reset drops every piece of state held for the session.
func (s *AssessmentService) Reset(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}
	slog.Info("session reset", "session_id", sessionID)
	return nil
}

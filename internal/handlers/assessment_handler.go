package handlers

import (
	"log/slog"
	"net/http"

	"fraud-assessment-service/internal/models"
	"fraud-assessment-service/internal/services"
	"fraud-assessment-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type AssessmentHandler struct {
	assessments *services.AssessmentService
	reports     *services.ReportService
}

func NewAssessmentHandler(assessments *services.AssessmentService, reports *services.ReportService) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments, reports: reports}
}

func (h *AssessmentHandler) Register(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/models", h.ListModels)   // GET /api/v1/models
	api.Get("/options", h.FormOptions) // GET /api/v1/options

	assessments := api.Group("/assessments")
	assessments.Post("/", h.CreateAssessment)             // POST /api/v1/assessments
	assessments.Get("/current", h.GetCurrentAssessment)   // GET /api/v1/assessments/current?model=
	assessments.Post("/current/questions", h.AskQuestion) // POST /api/v1/assessments/current/questions
	assessments.Post("/current/report", h.GenerateReport) // POST /api/v1/assessments/current/report
	assessments.Delete("/current", h.ResetAssessment)     // DELETE /api/v1/assessments/current
}

// ============================================================================
// CATALOG
// ============================================================================

func (h *AssessmentHandler) ListModels(c fiber.Ctx) error {
	if err := h.assessments.AssetsAvailable(); err != nil {
		return writeServiceError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(h.assessments.Models()))
}

func (h *AssessmentHandler) FormOptions(c fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{
		"options":  models.FormOptions,
		"defaults": models.DefaultAssessmentRequest(),
	}))
}

// ============================================================================
// ASSESSMENT
// ============================================================================

func (h *AssessmentHandler) CreateAssessment(c fiber.Ctx) error {
	var req models.AssessmentRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Warn("failed to parse assessment request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse(utils.CodeInvalidRequest, "Invalid request body"))
	}

	session, err := h.assessments.Submit(c.Context(), sessionID(c), &req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(models.NewAssessmentResponse(session)))
}

func (h *AssessmentHandler) GetCurrentAssessment(c fiber.Ctx) error {
	session, err := h.assessments.Result(c.Context(), sessionID(c), c.Query("model"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(models.NewAssessmentResponse(session)))
}

func (h *AssessmentHandler) AskQuestion(c fiber.Ctx) error {
	var req models.QuestionRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse(utils.CodeInvalidRequest, "Invalid request body"))
	}

	answer, session, err := h.assessments.Ask(c.Context(), sessionID(c), req.Question)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(models.AnswerResponse{
		Question: req.Question,
		Answer:   answer,
		Messages: session.Messages,
	}))
}

func (h *AssessmentHandler) GenerateReport(c fiber.Ctx) error {
	artifact, err := generateReport(c, h.assessments, h.reports)
	if err != nil {
		if status, _ := statusFor(err); status == http.StatusInternalServerError {
			return c.Status(http.StatusInternalServerError).JSON(
				utils.CreateErrorResponse(utils.CodeReportFailed, "Failed to generate report"))
		}
		return writeServiceError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(artifact))
}

func (h *AssessmentHandler) ResetAssessment(c fiber.Ctx) error {
	if err := h.assessments.Reset(c.Context(), sessionID(c)); err != nil {
		return writeServiceError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"session_id": sessionID(c)}))
}

// generateReport renders the current session's report and remembers it on
// the session. Shared by the API and the page download.
func generateReport(c fiber.Ctx, assessments *services.AssessmentService, reports *services.ReportService) (*models.ReportArtifact, error) {
	ctx := c.Context()
	id := sessionID(c)

	session, err := assessments.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	artifact, err := reports.Generate(ctx, session)
	if err != nil {
		return nil, err
	}
	if err := assessments.RecordReport(ctx, id, artifact); err != nil {
		slog.Warn("failed to remember report on session", "session_id", id, "error", err)
	}
	return artifact, nil
}

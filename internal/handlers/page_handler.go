package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"fraud-assessment-service/internal/models"
	"fraud-assessment-service/internal/services"
	"fraud-assessment-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

//go:embed views/*.html
var viewsFS embed.FS

var pageFuncs = template.FuncMap{
	"percent": utils.FormatPercent,
	"title":   utils.TitleCase,
	"options": func(column string) []string { return models.FormOptions[column] },
	"isUser":  func(r models.ChatRole) bool { return r == models.ChatRoleUser },
}

// resultColumns are shown in the claim summary on the result page.
var resultColumns = []string{
	"policy_state",
	"policy_annual_premium",
	"policy_deductable",
	"months_as_customer",
	"days_since_policy_bind",
	"incident_date",
	"incident_type",
	"collision_type",
	"incident_severity",
	"authorities_contacted",
	"incident_state",
	"incident_city",
	"witnesses",
	"police_report_available",
	"total_claim_amount",
	"injury_claim",
	"property_claim",
	"vehicle_claim",
	"auto_make",
	"auto_model",
	"auto_year",
}

type detailRow struct {
	Label string
	Value string
}

type pageData struct {
	Title       string
	AssetsError string
	Message     string

	Form    models.AssessmentRequest
	Errors  []utils.ValidationError
	Models  models.ModelsResponse
	Result  *models.AssessmentResponse
	Details []detailRow
	Report  *models.ReportArtifact
}

// PageHandler serves the browser flow: home, intake form, result with chat,
// and the report download.
type PageHandler struct {
	assessments *services.AssessmentService
	reports     *services.ReportService
	pages       map[string]*template.Template
}

func NewPageHandler(assessments *services.AssessmentService, reports *services.ReportService) (*PageHandler, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"home.html", "assess.html", "result.html", "error.html"} {
		tmpl, err := template.New(name).Funcs(pageFuncs).ParseFS(viewsFS, "views/layout.html", "views/"+name)
		if err != nil {
			return nil, err
		}
		pages[name] = tmpl
	}
	return &PageHandler{assessments: assessments, reports: reports, pages: pages}, nil
}

func (h *PageHandler) Register(app *fiber.App) {
	app.Get("/", h.Home)                     // GET /
	app.Get("/assess", h.AssessForm)         // GET /assess
	app.Post("/assess", h.SubmitAssessment)  // POST /assess
	app.Get("/result", h.Result)             // GET /result?model=
	app.Post("/result/ask", h.Ask)           // POST /result/ask
	app.Get("/result/report", h.DownloadPDF) // GET /result/report
	app.Post("/new", h.NewAssessment)        // POST /new
}

func (h *PageHandler) render(c fiber.Ctx, status int, page string, data *pageData) error {
	if err := h.assessments.AssetsAvailable(); err != nil && data.AssetsError == "" {
		data.AssetsError = err.Error()
	}

	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render page", "page", page, "error", err)
		return c.Status(http.StatusInternalServerError).SendString("Internal server error")
	}
	c.Type("html")
	return c.Status(status).Send(buf.Bytes())
}

func (h *PageHandler) renderError(c fiber.Ctx, err error) error {
	status, _ := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("page request failed", "path", c.Path(), "session_id", sessionID(c), "error", err)
		message = "Something went wrong while processing the claim."
	}
	return h.render(c, status, "error.html", &pageData{Title: "Error", Message: message})
}

// ============================================================================
// PAGES
// ============================================================================

func (h *PageHandler) Home(c fiber.Ctx) error {
	return h.render(c, http.StatusOK, "home.html", &pageData{Title: "Fraud Risk Assessment"})
}

func (h *PageHandler) AssessForm(c fiber.Ctx) error {
	return h.render(c, http.StatusOK, "assess.html", &pageData{
		Title:  "New Claim Assessment",
		Form:   models.DefaultAssessmentRequest(),
		Models: h.assessments.Models(),
	})
}

func (h *PageHandler) SubmitAssessment(c fiber.Ctx) error {
	req := models.DefaultAssessmentRequest()
	if err := c.Bind().Form(&req); err != nil {
		slog.Warn("failed to parse assessment form", "error", err)
		return h.render(c, http.StatusBadRequest, "assess.html", &pageData{
			Title:  "New Claim Assessment",
			Form:   req,
			Models: h.assessments.Models(),
			Errors: []utils.ValidationError{{Message: "The form could not be read: " + err.Error()}},
		})
	}

	_, err := h.assessments.Submit(c.Context(), sessionID(c), &req)
	var verr *services.ValidationFailedError
	switch {
	case errors.As(err, &verr), errors.Is(err, services.ErrUnknownModel):
		data := &pageData{Title: "New Claim Assessment", Form: req, Models: h.assessments.Models()}
		if verr != nil {
			data.Errors = verr.Fields
		} else {
			data.Errors = []utils.ValidationError{{Field: "model", Message: err.Error()}}
		}
		return h.render(c, http.StatusBadRequest, "assess.html", data)
	case err != nil:
		return h.renderError(c, err)
	}
	return c.Redirect().To("/result")
}

func (h *PageHandler) Result(c fiber.Ctx) error {
	session, err := h.assessments.Result(c.Context(), sessionID(c), c.Query("model"))
	if errors.Is(err, services.ErrNoAssessment) {
		return c.Redirect().To("/assess")
	}
	if err != nil {
		return h.renderError(c, err)
	}

	resp := models.NewAssessmentResponse(session)
	return h.render(c, http.StatusOK, "result.html", &pageData{
		Title:   "Risk Assessment Results",
		Models:  h.assessments.Models(),
		Result:  &resp,
		Details: detailRows(session.Record),
		Report:  session.LastReport,
	})
}

func (h *PageHandler) Ask(c fiber.Ctx) error {
	_, _, err := h.assessments.Ask(c.Context(), sessionID(c), c.FormValue("question"))
	var verr *services.ValidationFailedError
	if err != nil && !errors.As(err, &verr) {
		return h.renderError(c, err)
	}
	return c.Redirect().To("/result")
}

func (h *PageHandler) DownloadPDF(c fiber.Ctx) error {
	artifact, err := generateReport(c, h.assessments, h.reports)
	if errors.Is(err, services.ErrNoAssessment) {
		return c.Redirect().To("/assess")
	}
	if err != nil {
		slog.Error("report download failed", "session_id", sessionID(c), "error", err)
		return h.render(c, http.StatusInternalServerError, "error.html", &pageData{
			Title:   "Error",
			Message: "Report generation failed. Please try again.",
		})
	}
	return c.Download(artifact.Path, artifact.FileName)
}

func (h *PageHandler) NewAssessment(c fiber.Ctx) error {
	if err := h.assessments.Reset(c.Context(), sessionID(c)); err != nil {
		return h.renderError(c, err)
	}
	return c.Redirect().To("/assess")
}

func detailRows(record *models.DisplayRecord) []detailRow {
	rows := make([]detailRow, 0, len(resultColumns))
	for _, column := range resultColumns {
		value, ok := record.Lookup(column)
		if !ok {
			continue
		}
		rows = append(rows, detailRow{
			Label: utils.TitleCase(column),
			Value: services.FormatColumnValue(column, value),
		})
	}
	return rows
}

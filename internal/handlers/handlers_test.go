package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"fraud-assessment-service/internal/assets"
	"fraud-assessment-service/internal/config"
	"fraud-assessment-service/internal/models"
	"fraud-assessment-service/internal/repository"
	"fraud-assessment-service/internal/services"
	"fraud-assessment-service/internal/utils"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fixtureDir    = "../assets/testdata/models"
	testSessionID = "6f1c2a9e-3b7d-4c58-9a0e-2d4f6b8c1e37"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

type fakeRenderer struct{}

func (fakeRenderer) Render(_ []services.ReportPage, w io.Writer) error {
	_, err := w.Write([]byte("%PDF-fake"))
	return err
}

type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   utils.APIError `json:"error"`
}

func newTestApp(t *testing.T, assetErr error) *fiber.App {
	t.Helper()
	store, err := assets.Load(context.Background(), fixtureDir, assets.DefaultModelFiles)
	require.NoError(t, err)

	svc := services.NewAssessmentService(
		store,
		assetErr,
		repository.NewMemorySessionRepository(time.Hour),
		services.NewRiskEngine(config.DefaultRiskConfig()),
		assets.DefaultModelFiles[0].Name,
	)
	reports := services.NewReportService(t.TempDir(), fakeRenderer{}, nil)

	app := fiber.New(fiber.Config{JSONEncoder: json.Marshal, JSONDecoder: json.Unmarshal})
	app.Use(SessionMiddleware(time.Hour))
	NewAssessmentHandler(svc, reports).Register(app)
	pages, err := NewPageHandler(svc, reports)
	require.NoError(t, err)
	pages.Register(app)
	return app
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	req.Header.Set(SessionHeader, testSessionID)
	resp, err := app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return doRequest(t, app, req)
}

func doForm(t *testing.T, app *fiber.App, path string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return doRequest(t, app, req)
}

func decode[T any](t *testing.T, resp *http.Response) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func highRiskRequest() models.AssessmentRequest {
	req := models.DefaultAssessmentRequest()
	req.IncidentSeverity = models.SeverityMajorDamage
	req.PolicyBindDate = "2021-01-01"
	req.IncidentDate = "2021-01-15"
	return req
}

func defaultForm() url.Values {
	req := models.DefaultAssessmentRequest()
	return url.Values{
		"months_as_customer":      {"12"},
		"age":                     {"35"},
		"policy_state":            {req.PolicyState},
		"policy_bind_date":        {req.PolicyBindDate},
		"policy_annual_premium":   {"1000"},
		"policy_deductable":       {"1000"},
		"incident_date":           {req.IncidentDate},
		"incident_type":           {req.IncidentType},
		"collision_type":          {req.CollisionType},
		"incident_severity":       {req.IncidentSeverity},
		"authorities_contacted":   {req.AuthoritiesContacted},
		"incident_state":          {req.IncidentState},
		"incident_city":           {req.IncidentCity},
		"total_claim_amount":      {"50000"},
		"injury_claim":            {"5000"},
		"property_claim":          {"5000"},
		"vehicle_claim":           {"40000"},
		"auto_make":               {req.AutoMake},
		"auto_model":              {req.AutoModel},
		"auto_year":               {"2010"},
		"witnesses":               {"0"},
		"police_report_available": {req.PoliceReportAvailable},
		"property_damage":         {req.PropertyDamage},
	}
}

// ============================================================================
// TEST SUITE 1: SESSION MIDDLEWARE
// ============================================================================

func TestSessionMiddleware_IssuesCookieForNewVisitor(t *testing.T) {
	app := newTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	id := resp.Header.Get(SessionHeader)
	_, err = uuid.Parse(id)
	require.NoError(t, err)
	assert.Contains(t, resp.Header.Get("Set-Cookie"), SessionCookie+"="+id)
}

func TestSessionMiddleware_ReusesKnownSession(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: testSessionID})
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, testSessionID, resp.Header.Get(SessionHeader))
	assert.Empty(t, resp.Header.Get("Set-Cookie"))
}

func TestSessionMiddleware_ReplacesMalformedID(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "../../etc/passwd")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	id := resp.Header.Get(SessionHeader)
	assert.NotEqual(t, "../../etc/passwd", id)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
}

// ============================================================================
// TEST SUITE 2: JSON API
// ============================================================================

func TestAPI_CreateAndFetchAssessment(t *testing.T) {
	app := newTestApp(t, nil)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/assessments", models.DefaultAssessmentRequest())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[models.AssessmentResponse](t, resp)
	assert.True(t, created.Success)
	assert.Equal(t, testSessionID, created.Data.SessionID)
	assert.Equal(t, models.VerdictLowMedium, created.Data.Verdict)
	assert.Equal(t, "LOW-MODERATE RISK", created.Data.RiskLabel)
	require.Len(t, created.Data.Drivers, 1)
	assert.Equal(t, models.DriverSingleVehicleIncident, created.Data.Drivers[0].Code)
	assert.Len(t, created.Data.Messages, 1)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/assessments/current", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	current := decode[models.AssessmentResponse](t, resp)
	assert.Equal(t, created.Data.Probability, current.Data.Probability)
	assert.Equal(t, created.Data.Model, current.Data.Model)
}

func TestAPI_HighRiskClaim(t *testing.T) {
	app := newTestApp(t, nil)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/assessments", highRiskRequest())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[models.AssessmentResponse](t, resp)
	assert.Equal(t, models.VerdictHigh, created.Data.Verdict)
	assert.Len(t, created.Data.Drivers, 3)
}

func TestAPI_SwitchModel(t *testing.T) {
	app := newTestApp(t, nil)
	doJSON(t, app, http.MethodPost, "/api/v1/assessments", models.DefaultAssessmentRequest())

	resp := doJSON(t, app, http.MethodGet, "/api/v1/assessments/current?model="+url.QueryEscape("Random Forest"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Random Forest", decode[models.AssessmentResponse](t, resp).Data.Model)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/assessments/current?model=Bogus", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_MODEL", decode[any](t, resp).Error.Code)
}

func TestAPI_Errors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "no assessment yet",
			method:     http.MethodGet,
			path:       "/api/v1/assessments/current",
			wantStatus: http.StatusNotFound,
			wantCode:   "NO_ASSESSMENT",
		},
		{
			name:   "validation failure",
			method: http.MethodPost,
			path:   "/api/v1/assessments",
			body: func() models.AssessmentRequest {
				req := models.DefaultAssessmentRequest()
				req.Age = 16
				return req
			}(),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:   "unknown model",
			method: http.MethodPost,
			path:   "/api/v1/assessments",
			body: func() models.AssessmentRequest {
				req := models.DefaultAssessmentRequest()
				req.Model = "Bogus"
				return req
			}(),
			wantStatus: http.StatusBadRequest,
			wantCode:   "UNKNOWN_MODEL",
		},
		{
			name:       "report without assessment",
			method:     http.MethodPost,
			path:       "/api/v1/assessments/current/report",
			wantStatus: http.StatusNotFound,
			wantCode:   "NO_ASSESSMENT",
		},
		{
			name:       "empty question",
			method:     http.MethodPost,
			path:       "/api/v1/assessments/current/questions",
			body:       models.QuestionRequest{Question: "   "},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, nil)
			resp := doJSON(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			env := decode[any](t, resp)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestAPI_MalformedBody(t *testing.T) {
	app := newTestApp(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	resp := doRequest(t, app, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", decode[any](t, resp).Error.Code)
}

func TestAPI_AskQuestion(t *testing.T) {
	app := newTestApp(t, nil)
	doJSON(t, app, http.MethodPost, "/api/v1/assessments", models.DefaultAssessmentRequest())

	resp := doJSON(t, app, http.MethodPost, "/api/v1/assessments/current/questions",
		models.QuestionRequest{Question: "What is the deductible?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	answer := decode[models.AnswerResponse](t, resp)
	assert.Equal(t, "The Deductible for this claim is $1,000.00.", answer.Data.Answer)
	assert.Len(t, answer.Data.Messages, 3)
}

func TestAPI_AskWithoutAssessment(t *testing.T) {
	app := newTestApp(t, nil)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/assessments/current/questions",
		models.QuestionRequest{Question: "What is the premium?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, services.NoRecordAnswer, decode[models.AnswerResponse](t, resp).Data.Answer)
}

func TestAPI_GenerateReport(t *testing.T) {
	app := newTestApp(t, nil)
	doJSON(t, app, http.MethodPost, "/api/v1/assessments", models.DefaultAssessmentRequest())

	resp := doJSON(t, app, http.MethodPost, "/api/v1/assessments/current/report", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	raw := body(t, resp)
	assert.NotContains(t, raw, `"path"`, "server paths stay private")

	var artifact envelope[models.ReportArtifact]
	require.NoError(t, json.Unmarshal([]byte(raw), &artifact))
	assert.True(t, strings.HasPrefix(artifact.Data.ReportID, "FR-"))
	assert.True(t, strings.HasPrefix(artifact.Data.FileName, "fraud_assessment_"))
	assert.Empty(t, artifact.Data.Path)
}

func TestAPI_ResetAssessment(t *testing.T) {
	app := newTestApp(t, nil)
	doJSON(t, app, http.MethodPost, "/api/v1/assessments", models.DefaultAssessmentRequest())

	resp := doJSON(t, app, http.MethodDelete, "/api/v1/assessments/current", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/assessments/current", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ModelsAndOptions(t *testing.T) {
	app := newTestApp(t, nil)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/models", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[models.ModelsResponse](t, resp).Data
	assert.Equal(t, []string{"XGBoost (Best Performance)", "Random Forest", "Logistic Regression"}, list.Models)
	assert.Equal(t, "XGBoost (Best Performance)", list.Default)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/options", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	opts := decode[struct {
		Options  map[string][]string      `json:"options"`
		Defaults models.AssessmentRequest `json:"defaults"`
	}](t, resp).Data
	assert.Equal(t, models.FormOptions, opts.Options)
	assert.Equal(t, "Springfield", opts.Defaults.IncidentCity)
}

func TestAPI_AssetsUnavailable(t *testing.T) {
	app := newTestApp(t, errors.New("xgboost.json: file not found"))

	resp := doJSON(t, app, http.MethodGet, "/api/v1/models", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "ASSETS_UNAVAILABLE", decode[any](t, resp).Error.Code)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/assessments", models.DefaultAssessmentRequest())
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/assessments/current/questions",
		models.QuestionRequest{Question: "help"})
	assert.Equal(t, http.StatusOK, resp.StatusCode, "Q&A keeps working without assets")
}

// ============================================================================
// TEST SUITE 3: PAGES
// ============================================================================

func TestPages_HomeAndForm(t *testing.T) {
	app := newTestApp(t, nil)

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body(t, resp), "Get Started")

	resp = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/assess", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := body(t, resp)
	assert.Contains(t, html, `value="Springfield"`)
	assert.Contains(t, html, "<option selected>XGBoost (Best Performance)</option>")
	assert.Contains(t, html, "<option selected>Single Vehicle Collision</option>")
}

func TestPages_SubmitThenResult(t *testing.T) {
	app := newTestApp(t, nil)

	resp := doForm(t, app, "/assess", defaultForm())
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/result", resp.Header.Get("Location"))

	resp = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/result", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := body(t, resp)
	assert.Contains(t, html, "LOW-MODERATE RISK")
	assert.Contains(t, html, "Single Vehicle Incident Category")
	assert.Contains(t, html, "$50,000.00")
	assert.Contains(t, html, "I&#39;ve analyzed the claim")
}

func TestPages_SubmitValidationError(t *testing.T) {
	app := newTestApp(t, nil)
	form := defaultForm()
	form.Set("age", "16")
	form.Set("incident_city", "Shelbyville")

	resp := doForm(t, app, "/assess", form)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	html := body(t, resp)
	assert.Contains(t, html, "Please correct the following")
	assert.Contains(t, html, "age")
	assert.Contains(t, html, `value="Shelbyville"`, "entered values are kept")
}

func TestPages_SubmitNonFiniteNumber(t *testing.T) {
	app := newTestApp(t, nil)
	form := defaultForm()
	form.Set("total_claim_amount", "Inf")
	form.Set("capital-loss", "NaN")

	resp := doForm(t, app, "/assess", form)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	html := body(t, resp)
	assert.Contains(t, html, "total_claim_amount must be a finite number")
	assert.Contains(t, html, "capital-loss must be a finite number")
}

func TestPages_ResultWithoutAssessmentRedirects(t *testing.T) {
	app := newTestApp(t, nil)

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/result", nil))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/assess", resp.Header.Get("Location"))
}

func TestPages_AskAppearsInChat(t *testing.T) {
	app := newTestApp(t, nil)
	doForm(t, app, "/assess", defaultForm())

	resp := doForm(t, app, "/result/ask", url.Values{"question": {"What is the deductible?"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/result", nil))
	html := body(t, resp)
	assert.Contains(t, html, "What is the deductible?")
	assert.Contains(t, html, "The Deductible for this claim is $1,000.00.")
}

func TestPages_DownloadReport(t *testing.T) {
	app := newTestApp(t, nil)
	doForm(t, app, "/assess", defaultForm())

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/result/report", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	disposition := resp.Header.Get("Content-Disposition")
	assert.Contains(t, disposition, "attachment")
	assert.Contains(t, disposition, "fraud_assessment_")
	assert.Equal(t, "%PDF-fake", body(t, resp))
}

func TestPages_NewAssessmentClearsSession(t *testing.T) {
	app := newTestApp(t, nil)
	doForm(t, app, "/assess", defaultForm())

	resp := doForm(t, app, "/new", url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/assess", resp.Header.Get("Location"))

	resp = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/result", nil))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestPages_AssetsUnavailableBanner(t *testing.T) {
	app := newTestApp(t, errors.New("label_encoders.json: corrupt"))

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Model assets are unavailable")

	resp = doForm(t, app, "/assess", defaultForm())
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{&services.ValidationFailedError{}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{services.ErrUnknownModel, http.StatusBadRequest, "UNKNOWN_MODEL"},
		{services.ErrNoAssessment, http.StatusNotFound, "NO_ASSESSMENT"},
		{services.ErrAssetsUnavailable, http.StatusServiceUnavailable, "ASSETS_UNAVAILABLE"},
		{errors.New("disk full"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		status, code := statusFor(tt.err)
		assert.Equal(t, tt.wantStatus, status, tt.wantCode)
		assert.Equal(t, tt.wantCode, code)
	}
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fraud-assessment-service/internal/metrics"
	"fraud-assessment-service/internal/models"
	"fraud-assessment-service/internal/utils"
)

const (
	companyName     = "ACME Insurance Group"
	companyDivision = "Fraud Prevention & Risk Assessment Division"
	companyAddress  = "123 Insurance Plaza, Claims City, IC 12345 | Phone: (555) 123-4567"
	reportTitle     = "Insurance Claim Fraud Risk Assessment Report"
	analystName     = "AI Fraud Detection System v2.1"
	confidentiality = "This report is confidential and intended for authorized personnel only."
	disclaimer      = "DISCLAIMER: This assessment is generated by automated systems and should be used " +
		"as a guide for human review. Final decisions regarding claim validity remain the " +
		"responsibility of qualified claims adjusters and management. This report does not " +
		"constitute legal advice."
)

var recommendations = map[models.Verdict][]string{
	models.VerdictHigh: {
		"Immediate escalation to Special Investigations Unit (SIU)",
		"Request independent verification of incident location and timing",
		"Obtain detailed witness statements and contact information",
		"Cross-reference with telematics data if available",
		"Conduct comprehensive background check on claimant",
	},
	models.VerdictMedium: {
		"Perform enhanced desk review with additional documentation requests",
		"Verify police report details directly with law enforcement",
		"Request medical records to corroborate injury claims",
		"Check for consistency in claim narrative across all statements",
		"Consider surveillance if claim value justifies cost",
	},
}

var standardRecommendations = []string{
	"Proceed with standard claims processing procedures",
	"Monitor claim for any unusual payment patterns",
	"File report for future reference in fraud pattern analysis",
}

// Recommendations lists the investigation steps for a verdict.
func Recommendations(v models.Verdict) []string {
	if r, ok := recommendations[v]; ok {
		return r
	}
	return standardRecommendations
}

type detailSection struct {
	title   string
	columns []string
}

var claimDetailSections = []detailSection{
	{"Policy Information:", []string{"policy_state", "policy_annual_premium", "policy_deductable", "months_as_customer"}},
	{"Incident Details:", []string{"incident_type", "collision_type", "incident_severity", "incident_state", "incident_city", "authorities_contacted"}},
	{"Financial Information:", []string{"total_claim_amount", "injury_claim", "property_claim", "vehicle_claim"}},
	{"Vehicle Information:", []string{"auto_make", "auto_model", "auto_year"}},
}

var moneyColumns = map[string]bool{
	"policy_annual_premium": true,
	"policy_deductable":     true,
	"umbrella_limit":        true,
	"capital-gains":         true,
	"capital-loss":          true,
	"total_claim_amount":    true,
	"injury_claim":          true,
	"property_claim":        true,
	"vehicle_claim":         true,
}

// ReportArchiver stores a finished report somewhere durable and returns a
// link to it.
type ReportArchiver interface {
	ArchiveReport(ctx context.Context, objectName, filePath string) (string, error)
}

type ReportService struct {
	dir      string
	renderer Renderer
	archiver ReportArchiver
	now      func() time.Time
}

// NewReportService writes reports under dir. archiver may be nil.
func NewReportService(dir string, renderer Renderer, archiver ReportArchiver) *ReportService {
	return &ReportService{dir: dir, renderer: renderer, archiver: archiver, now: time.Now}
}

// Generate renders the session's assessment to a PDF file. The file appears
// under its final name only once completely written.
func (s *ReportService) Generate(ctx context.Context, session *models.AssessmentSession) (*models.ReportArtifact, error) {
	if !session.HasAssessment() {
		return nil, ErrNoAssessment
	}
	now := s.now()
	artifact := &models.ReportArtifact{
		ReportID:    "FR-" + now.Format("20060102150405"),
		FileName:    reportFileName(now, session.ID),
		GeneratedAt: now,
	}
	artifact.Path = filepath.Join(s.dir, artifact.FileName)

	pages := paginate(reportHeader(), reportBody(session, artifact.ReportID, now), reportFooter(now))
	if err := s.writeAtomic(artifact.Path, pages); err != nil {
		metrics.ReportsGenerated.WithLabelValues("failed").Inc()
		slog.Error("report generation failed", "session_id", session.ID, "path", artifact.Path, "error", err)
		return nil, err
	}
	metrics.ReportsGenerated.WithLabelValues("success").Inc()
	slog.Info("report generated",
		"session_id", session.ID,
		"report_id", artifact.ReportID,
		"path", artifact.Path,
		"pages", len(pages))

	if s.archiver != nil {
		url, err := s.archiver.ArchiveReport(ctx, artifact.FileName, artifact.Path)
		if err != nil {
			slog.Warn("report archive upload failed", "report_id", artifact.ReportID, "error", err)
		} else {
			artifact.ArchiveURL = url
		}
	}
	return artifact, nil
}

// reportFileName is unique per session within a second, so concurrent
// sessions never replace each other's file.
func reportFileName(now time.Time, sessionID string) string {
	var suffix strings.Builder
	for _, r := range sessionID {
		if suffix.Len() == 8 {
			break
		}
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			suffix.WriteRune(r)
		}
	}
	if suffix.Len() == 0 {
		return fmt.Sprintf("fraud_assessment_%s.pdf", now.Format("20060102_150405"))
	}
	return fmt.Sprintf("fraud_assessment_%s_%s.pdf", now.Format("20060102_150405"), suffix.String())
}

func (s *ReportService) writeAtomic(path string, pages []ReportPage) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".fraud_assessment_*.pdf.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := s.renderer.Render(pages, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to finalize report: %w", err)
	}
	return nil
}

// ============================================================================
// CONTENT
// ============================================================================

func reportHeader() []ReportLine {
	return []ReportLine{
		{Text: companyName, Style: styleLetterhead},
		{Text: companyDivision, Style: styleLetterSub},
		{Text: companyAddress, Style: styleLetterSub},
		{Text: reportTitle, Style: styleTitle, SpaceBefore: 18},
		{Text: "", Style: styleBody},
	}
}

func reportFooter(now time.Time) func(page int) []ReportLine {
	generated := now.Format("2006-01-02 15:04:05")
	return func(page int) []ReportLine {
		return []ReportLine{
			{Text: confidentiality, Style: styleFooter},
			{Text: "Generated on " + generated + " | Page " + strconv.Itoa(page), Style: styleFooter},
		}
	}
}

func reportBody(s *models.AssessmentSession, reportID string, now time.Time) []ReportLine {
	var lines []ReportLine
	add := func(l ReportLine) { lines = append(lines, l) }
	heading := func(text string) { add(ReportLine{Text: text, Style: styleHeading, SpaceBefore: 14}) }

	add(ReportLine{Text: "Report ID: " + reportID, Style: styleBody})
	add(ReportLine{Text: "Assessment Date: " + now.Format("January 02, 2006"), Style: styleBody})
	add(ReportLine{Text: "Analyst: " + analystName, Style: styleBody})

	label := s.Verdict.Label()
	verdictStyle := styleBody
	verdictStyle.Color = s.Verdict.Color()

	heading("EXECUTIVE SUMMARY")
	add(ReportLine{Text: "Fraud Risk Level: " + string(s.Verdict), Style: verdictStyle})
	add(ReportLine{Text: "Risk Classification: " + label, Style: verdictStyle})
	add(ReportLine{Text: summarySentence(s.Verdict), Style: styleBody, SpaceBefore: 4})

	heading("CLAIM DETAILS")
	for i, section := range claimDetailSections {
		space := 6.0
		if i == 0 {
			space = 0
		}
		add(ReportLine{Text: section.title, Style: styleSubheading, SpaceBefore: space})
		for _, column := range section.columns {
			value, ok := s.Record.Lookup(column)
			if !ok {
				continue
			}
			add(ReportLine{
				Text:   utils.TitleCase(column) + ": " + FormatColumnValue(column, value),
				Style:  styleDetail,
				Indent: 10,
			})
		}
	}

	heading("AI RISK ANALYSIS")
	add(ReportLine{Text: "Assessment Method: AI-Powered Risk Analysis System", Style: styleBody})
	add(ReportLine{Text: "Analysis combines machine learning predictions with rule-based heuristics", Style: styleBody})
	add(ReportLine{Text: "Classifier: " + s.Model + " | Fraud Probability: " + utils.FormatPercent(s.Probability), Style: styleBody})
	if s.PredictionWarning != "" {
		add(ReportLine{Text: s.PredictionWarning, Style: styleFine})
	}
	add(ReportLine{Text: "Identified Risk Factors:", Style: styleSubheading, SpaceBefore: 6})
	if len(s.Drivers) == 0 {
		add(ReportLine{Text: "No significant heuristic risk factors identified.", Style: styleDetail, Indent: 10})
	}
	for i, d := range s.Drivers {
		add(ReportLine{Text: fmt.Sprintf("%d. %s", i+1, d.Description), Style: styleDetail, Indent: 10})
	}

	heading("INVESTIGATION RECOMMENDATIONS")
	for _, r := range Recommendations(s.Verdict) {
		add(ReportLine{Text: "- " + r, Style: styleBody})
	}

	add(ReportLine{Text: disclaimer, Style: styleFine, SpaceBefore: 16})
	return lines
}

func summarySentence(v models.Verdict) string {
	text := "This automated assessment indicates a " + strings.ToLower(v.Label()) +
		" level of fraud suspicion for the submitted claim. "
	switch v {
	case models.VerdictHigh:
		return text + "Immediate investigation is recommended."
	case models.VerdictMedium:
		return text + "Enhanced review procedures should be applied."
	default:
		return text + "Standard processing may proceed."
	}
}

// FormatColumnValue renders a record value for display, with money columns
// as dollars.
func FormatColumnValue(column string, value any) string {
	if f, ok := value.(float64); ok && moneyColumns[column] {
		return utils.FormatCurrency(f)
	}
	return utils.FormatValue(value)
}

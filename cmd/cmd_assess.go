package main

import (
	"fmt"
	"os"

	"fraud-assessment-service/internal/models"
	"fraud-assessment-service/internal/repository"
	"fraud-assessment-service/internal/services"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var assessFlags struct {
	input  string
	model  string
	report bool
}

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess one claim from a JSON file and print the result",
	Long: `Reads an intake request (the same JSON body POST /api/v1/assessments accepts),
scores it and prints the verdict as JSON. Fields missing from the file take the
intake form defaults. With --report a PDF report is written to REPORTS_DIR.`,
	RunE: runAssess,
}

func init() {
	f := assessCmd.Flags()
	f.StringVarP(&assessFlags.input, "input", "i", "", "Path to the claim JSON file (required)")
	f.StringVar(&assessFlags.model, "model", "", "Classifier variant (default: DEFAULT_MODEL)")
	f.BoolVar(&assessFlags.report, "report", false, "Also generate the PDF report")

	_ = assessCmd.MarkFlagRequired("input")
}

type assessOutput struct {
	models.AssessmentResponse
	Report     *models.ReportArtifact `json:"report,omitempty"`
	ReportPath string                 `json:"report_path,omitempty"`
}

func runAssess(cmd *cobra.Command, _ []string) error {
	logFile, err := setupLogging(cfg, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logFile.Close()

	data, err := os.ReadFile(assessFlags.input)
	if err != nil {
		return fmt.Errorf("read claim: %w", err)
	}
	req := models.DefaultAssessmentRequest()
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse claim %s: %w", assessFlags.input, err)
	}
	if assessFlags.model != "" {
		req.Model = assessFlags.model
	}

	ctx := cmd.Context()
	store, err := loadAssets(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%w: %w", services.ErrAssetsUnavailable, err)
	}
	svc := newAssessmentService(cfg, store, nil, repository.NewMemorySessionRepository(cfg.SessionCfg.TTL))

	session, err := svc.Submit(ctx, services.NewSessionID(), &req)
	if err != nil {
		return err
	}
	out := assessOutput{AssessmentResponse: models.NewAssessmentResponse(session)}

	if assessFlags.report {
		reports := services.NewReportService(cfg.ReportCfg.ReportsDir, services.NewPDFRenderer(), newReportArchiver(cfg))
		if out.Report, err = reports.Generate(ctx, session); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
		out.ReportPath = out.Report.Path
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

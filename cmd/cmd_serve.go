package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fraud-assessment-service/internal/handlers"
	"fraud-assessment-service/internal/metrics"
	"fraud-assessment-service/internal/services"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP service (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	logFile, err := setupLogging(cfg, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, assetErr := loadAssets(ctx, cfg)
	if assetErr != nil {
		slog.Error("model assets unavailable, inference disabled", "dir", cfg.AssetCfg.ModelDir, "error", assetErr)
	}

	sessions, closeSessions, err := newSessionRepository(cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	archiver := newReportArchiver(cfg)

	assessmentService := newAssessmentService(cfg, store, assetErr, sessions)
	reportService := services.NewReportService(cfg.ReportCfg.ReportsDir, services.NewPDFRenderer(), archiver)

	app := fiber.New(fiber.Config{
		AppName:     "fraud-assessment-service",
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	app.Use(metrics.Middleware())

	app.Get("/checkhealth", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Fraud assessment service is healthy")
	})
	app.Get("/metrics", metrics.Handler())

	app.Use(handlers.SessionMiddleware(cfg.SessionCfg.TTL))

	assessmentHandler := handlers.NewAssessmentHandler(assessmentService, reportService)
	assessmentHandler.Register(app)

	pageHandler, err := handlers.NewPageHandler(assessmentService, reportService)
	if err != nil {
		return fmt.Errorf("failed to load page templates: %w", err)
	}
	pageHandler.Register(app)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "port", cfg.Port)
		errCh <- app.Listen(fmt.Sprintf("0.0.0.0:%s", cfg.Port), fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("error starting server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

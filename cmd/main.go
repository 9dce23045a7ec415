package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fraud-assessment-service/internal/config"

	"github.com/spf13/cobra"
)

var cfg *config.ServiceConfig

var rootCmd = &cobra.Command{
	Use:   "fraud-assessment",
	Short: "Fraud risk assessment for auto insurance claims",
	Long: "Scores insurance claims with trained classifiers and rule-based risk drivers,\n" +
		"answers questions about a claim and produces PDF assessment reports.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg = config.New()
		return cfg.Validate()
	},
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(verifyAssetsCmd)
}

// setupLogging sends slog output to console and to a dated file under LOG_DIR.
func setupLogging(cfg *config.ServiceConfig, console io.Writer) (*os.File, error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
		}
	}()

	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logFileName := fmt.Sprintf("log_%s.log", time.Now().Format("2006-01-02"))
	logFile := filepath.Join(cfg.LogDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "Unknown LOG_LEVEL %q, using info\n", cfg.LogLevel)
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(io.MultiWriter(console, file), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return file, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

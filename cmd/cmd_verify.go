package main

import (
	"fmt"
	"os"

	"fraud-assessment-service/internal/assets"

	"github.com/spf13/cobra"
)

var verifyAssetsCmd = &cobra.Command{
	Use:   "verify-assets",
	Short: "Check that every classifier artifact and the encoder bundle load",
	RunE:  runVerifyAssets,
}

func runVerifyAssets(cmd *cobra.Command, _ []string) error {
	logFile, err := setupLogging(cfg, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logFile.Close()

	out := cmd.OutOrStdout()
	failed := 0
	for _, st := range assets.Verify(cfg.AssetCfg.ModelDir, assets.DefaultModelFiles) {
		if st.OK {
			fmt.Fprintf(out, "OK    %s\n", st.Path)
			continue
		}
		failed++
		fmt.Fprintf(out, "FAIL  %s: %s\n", st.Path, st.Error)
	}
	if failed > 0 {
		return fmt.Errorf("%d asset file(s) failed to load", failed)
	}
	return nil
}

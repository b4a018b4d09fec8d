package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invoiceqc/internal/config"
	"invoiceqc/internal/logger"
)

var version = "1.0.0"

// appConfig is set by Execute before any command runs.
var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "invoiceqc",
	Short: "Invoice QC - extract invoice data from PDFs and check it against QC rules",
	Long: `Invoice QC turns invoice PDFs into structured records and validates them.

Extraction maps page text onto invoice fields using ordered pattern cascades
for German (MwSt/USt-IdNr) and Indian (GST) layouts. Validation checks every
record for missing fields, malformed dates and currencies, arithmetic
mismatches, due dates before the invoice date, and duplicates within a batch.

Configuration is read from the environment and an optional .env file.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with cfg.
func Execute(cfg *config.Config) {
	appConfig = cfg
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

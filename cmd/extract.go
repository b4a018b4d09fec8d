package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"invoiceqc/internal/logger"
	"invoiceqc/internal/report"
)

var extractCmd = &cobra.Command{
	Use:   "extract [pdf-dir]",
	Short: "Extract structured invoice data from PDFs",
	Long: `Extract structured invoice records from every PDF in a directory.

Page text comes from the provider selected by TEXT_PROVIDER (pdf, vision or
documentai). Documents that cannot be read are reported and skipped.

Optional environment variables:
  TEXT_PROVIDER - pdf (default), vision or documentai
  EXTRACT_STRATEGY - auto (default), de or in
  BATCH_WORKERS - Number of parallel workers (default: 4)`,
	Example: `  # Extract all invoices in ./invoices
  invoiceqc extract ./invoices

  # Force the Indian GST layout and write to a custom file
  EXTRACT_STRATEGY=in invoiceqc extract ./invoices -o gst.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", "extracted.json", "Output JSON file")
	extractCmd.Flags().Int("workers", 0, "Parallel workers (default: BATCH_WORKERS)")
	extractCmd.Flags().Int("timeout", 1800, "Processing timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract-cmd")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	ctx, cancel := createContextWithTimeout(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	invoices, err := extractDirectory(ctx, cmd, args[0], log)
	if err != nil {
		return err
	}

	if err := report.WriteJSONFile(outputPath, invoices); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d extracted invoices to %s\n", len(invoices), outputPath)
	return nil
}

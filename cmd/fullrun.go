package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"invoiceqc/internal/logger"
	"invoiceqc/internal/report"
	"invoiceqc/internal/validation"
)

var fullRunCmd = &cobra.Command{
	Use:   "full-run [pdf-dir]",
	Short: "Extract and validate in a single command",
	Long: `Extract every PDF in a directory and validate the resulting records.

Extraction runs in parallel; validation runs afterwards in file name order so
that duplicate detection is deterministic.`,
	Example: `  invoiceqc full-run ./invoices
  invoiceqc full-run ./invoices --extracted extracted.json --xlsx qc.xlsx --sheet`,
	Args: cobra.ExactArgs(1),
	RunE: runFullRun,
}

func init() {
	rootCmd.AddCommand(fullRunCmd)
	addOutputFlags(fullRunCmd)

	fullRunCmd.Flags().String("extracted", "", "Also save the extracted records to this JSON file")
	fullRunCmd.Flags().Int("workers", 0, "Parallel workers (default: BATCH_WORKERS)")
	fullRunCmd.Flags().Int("timeout", 1800, "Processing timeout in seconds")
}

func runFullRun(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("full-run")
	dir := args[0]

	extractedPath, _ := cmd.Flags().GetString("extracted")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	ctx, cancel := createContextWithTimeout(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	fmt.Fprintln(cmd.OutOrStdout(), "Extracting PDFs...")
	invoices, err := extractDirectory(ctx, cmd, dir, log)
	if err != nil {
		return err
	}

	if extractedPath != "" {
		if err := report.WriteJSONFile(extractedPath, invoices); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved extracted data to %s\n", extractedPath)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Validating extracted data...")
	rep := validation.NewEngine().ValidateBatch(invoices)

	return writeReport(ctx, cmd, rep, dir, log)
}

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"invoiceqc/internal/logger"
	"invoiceqc/internal/records"
	"invoiceqc/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate [json-file]",
	Short: "Validate extracted invoice JSON against QC rules",
	Long: `Validate a JSON array of invoice records and write a QC report.

The input is checked against the invoice record schema first. Each record is
then validated for completeness, date and currency formats, totals
arithmetic, due date ordering, and duplicates within the file.`,
	Example: `  # Validate and write validation_report.json
  invoiceqc validate extracted.json

  # Also export to Excel and record the run
  invoiceqc validate extracted.json --xlsx report.xlsx --db`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	addOutputFlags(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("validate-cmd")
	inputPath := args[0]

	ctx, cancel := createContextWithTimeout(10*time.Minute, log)
	defer cancel()

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	invoices, err := records.Decode(f)
	if err != nil {
		return fmt.Errorf("%s: %w", inputPath, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Running validation...")
	rep := validation.NewEngine().ValidateBatch(invoices)

	return writeReport(ctx, cmd, rep, inputPath, log)
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"invoiceqc/internal/extract"
	"invoiceqc/internal/logger"
	"invoiceqc/internal/ocr"
	"invoiceqc/internal/report"
	"invoiceqc/pkg/models"
)

var textCmd = &cobra.Command{
	Use:   "text [pdf-file]",
	Short: "Show the page text of a PDF and the record extracted from it",
	Long: `Print the text the configured provider returns for each page of a PDF.

Use this to see what the extraction patterns are matched against. With
--record the structured invoice record and the strategy that produced it are
printed as well.

Optional environment variables:
  TEXT_PROVIDER - pdf (default), vision or documentai
  GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS - for vision and documentai`,
	Example: `  # Page text to stdout
  invoiceqc text invoice.pdf

  # Page text and extracted record as JSON
  invoiceqc text invoice.pdf --record --json -o result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runText,
}

// TextOutput represents the JSON output structure when --json flag is used
type TextOutput struct {
	FileName           string          `json:"file_name"`
	FileSize           int64           `json:"file_size"`
	Provider           string          `json:"provider"`
	Pages              []string        `json:"pages"`
	ProcessingDuration string          `json:"processing_duration"`
	Strategy           string          `json:"strategy,omitempty"`
	Record             *models.Invoice `json:"record,omitempty"`
}

func init() {
	rootCmd.AddCommand(textCmd)

	textCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	textCmd.Flags().Bool("record", false, "Also extract and print the invoice record")
	textCmd.Flags().Bool("json", false, "Output as JSON")
	textCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runText(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("text")

	outputPath, _ := cmd.Flags().GetString("output")
	withRecord, _ := cmd.Flags().GetBool("record")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	pdfPath := args[0]

	fileInfo, err := validatePDFFile(pdfPath, log)
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	provider, err := createTextProvider(ctx, log)
	if err != nil {
		return err
	}
	defer provider.Close()

	pdfFile, err := os.Open(pdfPath)
	if err != nil {
		return fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer pdfFile.Close()

	start := time.Now()
	pages, err := provider.PageTexts(ctx, pdfFile)
	if err != nil {
		log.Error().Err(err).Str("file", pdfPath).Msg("Page text extraction failed")
		return fmt.Errorf("%s: %s", pdfPath, describeExtractionError(err))
	}

	out := TextOutput{
		FileName:           filepath.Base(pdfPath),
		FileSize:           fileInfo.Size(),
		Provider:           appConfig.TextProvider,
		Pages:              pages,
		ProcessingDuration: time.Since(start).String(),
	}

	if withRecord {
		selector, err := extract.NewSelector(appConfig.ExtractStrategy, logger.WithComponent("extract"))
		if err != nil {
			return err
		}
		record, strategy := selector.ExtractWithStrategy(out.FileName, strings.Join(pages, "\n"))
		record.RawText = nil
		out.Record = &record
		out.Strategy = strategy
	}

	log.Info().
		Int("pages", len(pages)).
		Str("duration", out.ProcessingDuration).
		Msg("Page text extracted")

	var w io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if jsonOutput {
		return report.WriteJSON(w, out)
	}
	return writeTextOutput(w, out)
}

// writeTextOutput prints pages with separators, followed by the record if present
func writeTextOutput(w io.Writer, out TextOutput) error {
	for i, page := range out.Pages {
		fmt.Fprintf(w, "=== Page %d/%d ===\n", i+1, len(out.Pages))
		fmt.Fprintln(w, strings.TrimRight(page, "\n"))
	}
	if out.Record == nil {
		return nil
	}
	fmt.Fprintf(w, "\n=== Record (strategy %s) ===\n", out.Strategy)
	return report.WriteJSON(w, out.Record)
}

// validatePDFFile checks if the file exists, is readable, and is within the size limit
func validatePDFFile(pdfPath string, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(pdfPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("PDF file not found: %s", pdfPath)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied accessing PDF file: %s", pdfPath)
		}
		return nil, fmt.Errorf("error accessing PDF file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, fmt.Errorf("path is not a regular file: %s", pdfPath)
	}

	if !strings.EqualFold(filepath.Ext(pdfPath), ".pdf") {
		log.Warn().
			Str("file", pdfPath).
			Msg("File does not have .pdf extension")
	}

	if fileInfo.Size() == 0 {
		return nil, fmt.Errorf("PDF file is empty: %s", pdfPath)
	}

	if fileInfo.Size() > ocr.MaxFileSizeBytes {
		return nil, fmt.Errorf("PDF file too large (%d bytes). Maximum size is %d bytes (20MB)",
			fileInfo.Size(), ocr.MaxFileSizeBytes)
	}

	return fileInfo, nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"invoiceqc/internal/extract"
	"invoiceqc/internal/logger"
	"invoiceqc/internal/ocr"
	"invoiceqc/internal/report"
	"invoiceqc/internal/sheets"
	"invoiceqc/internal/store"
	"invoiceqc/pkg/models"
)

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// createTextProvider creates the configured page-text provider
func createTextProvider(ctx context.Context, log zerolog.Logger) (ocr.Provider, error) {
	name := appConfig.TextProvider

	if name == ocr.ProviderDocumentAI {
		if err := appConfig.ValidateDocumentAI(); err != nil {
			return nil, err
		}
	}

	provider, err := ocr.New(ctx, name, appConfig.DocumentAIConfig())
	if err != nil {
		if errors.Is(err, ocr.ErrMissingCredentials) {
			log.Error().Err(err).Str("provider", name).Msg("Google Cloud credentials validation failed")
			return nil, fmt.Errorf("Google Cloud credentials not configured for the %s text provider. Please set one of:\n\n"+
				"1. GOOGLE_APPLICATION_CREDENTIALS with the path to a service account JSON file\n"+
				"2. GOOGLE_CREDENTIALS with inline JSON credentials\n"+
				"3. Application Default Credentials (gcloud auth application-default login)\n\n"+
				"or use TEXT_PROVIDER=pdf for PDFs with an embedded text layer.\n\n"+
				"Original error: %w", name, err)
		}
		return nil, fmt.Errorf("failed to create %s text provider: %w", name, err)
	}

	log.Debug().Str("provider", name).Msg("Text provider created")
	return provider, nil
}

// createExtractionService wires the text provider and strategy selector
func createExtractionService(ctx context.Context, log zerolog.Logger) (*extract.Service, ocr.Provider, error) {
	provider, err := createTextProvider(ctx, log)
	if err != nil {
		return nil, nil, err
	}

	selector, err := extract.NewSelector(appConfig.ExtractStrategy, logger.WithComponent("extract"))
	if err != nil {
		provider.Close()
		return nil, nil, err
	}

	return extract.NewService(provider, selector, logger.WithComponent("extract-service")), provider, nil
}

// extractDirectory extracts every PDF in dir and reports failures on stderr
func extractDirectory(ctx context.Context, cmd *cobra.Command, dir string, log zerolog.Logger) ([]models.Invoice, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("folder not found: %s", dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	svc, provider, err := createExtractionService(ctx, log)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := provider.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close text provider")
		}
	}()

	workers, _ := cmd.Flags().GetInt("workers")
	if workers < 1 {
		workers = appConfig.BatchWorkers
	}

	start := time.Now()
	invoices, failures, err := svc.ExtractDir(ctx, dir, workers)
	if err != nil {
		return nil, err
	}

	for _, f := range failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "Failed to extract %s: %s\n", f.File, describeExtractionError(f.Err))
	}

	log.Info().
		Int("extracted", len(invoices)).
		Int("failed", len(failures)).
		Dur("duration", time.Since(start)).
		Msg("Extraction finished")

	if ctx.Err() != nil {
		return nil, fmt.Errorf("extraction was canceled")
	}
	return invoices, nil
}

// describeExtractionError provides user-friendly messages for extraction failures
func describeExtractionError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ocr.ErrPDFTooLarge), errors.Is(err, extract.ErrDocumentTooLarge):
		return "file is too large (maximum 20MB)"
	case errors.Is(err, ocr.ErrTooManyPages):
		return "too many pages for synchronous OCR (maximum 5)"
	case errors.Is(err, ocr.ErrInvalidPDF):
		return "invalid or corrupted PDF file"
	case errors.Is(err, ocr.ErrEmptyDocument), errors.Is(err, extract.ErrNoText):
		return "no readable text found; scanned PDFs need TEXT_PROVIDER=vision or documentai"
	case errors.Is(err, ocr.ErrQuotaExceeded):
		return "Google API quota exceeded"
	default:
		return err.Error()
	}
}

// addOutputFlags registers the report destinations shared by validate and full-run
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("report", "r", "validation_report.json", "Output report file")
	cmd.Flags().String("xlsx", "", "Also write the report as an XLSX workbook")
	cmd.Flags().Bool("sheet", false, "Append results to the Google Sheet in GOOGLE_SHEET_URL")
	cmd.Flags().Bool("db", false, "Record the run in the history database (QC_DB_PATH)")
	cmd.Flags().Bool("fail-on-invalid", false, "Exit with an error when any invoice is invalid")
}

// writeReport writes rep to every destination selected by the output flags
func writeReport(ctx context.Context, cmd *cobra.Command, rep models.Report, source string, log zerolog.Logger) error {
	reportPath, _ := cmd.Flags().GetString("report")
	xlsxPath, _ := cmd.Flags().GetString("xlsx")
	toSheet, _ := cmd.Flags().GetBool("sheet")
	toDB, _ := cmd.Flags().GetBool("db")
	failOnInvalid, _ := cmd.Flags().GetBool("fail-on-invalid")

	if err := report.WriteJSONFile(reportPath, rep); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s\n", reportPath)

	if xlsxPath != "" {
		f, err := os.Create(xlsxPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", xlsxPath, err)
		}
		if err := report.WriteXLSX(f, rep); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Workbook saved to %s\n", xlsxPath)
	}

	run := store.NewRun(source, rep.Summary)

	if toDB {
		db, err := store.Open(ctx, appConfig.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.SaveRun(ctx, run); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Run %s recorded in %s\n", run.ID, appConfig.DBPath)
	}

	if toSheet {
		if err := appConfig.ValidateSheets(); err != nil {
			return err
		}
		sheetsService, err := sheets.NewSheetsService(ctx, appConfig.GoogleSheetURL)
		if err != nil {
			return err
		}
		if err := sheetsService.WriteReport(ctx, rep, appConfig.GoogleSheetWorksheet, run.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Results appended to sheet %q\n", appConfig.GoogleSheetWorksheet)
	}

	fmt.Fprintln(cmd.OutOrStdout())
	report.PrintSummary(cmd.OutOrStdout(), rep.Summary)

	log.Info().
		Str("run_id", run.ID).
		Int("total", rep.Summary.TotalInvoices).
		Int("invalid", rep.Summary.InvalidInvoices).
		Msg("Report written")

	if failOnInvalid && rep.Summary.InvalidInvoices > 0 {
		return fmt.Errorf("%d of %d invoices are invalid", rep.Summary.InvalidInvoices, rep.Summary.TotalInvoices)
	}
	return nil
}

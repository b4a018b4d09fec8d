// Package ocr provides page-text providers: components that turn a PDF into
// the raw text of each of its pages.
//
// Providers:
//   - PDFTextProvider: reads the embedded text layer locally, no credentials.
//   - VisionProvider: Google Cloud Vision document text detection for scanned PDFs.
//   - DocumentAIProvider: Google Document AI OCR processor.
//
// Google providers expect GOOGLE_APPLICATION_CREDENTIALS (path to a service
// account JSON file) or GOOGLE_CREDENTIALS (inline JSON) in the environment.
//
// Synchronous API limitations:
//   - Maximum file size: 20MB
//   - Vision: maximum 5 pages per request
package ocr

import (
	"context"
	"fmt"
	"io"
	"strings"
)

const (
	// MaxFileSizeBytes is the maximum document size accepted by every provider (20MB).
	MaxFileSizeBytes = 20 * 1024 * 1024

	// MaxPagesSync is the maximum number of pages Vision processes synchronously.
	MaxPagesSync = 5
)

// Provider names accepted by configuration.
const (
	ProviderPDF        = "pdf"
	ProviderVision     = "vision"
	ProviderDocumentAI = "documentai"
)

// PageTextProvider extracts the text of every page of a PDF document.
type PageTextProvider interface {
	// PageTexts returns one string per page, in page order. Pages without
	// text yield an empty string. A document with no text at all returns
	// ErrEmptyDocument.
	PageTexts(ctx context.Context, pdfData io.Reader) ([]string, error)
}

// readPDF reads pdfData and checks size and header.
func readPDF(op string, pdfData io.Reader) ([]byte, error) {
	pdfBytes, err := io.ReadAll(io.LimitReader(pdfData, MaxFileSizeBytes+1))
	if err != nil {
		return nil, WrapProviderError(op, err, "failed to read PDF data")
	}
	if len(pdfBytes) > MaxFileSizeBytes {
		return nil, WrapProviderError(op, ErrPDFTooLarge, fmt.Sprintf("file size: more than %d bytes", MaxFileSizeBytes))
	}
	if len(pdfBytes) < 4 || string(pdfBytes[:4]) != "%PDF" {
		return nil, WrapProviderError(op, ErrInvalidPDF, "missing PDF header")
	}
	return pdfBytes, nil
}

// requireText returns ErrEmptyDocument when every page is blank.
func requireText(pages []string) error {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return nil
		}
	}
	return ErrEmptyDocument
}

package ocr

import (
	"errors"
	"strings"
)

// Input problems.
var (
	ErrPDFTooLarge  = errors.New("PDF file size exceeds the maximum limit (20MB)")
	ErrInvalidPDF   = errors.New("invalid or corrupted PDF document")
	ErrTooManyPages = errors.New("PDF has too many pages (maximum 5 pages for synchronous processing)")

	// ErrEmptyDocument means no page yielded any non-blank text.
	ErrEmptyDocument = errors.New("document contains no readable text")
)

// Provider setup and remote service problems.
var (
	ErrMissingCredentials   = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")
	ErrInvalidConfiguration = errors.New("invalid page-text provider configuration")
	ErrProcessorNotFound    = errors.New("Document AI processor not found")
	ErrQuotaExceeded        = errors.New("Google API quota exceeded")
	ErrOCRFailed            = errors.New("OCR processing failed")
)

// ProviderError records which provider operation failed. Match the cause
// with errors.Is against the sentinels above.
type ProviderError struct {
	Op      string // e.g. "VisionProvider.PageTexts"
	Err     error
	Details string // optional
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	b.WriteString("ocr: ")
	b.WriteString(e.Op)
	b.WriteString(" failed: ")
	if e.Details != "" {
		b.WriteString(e.Details)
		b.WriteString(": ")
	}
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// WrapProviderError attaches op and details to err. Nil stays nil and an
// existing ProviderError is returned unchanged so the innermost operation
// is the one reported.
func WrapProviderError(op string, err error, details string) error {
	if err == nil {
		return nil
	}
	var existing *ProviderError
	if errors.As(err, &existing) {
		return err
	}
	return &ProviderError{Op: op, Err: err, Details: details}
}

package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrNoText is returned when the page-text provider produced no usable
	// text for a document.
	ErrNoText = errors.New("document produced no text")

	// ErrUnknownStrategy is returned for an unsupported strategy name.
	ErrUnknownStrategy = errors.New("unknown extraction strategy")

	// ErrDocumentTooLarge is returned when a file exceeds MaxDocumentSizeBytes.
	ErrDocumentTooLarge = errors.New("document exceeds maximum size limit")
)

// ExtractionError describes why one document could not be extracted.
type ExtractionError struct {
	// Op is the operation that failed (e.g. "ExtractFile").
	Op string

	// File is the document being processed.
	File string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("extract: %s %s: %v", e.Op, e.File, e.Err)
	}
	return fmt.Sprintf("extract: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// wrapExtractionError wraps err unless it already is an ExtractionError.
func wrapExtractionError(op, file string, err error) error {
	if err == nil {
		return nil
	}
	var extErr *ExtractionError
	if errors.As(err, &extErr) {
		return err
	}
	return &ExtractionError{Op: op, File: file, Err: err}
}

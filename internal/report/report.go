// Package report renders validation reports as JSON, XLSX and console text.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"

	"invoiceqc/pkg/models"
)

// Header names the columns produced by Row.
var Header = []string{"Invoice ID", "Invoice Number", "Status", "Error Count", "Errors", "Warnings"}

// Status values written for a result.
const (
	StatusValid   = "VALID"
	StatusInvalid = "INVALID"
)

// Row flattens a validation result into one spreadsheet row.
func Row(r models.ValidationResult) []any {
	status := StatusInvalid
	if r.IsValid {
		status = StatusValid
	}
	return []any{
		r.InvoiceID,
		lo.FromPtr(r.InvoiceNumber),
		status,
		len(r.Errors),
		strings.Join(r.Errors, "; "),
		strings.Join(r.Warnings, "; "),
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteJSONFile writes v as indented JSON to path, replacing any existing file.
func WriteJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(f, v); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// SortedCodes returns the error codes of summary ordered by code.
func SortedCodes(summary models.BatchSummary) []string {
	codes := lo.Keys(summary.ErrorCounts)
	sort.Strings(codes)
	return codes
}

// PrintSummary writes a human-readable summary of a run.
func PrintSummary(w io.Writer, summary models.BatchSummary) {
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  Total invoices:   %d\n", summary.TotalInvoices)
	fmt.Fprintf(w, "  Valid invoices:   %d\n", summary.ValidInvoices)
	fmt.Fprintf(w, "  Invalid invoices: %d\n", summary.InvalidInvoices)

	codes := SortedCodes(summary)
	if len(codes) == 0 {
		return
	}
	fmt.Fprintln(w, "  Errors:")
	for _, code := range codes {
		fmt.Fprintf(w, "    %-45s %d\n", code, summary.ErrorCounts[code])
	}
}

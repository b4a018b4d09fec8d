package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"invoiceqc/pkg/models"
)

// Sheet names of the XLSX export.
const (
	InvoicesSheet = "Invoices"
	SummarySheet  = "Summary"
)

// WriteXLSX writes the report as a workbook with an Invoices sheet (one row
// per result) and a Summary sheet (totals and error counts by code).
func WriteXLSX(w io.Writer, rep models.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", InvoicesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	if err := writeRow(f, InvoicesSheet, 1, toAny(Header)); err != nil {
		return err
	}
	for i, r := range rep.Invoices {
		if err := writeRow(f, InvoicesSheet, i+2, Row(r)); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(InvoicesSheet, "A", "B", 24)
	_ = f.SetColWidth(InvoicesSheet, "C", "D", 12)
	_ = f.SetColWidth(InvoicesSheet, "E", "E", 80)
	_ = f.SetColWidth(InvoicesSheet, "F", "F", 24)

	s := rep.Summary
	summaryRows := [][]any{
		{"Metric", "Value"},
		{"Total invoices", s.TotalInvoices},
		{"Valid invoices", s.ValidInvoices},
		{"Invalid invoices", s.InvalidInvoices},
		{},
		{"Error code", "Count"},
	}
	for _, code := range SortedCodes(s) {
		summaryRows = append(summaryRows, []any{code, s.ErrorCounts[code]})
	}
	for i, row := range summaryRows {
		if err := writeRow(f, SummarySheet, i+1, row); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(SummarySheet, "A", "A", 48)

	if idx, err := f.GetSheetIndex(InvoicesSheet); err == nil {
		f.SetActiveSheet(idx)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

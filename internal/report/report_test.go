package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"invoiceqc/pkg/models"
)

func sampleReport() models.Report {
	return models.Report{
		Invoices: []models.ValidationResult{
			{InvoiceID: "a.pdf", InvoiceNumber: lo.ToPtr("A1"), IsValid: true, Errors: []string{}, Warnings: []string{}},
			{
				InvoiceID: "b.pdf",
				IsValid:   false,
				Errors:    []string{"missing_field: invoice_number", "business_rule_failed: totals_mismatch"},
				Warnings:  []string{},
			},
		},
		Summary: models.BatchSummary{
			TotalInvoices:   2,
			ValidInvoices:   1,
			InvalidInvoices: 1,
			ErrorCounts: map[string]int{
				"missing_field: invoice_number":         1,
				"business_rule_failed: totals_mismatch": 1,
			},
		},
	}
}

func TestWriteJSONKeys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	invoices := decoded["invoices"].([]any)
	require.Len(t, invoices, 2)
	first := invoices[0].(map[string]any)
	assert.Equal(t, "a.pdf", first["invoice_id"])
	assert.Equal(t, "A1", first["invoice_number"])
	assert.Equal(t, true, first["is_valid"])
	assert.Equal(t, []any{}, first["errors"])
	assert.Equal(t, []any{}, first["warnings"])
	assert.Nil(t, invoices[1].(map[string]any)["invoice_number"])

	summary := decoded["summary"].(map[string]any)
	assert.Equal(t, float64(2), summary["total_invoices"])
	assert.Equal(t, float64(1), summary["valid_invoices"])
	assert.Equal(t, float64(1), summary["invalid_invoices"])
	assert.Contains(t, summary["error_counts"], "business_rule_failed: totals_mismatch")
}

func TestWriteJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteJSONFile(path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total_invoices": 2`)
}

func TestRow(t *testing.T) {
	rep := sampleReport()
	assert.Equal(t, []any{"a.pdf", "A1", StatusValid, 0, "", ""}, Row(rep.Invoices[0]))
	assert.Equal(t, []any{
		"b.pdf", "", StatusInvalid, 2,
		"missing_field: invoice_number; business_rule_failed: totals_mismatch", "",
	}, Row(rep.Invoices[1]))
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, sampleReport().Summary)

	out := buf.String()
	assert.Contains(t, out, "Total invoices:   2")
	assert.Contains(t, out, "Invalid invoices: 1")
	assert.Less(t,
		bytes.Index(buf.Bytes(), []byte("business_rule_failed: totals_mismatch")),
		bytes.Index(buf.Bytes(), []byte("missing_field: invoice_number")))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{InvoicesSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(InvoicesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "a.pdf", rows[1][0])
	assert.Equal(t, StatusValid, rows[1][2])
	assert.Equal(t, "2", rows[2][3])

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Total invoices", "2"}, summary[1])
	assert.Equal(t, []string{"Error code", "Count"}, summary[5])
	assert.Equal(t, []string{"business_rule_failed: totals_mismatch", "1"}, summary[6])
	assert.Equal(t, []string{"missing_field: invoice_number", "1"}, summary[7])
}

package validation

import "invoiceqc/pkg/models"

// ValidateBatch validates invoices in order against one shared duplicate
// state. The first occurrence of a duplicate key is clean; later ones are
// flagged.
func (e *Engine) ValidateBatch(invoices []models.Invoice) models.Report {
	state := NewDedupState()
	results := make([]models.ValidationResult, 0, len(invoices))
	for _, inv := range invoices {
		results = append(results, e.Validate(inv, state))
	}

	summary := Summarize(results)
	e.log.Info().
		Int("total", summary.TotalInvoices).
		Int("valid", summary.ValidInvoices).
		Int("invalid", summary.InvalidInvoices).
		Int("distinct_keys", state.Len()).
		Msg("Batch validated")

	return models.Report{Invoices: results, Summary: summary}
}

// Summarize derives batch statistics from results.
func Summarize(results []models.ValidationResult) models.BatchSummary {
	summary := models.BatchSummary{
		TotalInvoices: len(results),
		ErrorCounts:   make(map[string]int),
	}
	for _, r := range results {
		if r.IsValid {
			summary.ValidInvoices++
		} else {
			summary.InvalidInvoices++
		}
		for _, code := range r.Errors {
			summary.ErrorCounts[code]++
		}
	}
	return summary
}

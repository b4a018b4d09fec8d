package models

// ValidationResult is the verdict for one invoice in one validation run.
type ValidationResult struct {
	InvoiceID     string   `json:"invoice_id"`
	InvoiceNumber *string  `json:"invoice_number"`
	IsValid       bool     `json:"is_valid"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
}

// DuplicateKey identifies an invoice for duplicate detection within a batch.
// An empty component stands for an unknown value.
type DuplicateKey struct {
	InvoiceNumber string
	SellerName    string
	InvoiceDate   string
}

// Complete reports whether every component of the key is known.
func (k DuplicateKey) Complete() bool {
	return k.InvoiceNumber != "" && k.SellerName != "" && k.InvoiceDate != ""
}

// BatchSummary aggregates the results of one validation run.
type BatchSummary struct {
	TotalInvoices   int            `json:"total_invoices"`
	ValidInvoices   int            `json:"valid_invoices"`
	InvalidInvoices int            `json:"invalid_invoices"`
	ErrorCounts     map[string]int `json:"error_counts"`
}

// Report is the machine-readable output of a validation run.
type Report struct {
	Invoices []ValidationResult `json:"invoices"`
	Summary  BatchSummary       `json:"summary"`
}

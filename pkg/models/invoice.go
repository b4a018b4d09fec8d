package models

import "github.com/shopspring/decimal"

// Invoice is the structured record produced by extraction and consumed by validation.
// A nil pointer means the field is unknown; it is never replaced by a zero value.
type Invoice struct {
	// Core identifiers
	InvoiceID         string  `json:"invoice_id"`         // Stable per document, e.g. the source file name
	InvoiceNumber     *string `json:"invoice_number"`     // Human-readable invoice number
	ExternalReference *string `json:"external_reference"` // Order / purchase reference

	// Dates (raw strings, ISO when produced by extraction)
	InvoiceDate *string `json:"invoice_date"`
	DueDate     *string `json:"due_date"`

	// Parties
	SellerName  *string `json:"seller_name"`
	SellerTaxID *string `json:"seller_tax_id"`
	BuyerName   *string `json:"buyer_name"`
	BuyerTaxID  *string `json:"buyer_tax_id"`

	// Amounts
	Currency     *string          `json:"currency"`
	NetTotal     *decimal.Decimal `json:"net_total"`
	TaxAmount    *decimal.Decimal `json:"tax_amount"`
	GrossTotal   *decimal.Decimal `json:"gross_total"`
	PaymentTerms *string          `json:"payment_terms"`

	LineItems []LineItem `json:"line_items"`

	// RawText is the page text the record was extracted from
	RawText *string `json:"raw_text,omitempty"`
}

// LineItem is a single priced line of an invoice. LineTotal is authoritative:
// it is never recomputed from Quantity and UnitPrice.
type LineItem struct {
	Description string           `json:"description"`
	Quantity    *decimal.Decimal `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal  `json:"line_total"`
}

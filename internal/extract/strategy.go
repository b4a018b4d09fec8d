package extract

import (
	"strings"

	"github.com/rs/zerolog"

	"invoiceqc/internal/normalize"
	"invoiceqc/pkg/models"
)

// Field names, shared with the validation codes.
const (
	FieldInvoiceNumber     = "invoice_number"
	FieldExternalReference = "external_reference"
	FieldInvoiceDate       = "invoice_date"
	FieldDueDate           = "due_date"
	FieldSellerName        = "seller_name"
	FieldSellerTaxID       = "seller_tax_id"
	FieldBuyerName         = "buyer_name"
	FieldBuyerTaxID        = "buyer_tax_id"
	FieldCurrency          = "currency"
	FieldNetTotal          = "net_total"
	FieldTaxAmount         = "tax_amount"
	FieldGrossTotal        = "gross_total"
	FieldPaymentTerms      = "payment_terms"
)

// Kind selects the post-processing applied to a raw match.
type Kind int

const (
	KindText Kind = iota
	KindDate
	KindAmount
)

// FieldRule binds a field to its cascade.
type FieldRule struct {
	Field    string
	Kind     Kind
	Patterns Cascade
}

// Extractor maps document text onto an invoice record.
type Extractor interface {
	Extract(invoiceID, text string) models.Invoice
}

// Strategy is one regional layout: field cascades, the marker used for
// positional seller resolution, and the line item money format.
type Strategy struct {
	Name string

	// Fields are resolved in order.
	Fields []FieldRule

	// SellerMarker is the label (usually a tax id label) printed just below
	// the seller name. Used only when no cascade resolved the seller.
	SellerMarker    string
	SellerMinLength int

	// DetectMarkers identify documents in this layout. The default layout
	// has none.
	DetectMarkers []string

	resolver  Resolver
	segmenter Segmenter
	log       zerolog.Logger
}

// Detects reports whether text carries one of the strategy's markers.
func (s *Strategy) Detects(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range s.DetectMarkers {
		if strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// Extract resolves every field of the strategy against text. It is a pure
// function of its input.
func (s *Strategy) Extract(invoiceID, text string) models.Invoice {
	cleaned := strings.ReplaceAll(text, "\t", " ")
	cleaned = strings.ReplaceAll(cleaned, "  ", " ")

	raw := text
	inv := models.Invoice{
		InvoiceID: invoiceID,
		RawText:   &raw,
	}

	for _, rule := range s.Fields {
		value := s.resolver.Resolve(rule.Field, rule.Patterns, cleaned)
		if value == nil {
			continue
		}
		switch rule.Kind {
		case KindDate:
			iso := normalize.Date(*value)
			if iso == nil {
				s.log.Warn().Str("invoice_id", invoiceID).Str("field", rule.Field).Str("raw", *value).
					Msg("Date matched but could not be parsed")
				continue
			}
			assignText(&inv, rule.Field, iso)
		case KindAmount:
			amount := normalize.Amount(*value)
			if amount == nil {
				s.log.Warn().Str("invoice_id", invoiceID).Str("field", rule.Field).Str("raw", *value).
					Msg("Amount matched but could not be parsed")
				continue
			}
			switch rule.Field {
			case FieldNetTotal:
				inv.NetTotal = amount
			case FieldTaxAmount:
				inv.TaxAmount = amount
			case FieldGrossTotal:
				inv.GrossTotal = amount
			}
		default:
			assignText(&inv, rule.Field, value)
		}
	}

	if inv.SellerName == nil {
		inv.SellerName = s.resolver.ResolveAboveMarker(FieldSellerName, s.SellerMarker, s.SellerMinLength, cleaned)
	}

	inv.LineItems = s.segmenter.Segment(text)

	s.log.Debug().
		Str("invoice_id", invoiceID).
		Str("strategy", s.Name).
		Int("line_items", len(inv.LineItems)).
		Int("critical_fields", criticalResolved(inv)).
		Msg("Extraction finished")

	return inv
}

func assignText(inv *models.Invoice, field string, value *string) {
	switch field {
	case FieldInvoiceNumber:
		inv.InvoiceNumber = value
	case FieldExternalReference:
		inv.ExternalReference = value
	case FieldInvoiceDate:
		inv.InvoiceDate = value
	case FieldDueDate:
		inv.DueDate = value
	case FieldSellerName:
		inv.SellerName = value
	case FieldSellerTaxID:
		inv.SellerTaxID = value
	case FieldBuyerName:
		inv.BuyerName = value
	case FieldBuyerTaxID:
		inv.BuyerTaxID = value
	case FieldCurrency:
		upper := strings.ToUpper(*value)
		inv.Currency = &upper
	case FieldPaymentTerms:
		inv.PaymentTerms = value
	}
}

// criticalResolved counts the fields without which a record cannot be
// identified or totalled.
func criticalResolved(inv models.Invoice) int {
	n := 0
	if inv.InvoiceNumber != nil {
		n++
	}
	if inv.InvoiceDate != nil {
		n++
	}
	if inv.GrossTotal != nil {
		n++
	}
	return n
}

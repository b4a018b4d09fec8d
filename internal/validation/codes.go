package validation

// Error categories. A code is "<category>: <detail>".
const (
	CategoryMissingField = "missing_field"
	CategoryFormatError  = "format_error"
	CategoryBusinessRule = "business_rule_failed"
	CategoryAnomaly      = "anomaly"
)

// Stable error codes. These strings are part of the report format.
const (
	CodeInvoiceDateUnparseable = CategoryFormatError + ": invoice_date_unparseable"
	CodeInvoiceDateOutOfRange  = CategoryFormatError + ": invoice_date_out_of_range"
	CodeDueDateUnparseable     = CategoryFormatError + ": due_date_unparseable"
	CodeCurrencyInvalid        = CategoryFormatError + ": currency_invalid"

	CodeTotalsMismatch    = CategoryBusinessRule + ": totals_mismatch"
	CodeLineItemsMismatch = CategoryBusinessRule + ": line_items_mismatch"
	CodeDueBeforeInvoice  = CategoryBusinessRule + ": due_before_invoice"

	CodeDuplicateInvoice = CategoryAnomaly + ": duplicate_invoice"
)

// MissingField returns the code for an absent required field.
func MissingField(field string) string {
	return CategoryMissingField + ": " + field
}

// Negative returns the code for a total that is below zero.
func Negative(field string) string {
	return CategoryBusinessRule + ": " + field + "_negative"
}

// AllowedCurrencies is the default currency allow-list.
var AllowedCurrencies = []string{"EUR", "USD", "INR", "GBP", "AUD", "CAD"}

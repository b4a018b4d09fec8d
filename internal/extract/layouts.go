package extract

import "github.com/rs/zerolog"

// Strategy names accepted by configuration.
const (
	StrategyAuto     = "auto"
	StrategyEuropean = "de"
	StrategyIndian   = "in"
)

const (
	dottedDate = `([0-9]{2}\.[0-9]{2}\.[0-9]{4})`
	looseDate  = `([0-9]{1,2}[./\-][0-9]{1,2}[./\-][0-9]{2,4})`
	euAmount   = `([0-9.,]+)`
	inAmount   = `(?:₹|Rs\.?|INR)?\s*([0-9][0-9.,]*)`
)

// European returns the strategy for German purchase order / invoice
// documents with "Gesamtwert" and "MwSt" totals.
func European(log zerolog.Logger) *Strategy {
	return &Strategy{
		Name: StrategyEuropean,
		Fields: []FieldRule{
			{Field: FieldInvoiceNumber, Kind: KindText, Patterns: NewCascade(
				`Bestellung\s+(AUFNR[0-9]+)`,
				`Bestellung.*?(AUFNR[0-9]+)`,
				`(AUFNR[0-9]+)`,
			)},
			{Field: FieldInvoiceDate, Kind: KindDate, Patterns: NewCascade(
				`vom\s+`+dottedDate,
				dottedDate,
			)},
			{Field: FieldDueDate, Kind: KindDate, Patterns: NewCascade(
				`zahlbar\s+bis\s+(?:zum\s+)?`+dottedDate,
				`fällig\s+am\s+`+dottedDate,
			)},
			{Field: FieldExternalReference, Kind: KindText, Patterns: NewCascade(
				`Ihre\s+Referenz\s*:?\s*(\S+)`,
			)},
			{Field: FieldSellerTaxID, Kind: KindText, Patterns: NewCascade(
				`USt-?IdNr\.?\s*:?\s*([A-Z]{2}[0-9A-Z]{8,12})`,
			)},
			{Field: FieldNetTotal, Kind: KindAmount, Patterns: NewCascade(
				`Gesamtwert\s*EUR\s*`+euAmount,
				`Gesamtwert.*?`+euAmount,
			)},
			{Field: FieldTaxAmount, Kind: KindAmount, Patterns: NewCascade(
				`MwSt\.\s*[0-9,]+%?\s*EUR\s*`+euAmount,
				`MwSt.*?EUR\s*`+euAmount,
			)},
			{Field: FieldGrossTotal, Kind: KindAmount, Patterns: NewCascade(
				`Gesamtwert inkl\. MwSt\.\s*EUR\s*`+euAmount,
				`inkl\. MwSt.*?EUR\s*`+euAmount,
			)},
			{Field: FieldCurrency, Kind: KindText, Patterns: NewCascade(
				`\b(EUR)\b`,
			)},
			{Field: FieldPaymentTerms, Kind: KindText, Patterns: NewCascade(
				`Zahlungsbedingungen\s*:?\s*([^\n]+)`,
			)},
		},
		SellerMarker:    "USt-IdNr",
		SellerMinLength: 2,
		resolver:        NewResolver(log),
		segmenter:       NewSegmenter(',', log),
		log:             log,
	}
}

// Indian returns the strategy for GST tax invoices as issued by Indian
// marketplaces ("Sold By", "GSTIN", "Grand Total").
func Indian(log zerolog.Logger) *Strategy {
	return &Strategy{
		Name: StrategyIndian,
		Fields: []FieldRule{
			{Field: FieldInvoiceNumber, Kind: KindText, Patterns: NewCascade(
				`Invoice\s+Number\s*:?\s*([A-Z0-9][A-Z0-9\-]*)`,
				`Invoice\s+No\.?\s*:?\s*([A-Z0-9][A-Z0-9\-]*)`,
			)},
			{Field: FieldExternalReference, Kind: KindText, Patterns: NewCascade(
				`Order\s+(?:Number|No\.?|ID)\s*:?\s*([0-9][0-9\-]*)`,
			)},
			{Field: FieldInvoiceDate, Kind: KindDate, Patterns: NewCascade(
				`Invoice\s+Date\s*:?\s*`+looseDate,
				`Order\s+Date\s*:?\s*`+looseDate,
			)},
			{Field: FieldDueDate, Kind: KindDate, Patterns: NewCascade(
				`Due\s+Date\s*:?\s*` + looseDate,
			)},
			{Field: FieldSellerName, Kind: KindText, Patterns: NewCascade(
				`Sold\s+By\s*:?\s*([^\n,*]+)`,
			)},
			{Field: FieldSellerTaxID, Kind: KindText, Patterns: NewCascade(
				`GSTIN\s*(?:No\.?)?\s*:?\s*([0-9]{2}[A-Z0-9]{13})`,
				`GST\s+Registration\s+No\.?\s*:?\s*([0-9]{2}[A-Z0-9]{13})`,
			)},
			{Field: FieldBuyerName, Kind: KindText, Patterns: NewCascade(
				`Billing\s+Address\s*:?\s*([^\n,]+)`,
			)},
			{Field: FieldNetTotal, Kind: KindAmount, Patterns: NewCascade(
				`Sub\s*Total\s*:?\s*`+inAmount,
				`Taxable\s+Value\s*:?\s*`+inAmount,
			)},
			{Field: FieldTaxAmount, Kind: KindAmount, Patterns: NewCascade(
				`Total\s+Tax\s*:?\s*`+inAmount,
				`IGST\s*(?:@\s*[0-9.]+\s*%)?\s*:?\s*`+inAmount,
			)},
			{Field: FieldGrossTotal, Kind: KindAmount, Patterns: NewCascade(
				`Grand\s+Total\s*:?\s*`+inAmount,
				`Total\s+Amount\s*:?\s*`+inAmount,
			)},
			{Field: FieldCurrency, Kind: KindText, Patterns: NewCascade(
				`\b(INR)\b`,
			)},
			{Field: FieldPaymentTerms, Kind: KindText, Patterns: NewCascade(
				`Payment\s+Terms\s*:?\s*([^\n]+)`,
			)},
		},
		SellerMarker:    "GSTIN",
		SellerMinLength: 2,
		DetectMarkers:   []string{"GSTIN", "GST Registration", "₹"},
		resolver:        NewResolver(log),
		segmenter:       NewSegmenter('.', log),
		log:             log,
	}
}

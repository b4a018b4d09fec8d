package records

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	input := `[
	  {
	    "invoice_id": "po-1.pdf",
	    "invoice_number": "AUFNR1",
	    "invoice_date": "2024-01-01",
	    "seller_name": null,
	    "net_total": 100,
	    "tax_amount": "19.00",
	    "gross_total": 119.0,
	    "line_items": [
	      {"description": "Widget", "quantity": 2, "unit_price": null, "line_total": "100.00"}
	    ]
	  },
	  {"invoice_id": "po-2.pdf"}
	]`

	invoices, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, invoices, 2)

	first := invoices[0]
	assert.Equal(t, "po-1.pdf", first.InvoiceID)
	require.NotNil(t, first.InvoiceNumber)
	assert.Equal(t, "AUFNR1", *first.InvoiceNumber)
	assert.Nil(t, first.SellerName)
	require.NotNil(t, first.NetTotal)
	assert.True(t, first.NetTotal.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, first.TaxAmount)
	assert.True(t, first.TaxAmount.Equal(decimal.NewFromInt(19)))
	require.NotNil(t, first.GrossTotal)
	assert.True(t, first.GrossTotal.Equal(decimal.NewFromInt(119)))
	require.Len(t, first.LineItems, 1)
	assert.Nil(t, first.LineItems[0].UnitPrice)
	assert.True(t, first.LineItems[0].LineTotal.Equal(decimal.NewFromInt(100)))

	second := invoices[1]
	assert.Nil(t, second.InvoiceNumber)
	assert.Nil(t, second.NetTotal)
	assert.NotNil(t, second.LineItems)
}

func TestDecodeSchemaViolations(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{`},
		{"not an array", `{"invoice_id": "x"}`},
		{"missing invoice_id", `[{"invoice_number": "A1"}]`},
		{"numeric invoice_id", `[{"invoice_id": 7}]`},
		{"amount as text", `[{"invoice_id": "x", "net_total": "abc"}]`},
		{"line item without total", `[{"invoice_id": "x", "line_items": [{"description": "Widget"}]}]`},
		{"null line total", `[{"invoice_id": "x", "line_items": [{"description": "Widget", "line_total": null}]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrSchema)
		})
	}
}

func TestDecodeEmptyArray(t *testing.T) {
	invoices, err := DecodeBytes([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, invoices)
}

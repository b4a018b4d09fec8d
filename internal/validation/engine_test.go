package validation

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceqc/pkg/models"
)

var fixedNow = time.Date(2026, time.October, 17, 15, 4, 5, 0, time.UTC)

func newTestEngine(opts ...Option) *Engine {
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(zerolog.Nop()),
	}
	return NewEngine(append(base, opts...)...)
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func validInvoice() models.Invoice {
	return models.Invoice{
		InvoiceID:     "inv-1",
		InvoiceNumber: lo.ToPtr("A1"),
		InvoiceDate:   lo.ToPtr("2024-01-01"),
		DueDate:       lo.ToPtr("2024-01-31"),
		SellerName:    lo.ToPtr("Acme"),
		BuyerName:     lo.ToPtr("Globex"),
		Currency:      lo.ToPtr("EUR"),
		NetTotal:      amount("100.00"),
		TaxAmount:     amount("19.00"),
		GrossTotal:    amount("119.00"),
		LineItems: []models.LineItem{
			{Description: "Widget", LineTotal: decimal.RequireFromString("60.00")},
			{Description: "Gadget", LineTotal: decimal.RequireFromString("40.00")},
		},
	}
}

func TestValidInvoice(t *testing.T) {
	result := newTestEngine().Validate(validInvoice(), NewDedupState())

	assert.True(t, result.IsValid)
	assert.Equal(t, "inv-1", result.InvoiceID)
	require.NotNil(t, result.InvoiceNumber)
	assert.Equal(t, "A1", *result.InvoiceNumber)
	assert.NotNil(t, result.Errors)
	assert.Empty(t, result.Errors)
	assert.NotNil(t, result.Warnings)
	assert.Empty(t, result.Warnings)
}

func TestCompleteness(t *testing.T) {
	result := newTestEngine().Validate(models.Invoice{InvoiceID: "empty"}, NewDedupState())

	assert.False(t, result.IsValid)
	assert.Equal(t, []string{
		"missing_field: invoice_number",
		"missing_field: invoice_date",
		"missing_field: seller_name",
		"missing_field: buyer_name",
		"missing_field: net_total",
		"missing_field: tax_amount",
		"missing_field: gross_total",
	}, result.Errors)
}

func TestEmptyStringCountsAsMissing(t *testing.T) {
	inv := validInvoice()
	inv.BuyerName = lo.ToPtr("")

	result := newTestEngine().Validate(inv, nil)
	assert.Equal(t, []string{"missing_field: buyer_name"}, result.Errors)
}

func TestZeroAmountIsPresent(t *testing.T) {
	inv := validInvoice()
	inv.NetTotal = amount("0.00")
	inv.TaxAmount = amount("0.00")
	inv.GrossTotal = amount("0.00")
	inv.LineItems = nil

	result := newTestEngine().Validate(inv, nil)
	assert.True(t, result.IsValid, result.Errors)
}

func TestNegativeAmounts(t *testing.T) {
	inv := validInvoice()
	inv.TaxAmount = amount("-0.01")

	result := newTestEngine().Validate(inv, nil)
	assert.Contains(t, result.Errors, "business_rule_failed: tax_amount_negative")
	assert.Contains(t, result.Errors, "business_rule_failed: totals_mismatch")
	assert.False(t, result.IsValid)
}

func TestTotalsMismatch(t *testing.T) {
	inv := validInvoice()
	result := newTestEngine().Validate(inv, nil)
	assert.NotContains(t, result.Errors, CodeTotalsMismatch)

	inv.GrossTotal = amount("120.00")
	result = newTestEngine().Validate(inv, nil)
	assert.Equal(t, []string{CodeTotalsMismatch}, result.Errors)
}

func TestTotalsSkippedWhenIncomplete(t *testing.T) {
	inv := validInvoice()
	inv.TaxAmount = nil
	inv.GrossTotal = amount("500.00")

	result := newTestEngine().Validate(inv, nil)
	assert.Equal(t, []string{"missing_field: tax_amount"}, result.Errors)
}

func TestApproxEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"exact", "119.00", "119.00", true},
		{"relative bound", "100.50", "100.00", true},
		{"just over relative bound", "100.51", "100.00", false},
		{"absolute floor near zero", "0.01", "0.00", true},
		{"over absolute floor", "0.02", "0.00", false},
		{"negative reference uses magnitude", "-100.40", "-100.00", true},
		{"anchored to second operand", "100.00", "99.50", false},
		{"anchored to second operand reversed", "99.50", "100.00", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := approxEqual(decimal.RequireFromString(tt.a), decimal.RequireFromString(tt.b))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineItemsMismatch(t *testing.T) {
	inv := validInvoice()
	inv.LineItems = append(inv.LineItems, models.LineItem{Description: "Extra", LineTotal: decimal.RequireFromString("5.00")})

	result := newTestEngine().Validate(inv, nil)
	assert.Equal(t, []string{CodeLineItemsMismatch}, result.Errors)
}

func TestLineTotalIsAuthoritative(t *testing.T) {
	inv := validInvoice()
	inv.LineItems = []models.LineItem{{
		Description: "Widget",
		Quantity:    amount("3"),
		UnitPrice:   amount("50.00"),
		LineTotal:   decimal.RequireFromString("100.00"),
	}}

	result := newTestEngine().Validate(inv, nil)
	assert.True(t, result.IsValid, result.Errors)
}

func TestDateFormats(t *testing.T) {
	tests := []struct {
		name    string
		invoice *string
		due     *string
		want    []string
	}{
		{"unparseable invoice date", lo.ToPtr("sometime"), nil, []string{CodeInvoiceDateUnparseable}},
		{"raw european date accepted", lo.ToPtr("15.03.2024"), lo.ToPtr("01.04.2024"), []string{}},
		{"before 2000", lo.ToPtr("1999-12-31"), nil, []string{CodeInvoiceDateOutOfRange}},
		{"lower bound", lo.ToPtr("2000-01-01"), nil, []string{}},
		{"upper bound", lo.ToPtr("2027-10-17"), nil, []string{}},
		{"after upper bound", lo.ToPtr("2027-10-18"), nil, []string{CodeInvoiceDateOutOfRange}},
		{"unparseable due date", lo.ToPtr("2024-01-01"), lo.ToPtr("soon"), []string{CodeDueDateUnparseable}},
		{"leap day", lo.ToPtr("29.02.2024"), nil, []string{}},
		{"invalid leap day", lo.ToPtr("29.02.2023"), nil, []string{CodeInvoiceDateUnparseable}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := validInvoice()
			inv.InvoiceDate = tt.invoice
			inv.DueDate = tt.due

			result := newTestEngine().Validate(inv, nil)
			assert.Equal(t, tt.want, result.Errors)
		})
	}
}

func TestDueBeforeInvoice(t *testing.T) {
	inv := validInvoice()
	inv.DueDate = lo.ToPtr("2023-12-31")

	result := newTestEngine().Validate(inv, nil)
	assert.Equal(t, []string{CodeDueBeforeInvoice}, result.Errors)

	inv.DueDate = lo.ToPtr("2024-01-01")
	result = newTestEngine().Validate(inv, nil)
	assert.True(t, result.IsValid)
}

func TestCurrency(t *testing.T) {
	inv := validInvoice()
	inv.Currency = lo.ToPtr("JPY")
	assert.Equal(t, []string{CodeCurrencyInvalid}, newTestEngine().Validate(inv, nil).Errors)

	inv.Currency = lo.ToPtr("eur")
	assert.Equal(t, []string{CodeCurrencyInvalid}, newTestEngine().Validate(inv, nil).Errors)

	inv.Currency = nil
	assert.True(t, newTestEngine().Validate(inv, nil).IsValid)

	inv.Currency = lo.ToPtr("JPY")
	assert.True(t, newTestEngine(WithCurrencies("JPY")).Validate(inv, nil).IsValid)
}

func TestDuplicateDetection(t *testing.T) {
	engine := newTestEngine()
	state := NewDedupState()

	first := engine.Validate(validInvoice(), state)
	second := engine.Validate(validInvoice(), state)
	third := engine.Validate(validInvoice(), state)

	assert.True(t, first.IsValid)
	assert.Equal(t, []string{CodeDuplicateInvoice}, second.Errors)
	assert.False(t, second.IsValid)
	assert.Equal(t, []string{CodeDuplicateInvoice}, third.Errors)
	assert.Equal(t, 1, state.Len())
}

func TestIncompleteKeyNeverRecorded(t *testing.T) {
	engine := newTestEngine()
	state := NewDedupState()

	inv := validInvoice()
	inv.SellerName = nil

	engine.Validate(inv, state)
	second := engine.Validate(inv, state)

	assert.Equal(t, 0, state.Len())
	assert.NotContains(t, second.Errors, CodeDuplicateInvoice)
}

func TestNilStateSkipsDuplicates(t *testing.T) {
	engine := newTestEngine()
	assert.True(t, engine.Validate(validInvoice(), nil).IsValid)
	assert.True(t, engine.Validate(validInvoice(), nil).IsValid)
}

func TestAllGroupsAccumulate(t *testing.T) {
	inv := validInvoice()
	inv.BuyerName = nil
	inv.Currency = lo.ToPtr("XXX")
	inv.NetTotal = amount("-10.00")
	inv.DueDate = lo.ToPtr("2023-01-01")

	state := NewDedupState()
	engine := newTestEngine()
	engine.Validate(validInvoice(), state)
	result := engine.Validate(inv, state)

	assert.Equal(t, []string{
		"missing_field: buyer_name",
		CodeCurrencyInvalid,
		"business_rule_failed: net_total_negative",
		CodeTotalsMismatch,
		CodeLineItemsMismatch,
		CodeDueBeforeInvoice,
		CodeDuplicateInvoice,
	}, result.Errors)
}

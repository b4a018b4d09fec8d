// Package validation checks invoice records against completeness, format,
// arithmetic, temporal and duplicate rules.
package validation

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"invoiceqc/internal/logger"
	"invoiceqc/internal/normalize"
	"invoiceqc/pkg/models"
)

var (
	relativeTolerance = decimal.RequireFromString("0.005")
	absoluteTolerance = decimal.RequireFromString("0.01")

	earliestInvoiceDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// Engine validates single invoices. Rule groups run in a fixed order and
// never short-circuit each other.
type Engine struct {
	now        func() time.Time
	currencies []string
	log        zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for the invoice date range check.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithCurrencies replaces the currency allow-list.
func WithCurrencies(codes ...string) Option {
	return func(e *Engine) {
		e.currencies = codes
	}
}

// WithLogger sets the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// NewEngine creates a validation engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:        time.Now,
		currencies: AllowedCurrencies,
		log:        logger.WithComponent("validation"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate checks inv. When state is non-nil the duplicate rule consults it
// and records the invoice's key; a nil state skips duplicate detection.
func (e *Engine) Validate(inv models.Invoice, state *DedupState) models.ValidationResult {
	errs := []string{}

	errs = append(errs, e.checkCompleteness(inv)...)
	errs = append(errs, e.checkFormats(inv)...)
	errs = append(errs, e.checkArithmetic(inv)...)
	errs = append(errs, e.checkTemporal(inv)...)
	if state != nil {
		errs = append(errs, e.checkDuplicate(inv, state)...)
	}

	if len(errs) > 0 {
		e.log.Debug().Str("invoice_id", inv.InvoiceID).Strs("errors", errs).Msg("Invoice failed validation")
	}

	return models.ValidationResult{
		InvoiceID:     inv.InvoiceID,
		InvoiceNumber: inv.InvoiceNumber,
		IsValid:       len(errs) == 0,
		Errors:        errs,
		Warnings:      []string{},
	}
}

func (e *Engine) checkCompleteness(inv models.Invoice) []string {
	var errs []string

	texts := []struct {
		field string
		value *string
	}{
		{"invoice_number", inv.InvoiceNumber},
		{"invoice_date", inv.InvoiceDate},
		{"seller_name", inv.SellerName},
		{"buyer_name", inv.BuyerName},
	}
	for _, t := range texts {
		if lo.FromPtr(t.value) == "" {
			errs = append(errs, MissingField(t.field))
		}
	}

	amounts := []struct {
		field string
		value *decimal.Decimal
	}{
		{"net_total", inv.NetTotal},
		{"tax_amount", inv.TaxAmount},
		{"gross_total", inv.GrossTotal},
	}
	for _, a := range amounts {
		if a.value == nil {
			errs = append(errs, MissingField(a.field))
		}
	}
	return errs
}

func (e *Engine) checkFormats(inv models.Invoice) []string {
	var errs []string

	if raw := lo.FromPtr(inv.InvoiceDate); raw != "" {
		date, ok := parseDate(raw)
		switch {
		case !ok:
			errs = append(errs, CodeInvoiceDateUnparseable)
		case !e.inRange(date):
			errs = append(errs, CodeInvoiceDateOutOfRange)
		}
	}

	if raw := lo.FromPtr(inv.DueDate); raw != "" {
		if _, ok := parseDate(raw); !ok {
			errs = append(errs, CodeDueDateUnparseable)
		}
	}

	if code := lo.FromPtr(inv.Currency); code != "" && !lo.Contains(e.currencies, code) {
		errs = append(errs, CodeCurrencyInvalid)
	}
	return errs
}

// inRange reports whether date lies in [2000-01-01, today + 1 calendar year].
func (e *Engine) inRange(date time.Time) bool {
	now := e.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	latest := today.AddDate(1, 0, 0)
	return !date.Before(earliestInvoiceDate) && !date.After(latest)
}

func (e *Engine) checkArithmetic(inv models.Invoice) []string {
	var errs []string

	totals := []struct {
		field string
		value *decimal.Decimal
	}{
		{"net_total", inv.NetTotal},
		{"tax_amount", inv.TaxAmount},
		{"gross_total", inv.GrossTotal},
	}
	for _, t := range totals {
		if t.value != nil && t.value.IsNegative() {
			errs = append(errs, Negative(t.field))
		}
	}

	if inv.NetTotal != nil && inv.TaxAmount != nil && inv.GrossTotal != nil {
		if !approxEqual(inv.NetTotal.Add(*inv.TaxAmount), *inv.GrossTotal) {
			errs = append(errs, CodeTotalsMismatch)
		}
	}

	if len(inv.LineItems) > 0 && inv.NetTotal != nil {
		sum := decimal.Zero
		for _, item := range inv.LineItems {
			sum = sum.Add(item.LineTotal)
		}
		if !approxEqual(sum, *inv.NetTotal) {
			errs = append(errs, CodeLineItemsMismatch)
		}
	}
	return errs
}

func (e *Engine) checkTemporal(inv models.Invoice) []string {
	issued, ok := parseDate(lo.FromPtr(inv.InvoiceDate))
	if !ok {
		return nil
	}
	due, ok := parseDate(lo.FromPtr(inv.DueDate))
	if !ok {
		return nil
	}
	if due.Before(issued) {
		return []string{CodeDueBeforeInvoice}
	}
	return nil
}

func (e *Engine) checkDuplicate(inv models.Invoice, state *DedupState) []string {
	key := models.DuplicateKey{
		InvoiceNumber: lo.FromPtr(inv.InvoiceNumber),
		SellerName:    lo.FromPtr(inv.SellerName),
		InvoiceDate:   lo.FromPtr(inv.InvoiceDate),
	}
	if !key.Complete() {
		return nil
	}
	if state.Seen(key) {
		e.log.Info().
			Str("invoice_id", inv.InvoiceID).
			Str("invoice_number", key.InvoiceNumber).
			Str("seller", key.SellerName).
			Msg("Duplicate invoice in batch")
		return []string{CodeDuplicateInvoice}
	}
	state.Add(key)
	return nil
}

// approxEqual reports whether a is within max(|b| * 0.5%, 0.01) of b. The
// tolerance is anchored to b, the reference value.
func approxEqual(a, b decimal.Decimal) bool {
	tolerance := decimal.Max(b.Abs().Mul(relativeTolerance), absoluteTolerance)
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

// parseDate accepts ISO dates as produced by extraction as well as the raw
// formats understood by the normalizer.
func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(normalize.ISODate, raw); err == nil {
		return t, true
	}
	return normalize.ParseDate(raw)
}

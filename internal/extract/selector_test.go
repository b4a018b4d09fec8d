package extract

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unmarkedEnglishInvoice = "Invoice Number: INV-1\nInvoice Date: 01/02/2024\nGrand Total: 100.00"

func TestNewSelectorRejectsUnknownMode(t *testing.T) {
	_, err := NewSelector("fr", zerolog.Nop())
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestSelectorDetectsLayout(t *testing.T) {
	s, err := NewSelector(StrategyAuto, zerolog.Nop())
	require.NoError(t, err)

	_, name := s.ExtractWithStrategy("in", indianInvoice)
	assert.Equal(t, StrategyIndian, name)

	_, name = s.ExtractWithStrategy("de", germanInvoice)
	assert.Equal(t, StrategyEuropean, name)
}

func TestSelectorFallsBackOnMissingCriticalFields(t *testing.T) {
	s, err := NewSelector("", zerolog.Nop())
	require.NoError(t, err)

	inv, name := s.ExtractWithStrategy("x", unmarkedEnglishInvoice)
	assert.Equal(t, StrategyIndian, name)
	require.NotNil(t, inv.InvoiceNumber)
	assert.Equal(t, "INV-1", *inv.InvoiceNumber)
	require.NotNil(t, inv.InvoiceDate)
	assert.Equal(t, "2024-02-01", *inv.InvoiceDate)
}

func TestSelectorTieKeepsDetected(t *testing.T) {
	s, err := NewSelector(StrategyAuto, zerolog.Nop())
	require.NoError(t, err)

	inv, name := s.ExtractWithStrategy("x", "blank page")
	assert.Equal(t, StrategyEuropean, name)
	assert.Nil(t, inv.InvoiceNumber)
}

func TestSelectorForcedMode(t *testing.T) {
	s, err := NewSelector(StrategyEuropean, zerolog.Nop())
	require.NoError(t, err)

	inv, name := s.ExtractWithStrategy("x", unmarkedEnglishInvoice)
	assert.Equal(t, StrategyEuropean, name)
	assert.Nil(t, inv.InvoiceNumber)

	assert.Equal(t, inv, s.Extract("x", unmarkedEnglishInvoice))
}

func TestSelectorDetectDefaultsToMarkerlessStrategy(t *testing.T) {
	s, err := NewSelector(StrategyAuto, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, StrategyIndian, s.detect("Total ₹ 120.00").Name)
	assert.Equal(t, StrategyEuropean, s.detect(germanInvoice).Name)
	assert.Equal(t, StrategyEuropean, s.detect("no markers at all").Name)
}

package extract

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFirstMatchWins(t *testing.T) {
	r := NewResolver(zerolog.Nop())
	c := NewCascade(`Bestellung\s+(AUFNR[0-9]+)`, `(AUFNR[0-9]+)`)

	text := "Referenz AUFNR999\nBestellung AUFNR123"
	got := r.Resolve("invoice_number", c, text)
	require.NotNil(t, got)
	assert.Equal(t, "AUFNR123", *got)

	got = r.Resolve("invoice_number", c, "Referenz AUFNR999")
	require.NotNil(t, got)
	assert.Equal(t, "AUFNR999", *got)
}

func TestResolveCaseInsensitiveAcrossLines(t *testing.T) {
	r := NewResolver(zerolog.Nop())
	c := NewCascade(`bestellung.*?(AUFNR[0-9]+)`)

	got := r.Resolve("invoice_number", c, "BESTELLUNG\nvom 01.01.2024\naufnr42")
	require.NotNil(t, got)
	assert.Equal(t, "aufnr42", *got)
}

func TestResolveNoMatch(t *testing.T) {
	r := NewResolver(zerolog.Nop())
	assert.Nil(t, r.Resolve("currency", NewCascade(`\b(EUR)\b`), "USD only"))
}

func TestResolveSkipsBlankCapture(t *testing.T) {
	r := NewResolver(zerolog.Nop())
	c := NewCascade(`Kunde:([ ]*)\n`, `Kunde:\s*(\S+)`)

	got := r.Resolve("buyer_name", c, "Kunde:  \nMüller")
	require.NotNil(t, got)
	assert.Equal(t, "Müller", *got)
}

func TestResolveAboveMarker(t *testing.T) {
	r := NewResolver(zerolog.Nop())

	t.Run("direct predecessor", func(t *testing.T) {
		text := "Rechnung\nACME GmbH\nUSt-IdNr.: DE123456789\nOther Corp\nUSt-IdNr.: DE987654321"
		got := r.ResolveAboveMarker("seller_name", "USt-IdNr", 2, text)
		require.NotNil(t, got)
		assert.Equal(t, "ACME GmbH", *got)
	})

	t.Run("whitespace-only predecessor", func(t *testing.T) {
		text := "ACME GmbH\n \nust-idnr DE123456789"
		got := r.ResolveAboveMarker("seller_name", "USt-IdNr", 2, text)
		require.NotNil(t, got)
		assert.Equal(t, "ACME GmbH", *got)
	})

	t.Run("skips blank lines", func(t *testing.T) {
		got := r.ResolveAboveMarker("seller_name", "USt-IdNr", 2, "ACME GmbH\n\n\nUSt-IdNr.: DE123456789")
		require.NotNil(t, got)
		assert.Equal(t, "ACME GmbH", *got)
	})

	t.Run("short fallback skips blank lines", func(t *testing.T) {
		text := "ACME GmbH\n\nX\n  \nGSTIN 29ABCDE1234F1Z5"
		got := r.ResolveAboveMarker("seller_name", "GSTIN", 2, text)
		require.NotNil(t, got)
		assert.Equal(t, "ACME GmbH", *got)
	})

	t.Run("only blank lines above", func(t *testing.T) {
		assert.Nil(t, r.ResolveAboveMarker("seller_name", "GSTIN", 2, "\n \nGSTIN 29ABCDE1234F1Z5"))
	})

	t.Run("marker on first line", func(t *testing.T) {
		assert.Nil(t, r.ResolveAboveMarker("seller_name", "GSTIN", 2, "GSTIN 29ABCDE1234F1Z5\nShop"))
	})

	t.Run("marker absent", func(t *testing.T) {
		assert.Nil(t, r.ResolveAboveMarker("seller_name", "GSTIN", 2, "Shop\nInvoice"))
	})

	t.Run("both candidates too short", func(t *testing.T) {
		assert.Nil(t, r.ResolveAboveMarker("seller_name", "GSTIN", 2, "A\nB\nGSTIN 29ABCDE1234F1Z5"))
	})
}

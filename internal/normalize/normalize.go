// Package normalize converts locale-formatted amount and date strings into
// canonical values. Both converters fail softly: a malformed input yields
// "unknown" (nil / false), never an error.
package normalize

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// ISODate is the canonical date layout produced by Date.
const ISODate = "2006-01-02"

// dateLayouts is tried in order; the first layout that consumes the whole
// input wins. Order matters for ambiguous inputs such as "01/02/2023".
var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2006-1-2",
	"2/1/06",
}

var plainNumber = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`)

// Amount parses a monetary string such as "1.234,56", "1,234.56", "99,99" or
// "-0.01". Thousands separators and whitespace are removed. The decimal
// separator is the last '.' or ',' when both occur; a lone ',' followed by one
// or two digits is a decimal comma; repeated occurrences of one separator are
// thousands separators. Any other residue makes the amount unknown.
func Amount(text string) *decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	if cleaned == "" {
		return nil
	}

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		frac := cleaned[lastComma+1:]
		if strings.Count(cleaned, ",") == 1 && len(frac) >= 1 && len(frac) <= 2 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastDot >= 0 && strings.Count(cleaned, ".") > 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	if !plainNumber.MatchString(cleaned) {
		return nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	return &d
}

// ParseDate returns the calendar date of text using the known input layouts.
func ParseDate(text string) (time.Time, bool) {
	value := strings.TrimSpace(text)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date normalizes text to an ISO date string, or nil when no layout matches.
func Date(text string) *string {
	t, ok := ParseDate(text)
	if !ok {
		return nil
	}
	iso := t.Format(ISODate)
	return &iso
}

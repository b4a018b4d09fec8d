package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"invoiceqc/internal/normalize"
	"invoiceqc/pkg/models"
)

var longDigitRun = regexp.MustCompile(`[0-9]{7,}`)

// Segmenter turns item-shaped text lines into line items.
//
// A line is kept only when it has no path separator, no run of seven or more
// digits, and ends in a strict money amount: one to six digits, the decimal
// separator, two digits. The amount may carry a prefix such as a currency
// symbol but must not continue a longer number, so amounts with thousands
// separators inside a line item are not recognized. Lines that pass the
// filters but do not have the "index description quantity ... amount" shape
// are dropped silently.
type Segmenter struct {
	money *regexp.Regexp
	shape *regexp.Regexp
	log   zerolog.Logger
}

// NewSegmenter builds a segmenter for amounts using decimalSep ('.' or ',').
func NewSegmenter(decimalSep rune, log zerolog.Logger) Segmenter {
	thousandsSep := ','
	if decimalSep == ',' {
		thousandsSep = '.'
	}
	money := fmt.Sprintf(`[0-9]{1,6}%s[0-9]{2}`, regexp.QuoteMeta(string(decimalSep)))
	return Segmenter{
		money: regexp.MustCompile(fmt.Sprintf(`(?:^|[^0-9%s])%s$`, regexp.QuoteMeta(string(thousandsSep)), money)),
		shape: regexp.MustCompile(`^(\d+)\s+([\p{L}\- ]+)\s+(\d+).*?(` + money + `)$`),
		log:   log,
	}
}

// Segment scans text line by line.
func (s Segmenter) Segment(text string) []models.LineItem {
	items := []models.LineItem{}
	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		if strings.ContainsAny(line, `/\`) || longDigitRun.MatchString(line) {
			continue
		}
		if !s.money.MatchString(line) {
			continue
		}

		m := s.shape.FindStringSubmatch(line)
		if m == nil {
			s.log.Debug().Int("line", n+1).Str("text", line).Msg("Money line without item shape dropped")
			continue
		}

		qty, err := decimal.NewFromString(m[3])
		if err != nil {
			continue
		}
		total := normalize.Amount(m[4])
		if total == nil {
			continue
		}

		items = append(items, models.LineItem{
			Description: strings.TrimSpace(m[2]),
			Quantity:    &qty,
			LineTotal:   *total,
		})
	}
	return items
}

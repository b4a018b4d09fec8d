package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"invoiceqc/internal/logger"
)

// wordGapRatio is the horizontal gap, relative to font size, above which two
// glyph runs on the same row are treated as separate words.
const wordGapRatio = 0.15

// PDFTextProvider implements PageTextProvider by reading the embedded text
// layer of the PDF. Scanned documents without a text layer yield ErrEmptyDocument.
type PDFTextProvider struct {
	log zerolog.Logger
}

// NewPDFTextProvider creates a local text-layer provider.
func NewPDFTextProvider() *PDFTextProvider {
	return &PDFTextProvider{log: logger.WithComponent("pdf-text")}
}

// PageTexts implements PageTextProvider.
func (p *PDFTextProvider) PageTexts(ctx context.Context, pdfData io.Reader) ([]string, error) {
	const op = "PDFTextProvider.PageTexts"

	pdfBytes, err := readPDF(op, pdfData)
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return nil, WrapProviderError(op, ErrInvalidPDF, err.Error())
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, WrapProviderError(op, err, "")
		}
		text, err := pageText(reader.Page(i))
		if err != nil {
			return nil, WrapProviderError(op, ErrInvalidPDF, fmt.Sprintf("page %d: %v", i, err))
		}
		pages = append(pages, text)
	}

	if err := requireText(pages); err != nil {
		return nil, WrapProviderError(op, err, "no embedded text layer")
	}

	p.log.Debug().Int("pages", numPages).Int("bytes", len(pdfBytes)).Msg("text layer extracted")
	return pages, nil
}

// pageText renders a page row by row. Runs closer than wordGapRatio are joined
// without a space.
func pageText(page pdf.Page) (text string, err error) {
	if page.V.IsNull() {
		return "", nil
	}

	// The pdf package panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed content stream: %v", r)
		}
	}()

	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, row := range rows {
		var line strings.Builder
		var prevEnd float64
		for i, word := range row.Content {
			if i > 0 && word.X-prevEnd > word.FontSize*wordGapRatio {
				line.WriteByte(' ')
			}
			line.WriteString(word.S)
			prevEnd = word.X + word.W
		}
		b.WriteString(strings.TrimSpace(line.String()))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// Close is a no-op; the local provider holds no resources.
func (p *PDFTextProvider) Close() error {
	return nil
}

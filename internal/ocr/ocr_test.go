package ocr

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/status"
)

func TestReadPDF(t *testing.T) {
	t.Run("accepts PDF header", func(t *testing.T) {
		data, err := readPDF("test", strings.NewReader("%PDF-1.4 body"))
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 body", string(data))
	})

	t.Run("rejects non-PDF data", func(t *testing.T) {
		_, err := readPDF("test", strings.NewReader("hello"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidPDF))

		var provErr *ProviderError
		require.True(t, errors.As(err, &provErr))
		assert.Equal(t, "test", provErr.Op)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := readPDF("test", strings.NewReader(""))
		assert.ErrorIs(t, err, ErrInvalidPDF)
	})

	t.Run("rejects oversized input", func(t *testing.T) {
		big := append([]byte("%PDF"), bytes.Repeat([]byte{'x'}, MaxFileSizeBytes)...)
		_, err := readPDF("test", bytes.NewReader(big))
		assert.ErrorIs(t, err, ErrPDFTooLarge)
	})
}

func TestRequireText(t *testing.T) {
	assert.NoError(t, requireText([]string{"", "Rechnung"}))
	assert.ErrorIs(t, requireText([]string{"", "  \n"}), ErrEmptyDocument)
	assert.ErrorIs(t, requireText(nil), ErrEmptyDocument)
}

func TestWrapProviderError(t *testing.T) {
	assert.Nil(t, WrapProviderError("op", nil, ""))

	first := WrapProviderError("inner", ErrOCRFailed, "details")
	second := WrapProviderError("outer", first, "more")
	assert.Same(t, first, second)
	assert.Equal(t, "ocr: inner failed: details: OCR processing failed", second.Error())
	assert.ErrorIs(t, second, ErrOCRFailed)

	plain := WrapProviderError("PDFTextProvider.PageTexts", ErrEmptyDocument, "")
	assert.Equal(t, "ocr: PDFTextProvider.PageTexts failed: document contains no readable text", plain.Error())
}

func TestDocumentPages(t *testing.T) {
	doc := &documentaipb.Document{
		Text: "Rechnung Nr. 1\nSumme 10,00€\n",
		Pages: []*documentaipb.Document_Page{
			{Layout: &documentaipb.Document_Page_Layout{TextAnchor: &documentaipb.Document_TextAnchor{
				TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{{StartIndex: 0, EndIndex: 15}},
			}}},
			{Layout: &documentaipb.Document_Page_Layout{TextAnchor: &documentaipb.Document_TextAnchor{
				TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{{StartIndex: 15, EndIndex: 28}},
			}}},
			{},
		},
	}

	pages := documentPages(doc)
	require.Len(t, pages, 3)
	assert.Equal(t, "Rechnung Nr. 1\n", pages[0])
	assert.Equal(t, "Summe 10,00€\n", pages[1])
	assert.Equal(t, "", pages[2])
}

func TestDocumentPagesWithoutPages(t *testing.T) {
	pages := documentPages(&documentaipb.Document{Text: "only text"})
	assert.Equal(t, []string{"only text"}, pages)
}

func TestDocumentPagesSkipsInvalidSegments(t *testing.T) {
	doc := &documentaipb.Document{
		Text: "abc",
		Pages: []*documentaipb.Document_Page{
			{Layout: &documentaipb.Document_Page_Layout{TextAnchor: &documentaipb.Document_TextAnchor{
				TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{
					{StartIndex: 0, EndIndex: 99},
					{StartIndex: 1, EndIndex: 3},
				},
			}}},
		},
	}
	assert.Equal(t, []string{"bc"}, documentPages(doc))
}

func TestVisionPages(t *testing.T) {
	t.Run("collects page text", func(t *testing.T) {
		resp := &visionpb.AnnotateFileResponse{
			Responses: []*visionpb.AnnotateImageResponse{
				{FullTextAnnotation: &visionpb.TextAnnotation{Text: "page one"}},
				{},
			},
		}
		pages, err := visionPages(resp)
		require.NoError(t, err)
		assert.Equal(t, []string{"page one", ""}, pages)
	})

	t.Run("too many pages", func(t *testing.T) {
		resp := &visionpb.AnnotateFileResponse{}
		for i := 0; i < MaxPagesSync+1; i++ {
			resp.Responses = append(resp.Responses, &visionpb.AnnotateImageResponse{})
		}
		_, err := visionPages(resp)
		assert.ErrorIs(t, err, ErrTooManyPages)
	})

	t.Run("page error", func(t *testing.T) {
		resp := &visionpb.AnnotateFileResponse{
			Responses: []*visionpb.AnnotateImageResponse{
				{Error: &status.Status{Message: "bad page"}},
			},
		}
		_, err := visionPages(resp)
		assert.ErrorIs(t, err, ErrOCRFailed)
	})

	t.Run("no text", func(t *testing.T) {
		resp := &visionpb.AnnotateFileResponse{
			Responses: []*visionpb.AnnotateImageResponse{{}},
		}
		_, err := visionPages(resp)
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), "tesseract", DocumentAIConfig{})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestNewDocumentAIProviderRequiresProject(t *testing.T) {
	_, err := NewDocumentAIProvider(context.Background(), DocumentAIConfig{ProcessorID: "abc"})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewDocumentAIProvider(context.Background(), DocumentAIConfig{ProjectID: "p"})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestPDFTextProviderRejectsGarbage(t *testing.T) {
	p := NewPDFTextProvider()
	_, err := p.PageTexts(context.Background(), strings.NewReader("not a pdf"))
	assert.ErrorIs(t, err, ErrInvalidPDF)
}

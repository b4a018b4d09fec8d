package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"invoiceqc/internal/logger"
)

// DocumentAIConfig holds configuration for Google Document AI processing.
type DocumentAIConfig struct {
	// ProjectID is the Google Cloud project ID where Document AI is enabled.
	ProjectID string

	// Location is the processing location (e.g., "us", "eu").
	Location string

	// ProcessorID is the ID of an OCR (document text) processor.
	ProcessorID string

	// ProcessorVersion pins a processor version; empty uses the default.
	ProcessorVersion string

	// Timeout bounds a single ProcessDocument call.
	Timeout time.Duration
}

// DocumentAIProvider implements PageTextProvider using a Document AI OCR processor.
type DocumentAIProvider struct {
	client *documentai.DocumentProcessorClient
	config DocumentAIConfig
	log    zerolog.Logger
}

// NewDocumentAIProvider creates a provider with credentials from environment.
func NewDocumentAIProvider(ctx context.Context, config DocumentAIConfig) (*DocumentAIProvider, error) {
	const op = "NewDocumentAIProvider"

	if config.ProjectID == "" {
		return nil, WrapProviderError(op, ErrInvalidConfiguration, "GOOGLE_CLOUD_PROJECT is required")
	}
	if config.ProcessorID == "" {
		return nil, WrapProviderError(op, ErrInvalidConfiguration, "DOCUMENT_AI_PROCESSOR_ID is required")
	}
	if config.Location == "" {
		config.Location = "us"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	var clientOptions []option.ClientOption
	if config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		return nil, WrapProviderError(op, ErrMissingCredentials, fmt.Sprintf("failed to create Document AI client for location %s: %v", config.Location, err))
	}

	return &DocumentAIProvider{
		client: client,
		config: config,
		log:    logger.WithComponent("document-ai"),
	}, nil
}

// PageTexts implements PageTextProvider.
func (p *DocumentAIProvider) PageTexts(ctx context.Context, pdfData io.Reader) ([]string, error) {
	const op = "DocumentAIProvider.PageTexts"

	pdfBytes, err := readPDF(op, pdfData)
	if err != nil {
		return nil, err
	}

	processCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: p.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  pdfBytes,
				MimeType: "application/pdf",
			},
		},
	}

	resp, err := p.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, p.handleProcessingError(op, err)
	}
	if resp.Document == nil {
		return nil, WrapProviderError(op, ErrOCRFailed, "no document in response")
	}

	pages := documentPages(resp.Document)
	if err := requireText(pages); err != nil {
		return nil, WrapProviderError(op, err, "")
	}

	p.log.Debug().Int("pages", len(pages)).Int("bytes", len(pdfBytes)).Msg("Document AI OCR completed")
	return pages, nil
}

// processorName constructs the full processor resource name.
func (p *DocumentAIProvider) processorName() string {
	if p.config.ProcessorVersion != "" {
		return fmt.Sprintf("projects/%s/locations/%s/processors/%s/processorVersions/%s",
			p.config.ProjectID, p.config.Location, p.config.ProcessorID, p.config.ProcessorVersion)
	}
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		p.config.ProjectID, p.config.Location, p.config.ProcessorID)
}

// handleProcessingError maps Document AI failures onto provider errors.
func (p *DocumentAIProvider) handleProcessingError(op string, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "PERMISSION_DENIED"):
		return WrapProviderError(op, ErrMissingCredentials, "insufficient permissions for Document AI")
	case strings.Contains(errStr, "QUOTA_EXCEEDED"), strings.Contains(errStr, "RESOURCE_EXHAUSTED"):
		return WrapProviderError(op, ErrQuotaExceeded, "Document AI API quota exceeded")
	case strings.Contains(errStr, "NOT_FOUND"):
		return WrapProviderError(op, ErrProcessorNotFound, fmt.Sprintf("processor not found: %s", p.config.ProcessorID))
	case strings.Contains(errStr, "INVALID_ARGUMENT"):
		return WrapProviderError(op, ErrInvalidPDF, "document format not supported or corrupted")
	case strings.Contains(errStr, "context deadline exceeded"):
		return WrapProviderError(op, context.DeadlineExceeded, "processing timeout")
	case strings.Contains(errStr, "context canceled"):
		return WrapProviderError(op, context.Canceled, "processing was canceled")
	default:
		return WrapProviderError(op, ErrOCRFailed, fmt.Sprintf("Document AI error: %v", err))
	}
}

// documentPages slices the document text into pages using each page's
// layout text anchor. Anchor indexes count characters of Document.Text.
func documentPages(doc *documentaipb.Document) []string {
	if len(doc.Pages) == 0 {
		return []string{doc.Text}
	}

	text := []rune(doc.Text)
	pages := make([]string, 0, len(doc.Pages))
	for _, page := range doc.Pages {
		if page.Layout == nil || page.Layout.TextAnchor == nil {
			pages = append(pages, "")
			continue
		}
		var b strings.Builder
		for _, seg := range page.Layout.TextAnchor.TextSegments {
			start, end := int(seg.StartIndex), int(seg.EndIndex)
			if start < 0 || end > len(text) || start >= end {
				continue
			}
			b.WriteString(string(text[start:end]))
		}
		pages = append(pages, b.String())
	}
	return pages
}

// Close closes the underlying Document AI client.
func (p *DocumentAIProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

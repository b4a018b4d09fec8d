package ocr

import (
	"context"
	"fmt"
	"io"
	"os"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"invoiceqc/internal/logger"
)

// VisionProvider implements PageTextProvider using Google Cloud Vision document
// text detection.
type VisionProvider struct {
	client *vision.ImageAnnotatorClient
	log    zerolog.Logger
}

// NewVisionProvider creates a provider with credentials from environment.
// It expects either GOOGLE_APPLICATION_CREDENTIALS path or GOOGLE_CREDENTIALS JSON in env.
func NewVisionProvider(ctx context.Context) (*VisionProvider, error) {
	const op = "NewVisionProvider"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapProviderError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapProviderError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		// Application default credentials
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapProviderError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return NewVisionProviderWithClient(client), nil
}

// NewVisionProviderWithClient creates a provider with an explicit client.
func NewVisionProviderWithClient(client *vision.ImageAnnotatorClient) *VisionProvider {
	return &VisionProvider{
		client: client,
		log:    logger.WithComponent("vision"),
	}
}

// PageTexts implements PageTextProvider.
func (v *VisionProvider) PageTexts(ctx context.Context, pdfData io.Reader) ([]string, error) {
	const op = "VisionProvider.PageTexts"

	pdfBytes, err := readPDF(op, pdfData)
	if err != nil {
		return nil, err
	}

	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  pdfBytes,
					MimeType: "application/pdf",
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return nil, WrapProviderError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return nil, WrapProviderError(op, ErrOCRFailed, "no response from Vision API")
	}

	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return nil, WrapProviderError(op, ErrOCRFailed, fmt.Sprintf("Vision API error: %s", fileResp.Error.Message))
	}

	pages, err := visionPages(fileResp)
	if err != nil {
		return nil, WrapProviderError(op, err, "failed to process Vision API response")
	}

	v.log.Debug().Int("pages", len(pages)).Int("bytes", len(pdfBytes)).Msg("Vision text detection completed")
	return pages, nil
}

// visionPages returns the full text annotation of each page response.
func visionPages(fileResp *visionpb.AnnotateFileResponse) ([]string, error) {
	if len(fileResp.Responses) == 0 {
		return nil, ErrEmptyDocument
	}
	if len(fileResp.Responses) > MaxPagesSync {
		return nil, fmt.Errorf("%w: document has %d pages", ErrTooManyPages, len(fileResp.Responses))
	}

	pages := make([]string, 0, len(fileResp.Responses))
	for i, page := range fileResp.Responses {
		if page.Error != nil {
			return nil, fmt.Errorf("%w: page %d: %s", ErrOCRFailed, i+1, page.Error.Message)
		}
		if page.FullTextAnnotation == nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, page.FullTextAnnotation.Text)
	}

	if err := requireText(pages); err != nil {
		return nil, err
	}
	return pages, nil
}

// Close closes the underlying Vision client.
func (v *VisionProvider) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}

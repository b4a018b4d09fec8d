package ocr

import (
	"context"
	"fmt"
	"io"
)

// Provider is a PageTextProvider that holds releasable resources.
type Provider interface {
	PageTextProvider
	io.Closer
}

// New creates the provider registered under name.
func New(ctx context.Context, name string, docAI DocumentAIConfig) (Provider, error) {
	switch name {
	case "", ProviderPDF:
		return NewPDFTextProvider(), nil
	case ProviderVision:
		v, err := NewVisionProvider(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	case ProviderDocumentAI:
		d, err := NewDocumentAIProvider(ctx, docAI)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, WrapProviderError("New", ErrInvalidConfiguration, fmt.Sprintf("unknown text provider %q", name))
	}
}

package port

import (
	"context"

	"folioscan/internal/domain"
)

// ExtractInput carries one screenshot to an OCR provider.
type ExtractInput struct {
	ImageBytes  []byte
	ContentType string
	Broker      domain.BrokerType
}

// ExtractOutput is the raw provider answer for one screenshot.
// Holdings are not yet sanitized.
type ExtractOutput struct {
	Holdings  []domain.Holding
	ModelUsed string
	RawText   string
}

// HoldingsExtractor abstracts a single OCR / vision backend.
// Implementations return an error on any failure; the ingest client downgrades it.
type HoldingsExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}

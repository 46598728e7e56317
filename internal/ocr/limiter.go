package ocr

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"folioscan/internal/port"
)

// ThrottledExtractor limits the rate of outbound provider calls.
type ThrottledExtractor struct {
	next    port.HoldingsExtractor
	limiter *rate.Limiter
}

// NewThrottledExtractor wraps next with a token bucket of requestsPerSecond and burst.
// A non-positive rate disables throttling and returns next unchanged.
func NewThrottledExtractor(next port.HoldingsExtractor, requestsPerSecond float64, burst int) port.HoldingsExtractor {
	if requestsPerSecond <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	return &ThrottledExtractor{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

func (t *ThrottledExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return t.next.Extract(ctx, input)
}

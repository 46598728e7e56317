package ingest

import (
	"context"
	"fmt"
	"math"
	"strings"

	"folioscan/internal/domain"
	"folioscan/internal/logger"
	"folioscan/internal/port"
)

// MaxTickerLen is the longest ticker accepted from a provider.
const MaxTickerLen = 10

// TickerResolver maps a company name or alias to its ticker.
// Unknown names are returned unchanged.
type TickerResolver interface {
	Resolve(name string) string
}

// Extractor performs one extraction call for one image and never fails.
type Extractor interface {
	Extract(ctx context.Context, img domain.ImageInput) domain.ExtractionResult
}

// Client adapts a port.HoldingsExtractor into an Extractor.
// Provider errors and panics become unsuccessful results.
type Client struct {
	extractor port.HoldingsExtractor
	resolver  TickerResolver
	log       *logger.Entry
}

// NewClient creates a Client. resolver may be nil.
func NewClient(extractor port.HoldingsExtractor, resolver TickerResolver, log *logger.Log) *Client {
	if log == nil {
		log = logger.L()
	}
	return &Client{
		extractor: extractor,
		resolver:  resolver,
		log:       log.WithComponent("ingest.Client"),
	}
}

// Extract runs exactly one provider call for img.
func (c *Client) Extract(ctx context.Context, img domain.ImageInput) (result domain.ExtractionResult) {
	defer func() {
		if r := recover(); r != nil {
			c.log.WithField("image", img.Name).Errorf("provider panicked: %v", r)
			result = domain.FailedResult(0, fmt.Sprintf("provider panic: %v", r))
		}
	}()

	out, err := c.extractor.Extract(ctx, port.ExtractInput{
		ImageBytes:  img.Data,
		ContentType: img.ContentType,
		Broker:      img.Broker,
	})
	if err != nil {
		c.log.WithField("image", img.Name).WithError(err).Warn("extraction failed")
		return domain.FailedResult(0, err.Error())
	}
	if out == nil {
		return domain.FailedResult(0, "provider returned no output")
	}

	holdings := c.sanitize(out.Holdings)
	c.log.WithFields(logger.Fields{
		"image":    img.Name,
		"model":    out.ModelUsed,
		"raw":      len(out.Holdings),
		"holdings": len(holdings),
	}).Debug("extraction succeeded")

	return domain.ExtractionResult{
		Success:  true,
		Holdings: holdings,
		Provider: out.ModelUsed,
	}
}

func (c *Client) sanitize(raw []domain.Holding) []domain.Holding {
	holdings := make([]domain.Holding, 0, len(raw))
	for _, h := range raw {
		ticker := strings.TrimSpace(h.Ticker)
		if c.resolver != nil && ticker != "" {
			ticker = c.resolver.Resolve(ticker)
		}
		ticker = strings.ToUpper(ticker)
		if ticker == "" || len([]rune(ticker)) > MaxTickerLen {
			continue
		}
		if math.IsNaN(h.Weight) || math.IsInf(h.Weight, 0) || h.Weight <= 0 {
			continue
		}
		holdings = append(holdings, domain.Holding{Ticker: ticker, Weight: h.Weight})
	}
	return holdings
}

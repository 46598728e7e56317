// Package app assembles the ingestion stack shared by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"

	"folioscan/internal/cache"
	"folioscan/internal/config"
	"folioscan/internal/domain"
	"folioscan/internal/ingest"
	"folioscan/internal/logger"
	"folioscan/internal/ocr"
	"folioscan/internal/port"
)

// LoadMapper builds the ticker mapper. Aliases from repo are added to the
// built-in ones; when repo is nil or fails, only built-in aliases are used.
func LoadMapper(ctx context.Context, repo port.TickerAliasRepository, log *logger.Log) *ocr.TickerMapper {
	if repo == nil {
		return ocr.NewTickerMapper(nil)
	}
	m, err := ocr.LoadTickerMapper(ctx, repo)
	if err != nil {
		log.WithComponent("app").WithError(err).Warn("using built-in ticker aliases only")
		return ocr.NewTickerMapper(nil)
	}
	return m
}

// NewExtractor builds the provider chain wrapped in throttling and caching as configured.
func NewExtractor(cfg *config.Config, mapper *ocr.TickerMapper) (port.HoldingsExtractor, error) {
	chain, err := ocr.NewChain(&cfg.OCR, mapper)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOCRUnavailable, err)
	}

	ex := ocr.NewThrottledExtractor(chain, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	if cfg.Cache.Enabled {
		store := cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
		ex = cache.NewCachingExtractor(ex, store, cfg.Cache.TTL)
	}
	return ex, nil
}

// NewPipeline wires extractor, client, scheduler and pipeline using the batch settings.
func NewPipeline(cfg *config.Config, extractor port.HoldingsExtractor, mapper *ocr.TickerMapper, log *logger.Log) (*ingest.Pipeline, error) {
	var resolver ingest.TickerResolver
	if mapper != nil {
		resolver = mapper
	}
	client := ingest.NewClient(extractor, resolver, log)
	scheduler := ingest.NewScheduler(client,
		ingest.WithDelay(cfg.Batch.Delay),
		ingest.WithLogger(log),
	)
	return ingest.NewPipeline(scheduler, cfg.Batch.Size, log)
}

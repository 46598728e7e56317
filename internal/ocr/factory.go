package ocr

import (
	"fmt"
	"sort"
	"sync"

	"folioscan/internal/config"
	"folioscan/internal/port"
)

// ProviderFactory creates a HoldingsExtractor from a provider config.
// mapper is used by text-only engines to replace company names before parsing.
type ProviderFactory func(cfg *config.OCRProviderConfig, mapper *TickerMapper) (port.HoldingsExtractor, error)

// registry of provider factories, populated by init() in each provider package.
var (
	providersMu sync.RWMutex
	providers   = map[string]ProviderFactory{}
)

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = factory
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	names := make([]string, 0, len(providers))
	for n := range providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewExtractor creates a HoldingsExtractor from a provider config using the registered factory.
func NewExtractor(cfg *config.OCRProviderConfig, mapper *TickerMapper) (port.HoldingsExtractor, error) {
	providersMu.RLock()
	factory, ok := providers[cfg.Provider]
	providersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown OCR provider: %s", cfg.Provider)
	}
	return factory(cfg, mapper)
}

// NewChain builds the configured provider chain.
// A single provider is returned as is; several are wrapped in a FallbackExtractor.
func NewChain(cfg *config.OCRConfig, mapper *TickerMapper) (port.HoldingsExtractor, error) {
	chain := cfg.Chain()
	extractors := make([]port.HoldingsExtractor, 0, len(chain))
	names := make([]string, 0, len(chain))
	for _, pc := range chain {
		ex, err := NewExtractor(pc, mapper)
		if err != nil {
			return nil, fmt.Errorf("creating %s extractor: %w", pc.Provider, err)
		}
		extractors = append(extractors, ex)
		names = append(names, pc.Provider)
	}
	if len(extractors) == 1 {
		return extractors[0], nil
	}
	return NewFallbackExtractor(extractors, names), nil
}

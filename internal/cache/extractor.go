package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"folioscan/internal/logger"
	"folioscan/internal/port"
)

// CachingExtractor memoizes successful extractions by image content and broker.
// Errors and nil outputs are never cached.
type CachingExtractor struct {
	next  port.HoldingsExtractor
	store *MemoryCache
	ttl   time.Duration
	log   *logger.Entry
}

// NewCachingExtractor wraps next with store.
func NewCachingExtractor(next port.HoldingsExtractor, store *MemoryCache, ttl time.Duration) *CachingExtractor {
	return &CachingExtractor{
		next:  next,
		store: store,
		ttl:   ttl,
		log:   logger.L().WithComponent("cache.CachingExtractor"),
	}
}

func (c *CachingExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	key := Key(input)
	if raw, ok := c.store.Get(key); ok {
		var out port.ExtractOutput
		if err := json.Unmarshal(raw, &out); err == nil {
			c.log.WithField("key", key[:12]).Debug("cache hit")
			return &out, nil
		}
		c.store.Delete(key)
	}

	out, err := c.next.Extract(ctx, input)
	if err != nil || out == nil {
		return out, err
	}
	if raw, mErr := json.Marshal(out); mErr == nil {
		c.store.Set(key, raw, c.ttl)
	}
	return out, nil
}

// Key derives the cache key for an extraction input.
func Key(input port.ExtractInput) string {
	h := sha256.New()
	h.Write([]byte(input.Broker))
	h.Write([]byte{0})
	h.Write([]byte(input.ContentType))
	h.Write([]byte{0})
	h.Write(input.ImageBytes)
	return hex.EncodeToString(h.Sum(nil))
}

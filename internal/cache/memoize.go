package cache

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Operation names used as cache-key prefixes. Keeping them distinct means
// mapping and grading results for the same content pair never collide.
const (
	OpGuideType = "guide_type"
	OpMapping   = "mapping"
	OpGrading   = "grading"
	OpOCRText   = "ocr_text"
)

// ComputeFunc produces the value for a cache miss. It is expected to be
// expensive (an LLM or OCR call) and may block until ctx is done.
type ComputeFunc func(ctx context.Context) (interface{}, error)

// Memoizer wraps expensive operations with fingerprint-keyed caching.
// Failures are never cached, so a transient error can be retried on the
// next call. Concurrent calls for the same key are coalesced so the
// underlying operation runs once.
type Memoizer struct {
	cache      *Cache
	ttls       map[string]time.Duration
	defaultTTL time.Duration

	// MaxKeyContent > 0 truncates each content part to that many runes
	// before hashing. This bounds key-construction cost but makes two
	// documents that differ only past the boundary share an entry; full
	// content is the default.
	maxKeyContent int

	group  singleflight.Group
	hits   uint64
	misses uint64
}

// NewMemoizer creates a memoizer over cache with per-operation TTLs.
// Operations missing from ttls fall back to defaultTTL.
func NewMemoizer(cache *Cache, ttls map[string]time.Duration, defaultTTL time.Duration, maxKeyContent int) *Memoizer {
	return &Memoizer{
		cache:         cache,
		ttls:          ttls,
		defaultTTL:    defaultTTL,
		maxKeyContent: maxKeyContent,
	}
}

// Do returns the cached result for op+contentParts, invoking compute on a
// miss and storing its result with the operation's TTL.
func (m *Memoizer) Do(ctx context.Context, op string, contentParts []string, compute ComputeFunc) (interface{}, error) {
	key := m.Key(op, contentParts)

	if value, ok := m.cache.Get(key); ok {
		atomic.AddUint64(&m.hits, 1)
		return value, nil
	}

	value, err, _ := m.group.Do(key, func() (interface{}, error) {
		// Another caller may have populated the cache while we queued.
		if value, ok := m.cache.Get(key); ok {
			return value, nil
		}

		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}

		atomic.AddUint64(&m.misses, 1)
		m.cache.SetTTL(key, value, m.ttl(op))
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Key builds the cache key for op over contentParts.
func (m *Memoizer) Key(op string, contentParts []string) string {
	parts := contentParts
	if m.maxKeyContent > 0 {
		parts = make([]string, len(contentParts))
		for i, part := range contentParts {
			runes := []rune(part)
			if len(runes) > m.maxKeyContent {
				runes = runes[:m.maxKeyContent]
			}
			parts[i] = string(runes)
		}
	}
	return op + ":" + Fingerprint(strings.Join(parts, "\x00"))
}

// Hits returns the number of calls served from cache.
func (m *Memoizer) Hits() uint64 {
	return atomic.LoadUint64(&m.hits)
}

// Misses returns the number of calls that invoked the compute function.
func (m *Memoizer) Misses() uint64 {
	return atomic.LoadUint64(&m.misses)
}

func (m *Memoizer) ttl(op string) time.Duration {
	if ttl, ok := m.ttls[op]; ok {
		return ttl
	}
	return m.defaultTTL
}

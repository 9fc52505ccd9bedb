package cache

import (
	"fmt"

	"go.uber.org/zap"
)

// Cache categories that mutating request paths can invalidate.
const (
	CategoryGuides      = "guides"
	CategorySubmissions = "submissions"
	CategoryStats       = "stats"
)

// knownSuffixes are the per-entity key variants the service writes.
// Keys are reconstructed from these rather than scanned, so enumeration is
// approximate: a key written under an unlisted suffix survives until TTL.
var knownSuffixes = []string{"", "summary", "detail", "list"}

// maxPageRange bounds page-suffixed key enumeration.
const maxPageRange = 20

// Invalidator deletes cache entries derived from a given entity, so that
// mutations (re-uploading a guide, deleting a submission) do not serve
// stale derivations for the rest of their TTL.
type Invalidator struct {
	cache  *Cache
	logger *zap.Logger
}

func NewInvalidator(cache *Cache, logger *zap.Logger) *Invalidator {
	return &Invalidator{cache: cache, logger: logger}
}

// EntityKey builds the canonical cache key for an entity under a category.
// Suffix may be empty.
func EntityKey(category, entityType, entityID, suffix string) string {
	key := fmt.Sprintf("%s:%s:%s", category, entityType, entityID)
	if suffix != "" {
		key += ":" + suffix
	}
	return key
}

// InvalidateForEntity removes all enumerable keys for the entity across the
// given categories. Deleting keys that were never set is harmless.
func (inv *Invalidator) InvalidateForEntity(entityType, entityID string, categories []string) {
	removed := 0
	for _, category := range categories {
		for _, suffix := range knownSuffixes {
			inv.cache.Delete(EntityKey(category, entityType, entityID, suffix))
			removed++
		}
		for page := 1; page <= maxPageRange; page++ {
			inv.cache.Delete(EntityKey(category, entityType, entityID, fmt.Sprintf("page:%d", page)))
			removed++
		}
	}

	inv.logger.Info("cache invalidated for entity",
		zap.String("entity_type", entityType),
		zap.String("entity_id", entityID),
		zap.Strings("categories", categories),
		zap.Int("keys_enumerated", removed))
}

// InvalidateAll clears the entire cache. Administrative use only; normal
// request flows invalidate per entity.
func (inv *Invalidator) InvalidateAll() {
	inv.cache.Clear()
	inv.logger.Warn("cache fully cleared")
}

package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"examgrade/grading/internal/cache"
	"examgrade/grading/internal/middleware"
	"examgrade/grading/internal/models"
	"examgrade/grading/internal/utils"
)

// CacheHandler exposes cache counters and invalidation for admin use.
type CacheHandler struct {
	cache       *cache.Cache
	memoizer    *cache.Memoizer
	invalidator *cache.Invalidator
	logger      *zap.Logger
}

func NewCacheHandler(c *cache.Cache, memoizer *cache.Memoizer, invalidator *cache.Invalidator, logger *zap.Logger) *CacheHandler {
	return &CacheHandler{
		cache:       c,
		memoizer:    memoizer,
		invalidator: invalidator,
		logger:      logger,
	}
}

func (h *CacheHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats := h.cache.Stats()
	utils.JSON(w, http.StatusOK, models.CacheStatsResponse{
		Entries:        stats.Entries,
		Hits:           stats.Hits,
		Misses:         stats.Misses,
		Evictions:      stats.Evictions,
		MemoizedHits:   h.memoizer.Hits(),
		MemoizedMisses: h.memoizer.Misses(),
	})
}

// InvalidateHandler purges cached derivations for an entity, or the whole
// cache when all=true.
func (h *CacheHandler) InvalidateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.InvalidateRequest](r)

	if req.All {
		h.invalidator.InvalidateAll()
		utils.JSON(w, http.StatusOK, map[string]string{"status": "cache cleared"})
		return
	}

	h.invalidator.InvalidateForEntity(utils.NormalizeEntityType(req.EntityType), req.EntityID, req.Categories)
	utils.JSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

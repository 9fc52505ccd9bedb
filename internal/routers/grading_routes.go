package routers

import (
	"examgrade/grading/internal/handlers"
	"examgrade/grading/internal/middleware"
	"examgrade/grading/internal/models"

	"github.com/go-chi/chi/v5"
)

func GradingRoutes(router *chi.Mux, gradingHandler *handlers.GradingHandler, cacheHandler *handlers.CacheHandler) {
	router.Route("/api/v1/grading", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.BatchGradeRequest]()).Post("/batch", gradingHandler.BatchHandler)
		r.With(middleware.ValidateRequest[*models.BatchGradeRequest]()).Post("/batch/async", gradingHandler.AsyncBatchHandler)
		r.Get("/progress/{progressID}", gradingHandler.ProgressHandler)

		r.Get("/cache/stats", cacheHandler.StatsHandler)
		r.With(middleware.ValidateRequest[*models.InvalidateRequest]()).Post("/cache/invalidate", cacheHandler.InvalidateHandler)
	})
}

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"examgrade/grading/internal/grading"
	"examgrade/grading/internal/middleware"
	"examgrade/grading/internal/models"
	"examgrade/grading/internal/store"
	"examgrade/grading/internal/utils"
)

// BatchProcessor is what the handler needs from the orchestrator.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, guide models.Guide, submissions []models.Submission, sink grading.ProgressSink) (*models.BatchResult, error)
}

type GradingHandler struct {
	orchestrator BatchProcessor
	registry     *grading.ProgressRegistry
	store        *store.Store
	logger       *zap.Logger
}

// NewGradingHandler wires the batch endpoints. store may be nil when the
// database is unavailable; results are then simply not persisted.
func NewGradingHandler(orchestrator BatchProcessor, registry *grading.ProgressRegistry, st *store.Store, logger *zap.Logger) *GradingHandler {
	return &GradingHandler{
		orchestrator: orchestrator,
		registry:     registry,
		store:        st,
		logger:       logger,
	}
}

// BatchHandler grades a batch synchronously and returns the full result.
func (h *GradingHandler) BatchHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.BatchGradeRequest](r)

	batch, err := h.orchestrator.ProcessBatch(r.Context(), req.Guide, req.Submissions, nil)
	if err != nil {
		h.logger.Error("batch processing failed", zap.Error(err), zap.String("guide_id", req.Guide.ID))
		utils.JSON(w, http.StatusServiceUnavailable, models.ErrorResponse{
			Code:    "batch_failed",
			Message: "Failed to process batch",
		})
		return
	}

	if h.store != nil {
		if err := h.store.SaveBatchResults(req.Guide.ID, batch); err != nil {
			// persistence is best effort; the caller still gets the result
			h.logger.Error("failed to persist batch results", zap.Error(err),
				zap.String("progress_id", batch.ProgressID))
		}
	}

	utils.JSON(w, http.StatusOK, batch)
}

// AsyncBatchHandler accepts a batch, processes it in the background and
// returns a progress id the client can poll.
func (h *GradingHandler) AsyncBatchHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.BatchGradeRequest](r)

	started := make(chan string, 1)
	go func() {
		// detach from the request context; the batch outlives the response
		batch, err := h.orchestrator.ProcessBatch(context.Background(), req.Guide, req.Submissions, func(snap models.ProgressSnapshot) {
			select {
			case started <- snap.ProgressID:
			default:
			}
		})
		if err != nil {
			h.logger.Error("async batch failed", zap.Error(err), zap.String("guide_id", req.Guide.ID))
			return
		}
		if h.store != nil {
			if err := h.store.SaveBatchResults(req.Guide.ID, batch); err != nil {
				h.logger.Error("failed to persist batch results", zap.Error(err),
					zap.String("progress_id", batch.ProgressID))
			}
		}
	}()

	progressID := <-started

	utils.JSON(w, http.StatusAccepted, models.BatchAcceptedResponse{
		ProgressID:       progressID,
		TotalSubmissions: len(req.Submissions),
		StatusURL:        "/api/v1/grading/progress/" + progressID,
	})
}

// ProgressHandler reports the latest snapshot for a running batch.
func (h *GradingHandler) ProgressHandler(w http.ResponseWriter, r *http.Request) {
	progressID := chi.URLParam(r, "progressID")

	snap, ok := h.registry.Get(progressID)
	if !ok {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "progress_not_found",
			Message: "No progress recorded for this id",
		})
		return
	}

	utils.JSON(w, http.StatusOK, snap)
}

package routers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"examgrade/grading/internal/cache"
	"examgrade/grading/internal/config"
	"examgrade/grading/internal/grading"
	"examgrade/grading/internal/handlers"
	"examgrade/grading/internal/llm"
	"examgrade/grading/internal/models"
)

type stubProvider struct{}

func (stubProvider) DetermineGuideType(context.Context, string) (*llm.GuideTypeResult, error) {
	return &llm.GuideTypeResult{GuideType: models.GuideTypeQuestionBased}, nil
}

func (stubProvider) MapSubmissionToGuide(context.Context, string, string, string) (*models.MappingResult, error) {
	return &models.MappingResult{}, nil
}

func (stubProvider) GradeSubmission(context.Context, string, string, *models.MappingResult) (*models.GradingResult, error) {
	return &models.GradingResult{}, nil
}

func (stubProvider) GetProviderName() string { return "stub" }

var _ llm.Provider = (*stubProvider)(nil)

func TestHealthRoutes(t *testing.T) {
	router := chi.NewRouter()
	handler := handlers.NewHealthHandler(stubProvider{}, &config.Config{Provider: "gemini"})

	HealthRoutes(router, handler)

	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("/healthz route not registered correctly, got status %d", rec.Code)
	}
}

func TestGradingRoutesRegistersEndpoints(t *testing.T) {
	router := chi.NewRouter()
	logger := zap.NewNop()

	sharedCache := cache.New(time.Hour, 0)
	memoizer := cache.NewMemoizer(sharedCache, nil, time.Hour, 0)
	invalidator := cache.NewInvalidator(sharedCache, logger)
	registry := grading.NewProgressRegistry(sharedCache, time.Hour)
	orchestrator := grading.NewOrchestrator(stubProvider{}, memoizer, registry, &config.Config{WorkerPoolSize: 1}, logger)

	gradingHandler := handlers.NewGradingHandler(orchestrator, registry, nil, logger)
	cacheHandler := handlers.NewCacheHandler(sharedCache, memoizer, invalidator, logger)

	GradingRoutes(router, gradingHandler, cacheHandler)

	paths := map[string]bool{}
	if err := chi.Walk(router, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		paths[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("failed walking routes: %v", err)
	}

	expected := []string{
		"POST /api/v1/grading/batch",
		"POST /api/v1/grading/batch/async",
		"GET /api/v1/grading/progress/{progressID}",
		"GET /api/v1/grading/cache/stats",
		"POST /api/v1/grading/cache/invalidate",
	}

	for _, route := range expected {
		if !paths[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

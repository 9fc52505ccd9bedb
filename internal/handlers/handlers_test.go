package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"examgrade/grading/internal/cache"
	"examgrade/grading/internal/grading"
	"examgrade/grading/internal/middleware"
	"examgrade/grading/internal/models"
)

// mockBatchProcessor lets each test script what a batch run does.
type mockBatchProcessor struct {
	processFn func(ctx context.Context, guide models.Guide, submissions []models.Submission, sink grading.ProgressSink) (*models.BatchResult, error)
}

func (m *mockBatchProcessor) ProcessBatch(ctx context.Context, guide models.Guide, submissions []models.Submission, sink grading.ProgressSink) (*models.BatchResult, error) {
	return m.processFn(ctx, guide, submissions, sink)
}

func newTestRegistry() (*grading.ProgressRegistry, *cache.Cache) {
	c := cache.New(time.Hour, 0)
	return grading.NewProgressRegistry(c, time.Hour), c
}

// postJSON runs a handler behind the validation middleware, the way the
// router mounts it.
func postJSON[T middleware.Validator](t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()

	wrapped := middleware.ValidateRequest[T]()(handler)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	wrapped.ServeHTTP(recorder, req)
	return recorder
}

func noopLogger() *zap.Logger {
	return zap.NewNop()
}

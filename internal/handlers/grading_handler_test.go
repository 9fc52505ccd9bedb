package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"examgrade/grading/internal/grading"
	"examgrade/grading/internal/models"
)

const validBatchBody = `{
	"guide": {"id": "g1", "content": "Q1: 2+2? (10 marks)"},
	"submissions": [
		{"id": "1", "content": "four"},
		{"id": "2", "content": "five"}
	]
}`

func TestBatchHandlerSuccess(t *testing.T) {
	processor := &mockBatchProcessor{
		processFn: func(ctx context.Context, guide models.Guide, submissions []models.Submission, sink grading.ProgressSink) (*models.BatchResult, error) {
			if guide.ID != "g1" || len(submissions) != 2 {
				t.Fatalf("handler passed wrong request: guide=%s subs=%d", guide.ID, len(submissions))
			}
			return &models.BatchResult{
				ProgressID:       "p1",
				TotalSubmissions: len(submissions),
				SuccessfulCount:  2,
			}, nil
		},
	}
	registry, _ := newTestRegistry()
	handler := NewGradingHandler(processor, registry, nil, noopLogger())

	recorder := postJSON[*models.BatchGradeRequest](t, handler.BatchHandler, validBatchBody)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var batch models.BatchResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &batch); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if batch.ProgressID != "p1" || batch.SuccessfulCount != 2 {
		t.Fatalf("unexpected batch in response: %+v", batch)
	}
}

func TestBatchHandlerProcessorFailure(t *testing.T) {
	processor := &mockBatchProcessor{
		processFn: func(ctx context.Context, guide models.Guide, submissions []models.Submission, sink grading.ProgressSink) (*models.BatchResult, error) {
			return nil, errors.New("provider down")
		},
	}
	registry, _ := newTestRegistry()
	handler := NewGradingHandler(processor, registry, nil, noopLogger())

	recorder := postJSON[*models.BatchGradeRequest](t, handler.BatchHandler, validBatchBody)

	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", recorder.Code)
	}
	var errResp models.ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if errResp.Code != "batch_failed" {
		t.Fatalf("unexpected error code %q", errResp.Code)
	}
}

func TestBatchHandlerRejectsInvalidJSON(t *testing.T) {
	registry, _ := newTestRegistry()
	handler := NewGradingHandler(&mockBatchProcessor{}, registry, nil, noopLogger())

	recorder := postJSON[*models.BatchGradeRequest](t, handler.BatchHandler, "{not json")

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
	var errResp models.ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if errResp.Code != "invalid_json" {
		t.Fatalf("unexpected error code %q", errResp.Code)
	}
}

func TestBatchHandlerRejectsMissingGuideContent(t *testing.T) {
	registry, _ := newTestRegistry()
	handler := NewGradingHandler(&mockBatchProcessor{}, registry, nil, noopLogger())

	body := `{"guide": {"id": "g1", "content": "  "}, "submissions": [{"id": "1", "content": "x"}]}`
	recorder := postJSON[*models.BatchGradeRequest](t, handler.BatchHandler, body)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
	var errResp models.ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if errResp.Code != "missing_guide_content" {
		t.Fatalf("unexpected error code %q", errResp.Code)
	}
}

func TestAsyncBatchHandlerReturnsProgressID(t *testing.T) {
	processor := &mockBatchProcessor{
		processFn: func(ctx context.Context, guide models.Guide, submissions []models.Submission, sink grading.ProgressSink) (*models.BatchResult, error) {
			sink(models.ProgressSnapshot{ProgressID: "p1", Stage: models.StageInitializing})
			return &models.BatchResult{ProgressID: "p1"}, nil
		},
	}
	registry, _ := newTestRegistry()
	handler := NewGradingHandler(processor, registry, nil, noopLogger())

	recorder := postJSON[*models.BatchGradeRequest](t, handler.AsyncBatchHandler, validBatchBody)

	if recorder.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var accepted models.BatchAcceptedResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if accepted.ProgressID != "p1" || accepted.TotalSubmissions != 2 {
		t.Fatalf("unexpected accepted response: %+v", accepted)
	}
	if accepted.StatusURL != "/api/v1/grading/progress/p1" {
		t.Fatalf("unexpected status url %q", accepted.StatusURL)
	}
}

func TestProgressHandler(t *testing.T) {
	registry, _ := newTestRegistry()
	registry.Sink()(models.ProgressSnapshot{
		ProgressID: "p1",
		Stage:      models.StageProcessing,
		Percentage: 42,
	})
	handler := NewGradingHandler(&mockBatchProcessor{}, registry, nil, noopLogger())

	router := chi.NewRouter()
	router.Get("/progress/{progressID}", handler.ProgressHandler)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/progress/p1", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var snap models.ProgressSnapshot
	if err := json.Unmarshal(recorder.Body.Bytes(), &snap); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if snap.Stage != models.StageProcessing || snap.Percentage != 42 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestProgressHandlerNotFound(t *testing.T) {
	registry, _ := newTestRegistry()
	handler := NewGradingHandler(&mockBatchProcessor{}, registry, nil, noopLogger())

	router := chi.NewRouter()
	router.Get("/progress/{progressID}", handler.ProgressHandler)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/progress/unknown", nil))

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
}

package llm

import (
	"context"

	"examgrade/grading/internal/models"
)

// result of guide-type determination
type GuideTypeResult struct {
	GuideType  string  `json:"guide_type"`
	Confidence float64 `json:"confidence"`
}

// defines the interface for grading providers
type Provider interface {
	DetermineGuideType(ctx context.Context, guideContent string) (*GuideTypeResult, error)
	MapSubmissionToGuide(ctx context.Context, guideContent, submissionContent, guideType string) (*models.MappingResult, error)
	GradeSubmission(ctx context.Context, guideContent, submissionContent string, mapping *models.MappingResult) (*models.GradingResult, error)
	GetProviderName() string
}

// represents an error from a grading provider
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
// For current and future use across different providers
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeRateLimit    = "rate_limit_exceeded"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeTimeout      = "timeout"
)

// Transient reports whether the failure is worth retrying with backoff.
// Invalid input and bad credentials will not heal on retry.
func (e *ProviderError) Transient() bool {
	switch e.Code {
	case ErrCodeRateLimit, ErrCodeServiceDown, ErrCodeTimeout:
		return true
	}
	return false
}

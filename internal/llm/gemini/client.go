package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"examgrade/grading/internal/llm"
	"examgrade/grading/internal/models"
	"examgrade/grading/internal/prompts"
	"examgrade/grading/internal/utils"
)

// Client implements the grading provider on top of the Gemini API.
type Client struct {
	client  *genai.Client
	config  *Config
	prompts prompts.PromptProvider
}

func NewClient(config *Config) (*Client, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		return nil, fmt.Errorf("failed to load grading prompts: %w", err)
	}

	return &Client{
		client:  client,
		config:  config,
		prompts: promptManager,
	}, nil
}

// DetermineGuideType classifies the marking guide.
func (c *Client) DetermineGuideType(ctx context.Context, guideContent string) (*llm.GuideTypeResult, error) {
	prompt, err := c.prompts.BuildPrompt("guide_type", map[string]string{
		"GuideContent": guideContent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build guide type prompt: %w", err)
	}

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var result llm.GuideTypeResult
	if err := c.decode(raw, &result); err != nil {
		return nil, err
	}
	if result.GuideType == "" {
		result.GuideType = models.GuideTypeUnknown
	}
	return &result, nil
}

// MapSubmissionToGuide pairs the submission's answers with guide questions.
func (c *Client) MapSubmissionToGuide(ctx context.Context, guideContent, submissionContent, guideType string) (*models.MappingResult, error) {
	prompt, err := c.prompts.BuildPrompt("mapping", map[string]string{
		"GuideContent":      guideContent,
		"SubmissionContent": submissionContent,
		"GuideType":         guideType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build mapping prompt: %w", err)
	}

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var result models.MappingResult
	if err := c.decode(raw, &result); err != nil {
		return nil, err
	}
	if result.GuideType == "" {
		result.GuideType = guideType
	}
	return &result, nil
}

// GradeSubmission scores the submission against the guide using an
// existing mapping.
func (c *Client) GradeSubmission(ctx context.Context, guideContent, submissionContent string, mapping *models.MappingResult) (*models.GradingResult, error) {
	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize mapping: %w", err)
	}

	prompt, err := c.prompts.BuildPrompt("grading", map[string]string{
		"GuideContent":      guideContent,
		"SubmissionContent": submissionContent,
		"Mapping":           string(mappingJSON),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build grading prompt: %w", err)
	}

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var result models.GradingResult
	if err := c.decode(raw, &result); err != nil {
		return nil, err
	}
	if result.MaxScore > 0 && result.Percentage == 0 {
		result.Percentage = result.TotalScore / result.MaxScore * 100
	}
	return &result, nil
}

func (c *Client) GetProviderName() string {
	return "gemini"
}

// generate performs one model call and returns the raw response text.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	result, err := c.client.Models.GenerateContent(
		ctx,
		c.config.Model,
		genai.Text(prompt),
		nil,
	)
	if err != nil {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     classifyError(ctx, err),
			Message:  "Failed to generate content",
			Err:      err,
		}
	}

	if result == nil {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "No response generated",
		}
	}

	text, err := result.Text()
	if err != nil {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Failed to extract response text",
			Err:      err,
		}
	}
	if text == "" {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty response generated",
		}
	}

	return text, nil
}

// decode parses the JSON body of a model reply, tolerating code fences.
func (c *Client) decode(raw string, out interface{}) error {
	cleaned := utils.StripFences(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Response was not valid JSON",
			Err:      err,
		}
	}
	return nil
}

// classifyError maps transport failures onto provider error codes so the
// retry layer can tell transient from permanent.
func classifyError(ctx context.Context, err error) string {
	if ctx.Err() == context.DeadlineExceeded {
		return llm.ErrCodeTimeout
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "429"):
		return llm.ErrCodeRateLimit
	case strings.Contains(msg, "API key") || strings.Contains(msg, "401") || strings.Contains(msg, "403"):
		return llm.ErrCodeAPIKey
	case strings.Contains(msg, "deadline") || strings.Contains(msg, "timeout"):
		return llm.ErrCodeTimeout
	default:
		return llm.ErrCodeServiceDown
	}
}

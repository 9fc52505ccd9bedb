package models

import "strings"

// maximum submissions accepted in one batch request
const MaxBatchSize = 200

type BatchGradeRequest struct {
	Guide       Guide        `json:"guide"`
	Submissions []Submission `json:"submissions"`
}

// implements the Validator interface
func (r *BatchGradeRequest) Validate() error {
	if strings.TrimSpace(r.Guide.Content) == "" {
		return &ErrorResponse{
			Code:    "missing_guide_content",
			Message: "Guide content is required",
		}
	}
	if r.Guide.ID == "" {
		return &ErrorResponse{
			Code:    "missing_guide_id",
			Message: "Guide id is required",
		}
	}

	if len(r.Submissions) == 0 {
		return &ErrorResponse{
			Code:    "missing_submissions",
			Message: "At least one submission is required",
		}
	}
	if len(r.Submissions) > MaxBatchSize {
		return &ErrorResponse{
			Code:    "batch_too_large",
			Message: "Batch exceeds the maximum submission count",
		}
	}

	seen := make(map[string]bool, len(r.Submissions))
	for _, sub := range r.Submissions {
		if sub.ID == "" {
			return &ErrorResponse{
				Code:    "missing_submission_id",
				Message: "Every submission requires an id",
			}
		}
		if seen[sub.ID] {
			return &ErrorResponse{
				Code:    "duplicate_submission_id",
				Message: "Submission ids must be unique within a batch",
			}
		}
		seen[sub.ID] = true
	}

	return nil
}

type InvalidateRequest struct {
	EntityType string   `json:"entity_type"`
	EntityID   string   `json:"entity_id"`
	Categories []string `json:"categories"`
	All        bool     `json:"all,omitempty"`
}

func (r *InvalidateRequest) Validate() error {
	if r.All {
		return nil
	}
	if r.EntityType == "" || r.EntityID == "" {
		return &ErrorResponse{
			Code:    "missing_entity",
			Message: "entity_type and entity_id are required unless all=true",
		}
	}
	if len(r.Categories) == 0 {
		return &ErrorResponse{
			Code:    "missing_categories",
			Message: "At least one cache category is required",
		}
	}
	return nil
}

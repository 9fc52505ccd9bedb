package models

import "time"

// Guide is a marking guide already materialized in memory.
// Text extraction happens upstream; the pipeline only sees content.
type Guide struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Submission is one student's answer document.
type Submission struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// QuestionMapping pairs one guide question with the submission text that
// answers it.
type QuestionMapping struct {
	QuestionID string  `json:"question_id"`
	Question   string  `json:"question"`
	AnswerText string  `json:"answer_text"`
	MaxMarks   float64 `json:"max_marks"`
}

// MappingResult is the structured outcome of mapping a submission onto a
// guide.
type MappingResult struct {
	Mappings  []QuestionMapping `json:"mappings"`
	GuideType string            `json:"guide_type"`
}

// QuestionGrade is the score for a single mapped question.
type QuestionGrade struct {
	QuestionID string  `json:"question_id"`
	Score      float64 `json:"score"`
	MaxMarks   float64 `json:"max_marks"`
	Feedback   string  `json:"feedback,omitempty"`
}

// GradingResult is the structured outcome of grading one submission.
type GradingResult struct {
	Grades     []QuestionGrade `json:"grades"`
	TotalScore float64         `json:"total_score"`
	MaxScore   float64         `json:"max_score"`
	Percentage float64         `json:"percentage"`
	Confidence float64         `json:"confidence"`
	Feedback   string          `json:"feedback,omitempty"`
}

// SubmissionResult is the per-submission outcome inside a batch result.
// Duplicates carry the representative's mapping/grading with IsDuplicate
// set and OriginalSubmissionID pointing at the computed copy.
type SubmissionResult struct {
	SubmissionID         string         `json:"submission_id"`
	Status               string         `json:"status"` // StatusSuccess | StatusError
	Mapping              *MappingResult `json:"mapping_result,omitempty"`
	Grading              *GradingResult `json:"grading_result,omitempty"`
	Error                string         `json:"error,omitempty"`
	IsDuplicate          bool           `json:"is_duplicate"`
	OriginalSubmissionID string         `json:"original_submission_id,omitempty"`
}

// BatchResult is the outcome of one full batch run.
type BatchResult struct {
	ProgressID        string             `json:"progress_id"`
	GuideType         string             `json:"guide_type"`
	TotalSubmissions  int                `json:"total_submissions"`
	SuccessfulCount   int                `json:"successful_count"`
	FailedCount       int                `json:"failed_count"`
	AverageScore      float64            `json:"average_score"`
	Results           []SubmissionResult `json:"results"`
	ProcessingSeconds float64            `json:"processing_time_seconds"`
	Cancelled         bool               `json:"cancelled,omitempty"`
}

// ProgressSnapshot is the state handed to progress sinks after every stage
// transition and submission completion. It references submissions only by
// id, never by content.
type ProgressSnapshot struct {
	ProgressID       string    `json:"progress_id"`
	Stage            string    `json:"current_stage"`
	Percentage       float64   `json:"percentage"`
	Message          string    `json:"message,omitempty"`
	TotalItems       int       `json:"total_items"`
	CurrentItemIndex int       `json:"current_item_index"`
	Errors           []string  `json:"errors,omitempty"`
	Warnings         []string  `json:"warnings,omitempty"`
	StartTime        time.Time `json:"start_time"`
	ElapsedSeconds   float64   `json:"elapsed_seconds"`
	RemainingSeconds float64   `json:"estimated_remaining_seconds"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// GuideRecord persists an uploaded marking guide.
type GuideRecord struct {
	gorm.Model
	GuideID     string `gorm:"uniqueIndex;not null" json:"guide_id"`
	Title       string `json:"title"`
	Content     string `gorm:"type:text;not null" json:"content"`
	GuideType   string `json:"guide_type"`
	Fingerprint string `gorm:"index" json:"fingerprint"`
	UploadedBy  string `gorm:"index" json:"uploaded_by"`
}

// SubmissionRecord persists one student submission's extracted text.
type SubmissionRecord struct {
	gorm.Model
	SubmissionID string `gorm:"uniqueIndex;not null" json:"submission_id"`
	GuideID      string `gorm:"index;not null" json:"guide_id"`
	StudentName  string `json:"student_name"`
	Content      string `gorm:"type:text" json:"content"`
	Fingerprint  string `gorm:"index" json:"fingerprint"`
}

// GradeRecord persists the outcome of grading one submission in a batch.
// Exported flags drive the JSONL results exporter job.
type GradeRecord struct {
	gorm.Model
	ProgressID           string     `gorm:"index;not null" json:"progress_id"`
	SubmissionID         string     `gorm:"index;not null" json:"submission_id"`
	GuideID              string     `gorm:"index;not null" json:"guide_id"`
	Status               string     `gorm:"not null" json:"status"`
	Score                float64    `json:"score"`
	MaxScore             float64    `json:"max_score"`
	Percentage           float64    `json:"percentage"`
	Feedback             string     `gorm:"type:text" json:"feedback"`
	ErrorMessage         string     `json:"error_message,omitempty"`
	IsDuplicate          bool       `gorm:"not null;default:false" json:"is_duplicate"`
	OriginalSubmissionID string     `json:"original_submission_id,omitempty"`
	GradedAt             time.Time  `gorm:"not null" json:"graded_at"`
	Exported             bool       `gorm:"not null;default:false;index" json:"exported"`
	ExportedAt           *time.Time `json:"exported_at"`
}

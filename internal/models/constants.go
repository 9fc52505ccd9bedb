package models

// Pipeline stages for a batch run.
const (
	StageInitializing  = "initializing"
	StageGuideAnalysis = "guide_analysis"
	StageProcessing    = "processing"
	StageFinalizing    = "finalizing"
	StageCompleted     = "completed"
	StageCancelled     = "cancelled"
	StageError         = "error"
)

// Per-submission result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Guide types the analysis step can report.
const (
	GuideTypeQuestionBased = "question_based"
	GuideTypeRubricBased   = "rubric_based"
	GuideTypeUnknown       = "unknown"
)

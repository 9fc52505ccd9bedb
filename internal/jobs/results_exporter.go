package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"examgrade/grading/internal/models"
	"examgrade/grading/internal/store"
)

// ResultsExporterJob periodically exports finished grade records to JSONL
// files for downstream reporting.
type ResultsExporterJob struct {
	store  *store.Store
	config *ExporterConfig
	logger *zap.Logger
	cron   *cron.Cron
}

// ExporterConfig contains configuration for the exporter job
type ExporterConfig struct {
	Schedule      string // Cron schedule (e.g., "0 2 * * *" for 2 AM daily)
	ExportDir     string // Directory to store exported files
	ExportEnabled bool   // Whether to run exports
}

// NewResultsExporterJob creates a new exporter job
func NewResultsExporterJob(st *store.Store, config *ExporterConfig, logger *zap.Logger) *ResultsExporterJob {
	return &ResultsExporterJob{
		store:  st,
		config: config,
		logger: logger,
		cron:   cron.New(),
	}
}

// Start begins the scheduled export job
func (job *ResultsExporterJob) Start() error {
	if !job.config.ExportEnabled {
		job.logger.Info("results export is disabled, skipping scheduler")
		return nil
	}

	_, err := job.cron.AddFunc(job.config.Schedule, func() {
		if err := job.RunExport(); err != nil {
			job.logger.Error("results export run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}

	job.cron.Start()
	job.logger.Info("results exporter started", zap.String("schedule", job.config.Schedule))

	return nil
}

// Stop stops the scheduled export job
func (job *ResultsExporterJob) Stop() {
	if job.cron != nil {
		job.cron.Stop()
		job.logger.Info("results exporter stopped")
	}
}

// RunExport performs a single export run
func (job *ResultsExporterJob) RunExport() error {
	grades, err := job.store.GetUnexportedGrades(0) // no limit
	if err != nil {
		return fmt.Errorf("failed to get unexported grades: %w", err)
	}

	if len(grades) == 0 {
		job.logger.Info("no unexported grades found")
		return nil
	}

	jsonlData, err := ExportToJSONL(grades)
	if err != nil {
		return fmt.Errorf("failed to export to JSONL: %w", err)
	}

	if err := os.MkdirAll(job.config.ExportDir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("grades_export_%s.jsonl", timestamp)
	path := filepath.Join(job.config.ExportDir, filename)

	if err := os.WriteFile(path, jsonlData, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	ids := make([]uint, len(grades))
	for i, grade := range grades {
		ids[i] = grade.ID
	}
	if err := job.store.MarkGradesExported(ids); err != nil {
		return fmt.Errorf("failed to mark grades as exported: %w", err)
	}

	job.logger.Info("exported grade records",
		zap.Int("count", len(grades)),
		zap.String("file", path))

	return nil
}

// ExportToJSONL renders grade records as one JSON object per line.
func ExportToJSONL(grades []models.GradeRecord) ([]byte, error) {
	var out []byte
	for i, grade := range grades {
		line, err := json.Marshal(grade)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal grade record: %w", err)
		}
		out = append(out, line...)
		if i < len(grades)-1 {
			out = append(out, '\n')
		}
	}
	return out, nil
}

package store

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"examgrade/grading/internal/cache"
	"examgrade/grading/internal/models"
	"examgrade/grading/internal/utils"
)

// Store handles persistence for guides, submissions and grade records.
// The grading pipeline itself never touches the database; handlers load
// and save through the store around a batch run.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the grading tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.GuideRecord{}, &models.SubmissionRecord{}, &models.GradeRecord{})
}

// SaveGuide upserts a guide by its external id, refreshing the content
// fingerprint.
func (s *Store) SaveGuide(guide *models.GuideRecord) error {
	guide.Fingerprint = cache.Fingerprint(utils.NormalizeContent(guide.Content))

	var existing models.GuideRecord
	err := s.db.Where("guide_id = ?", guide.GuideID).First(&existing).Error
	if err == nil {
		guide.ID = existing.ID
		guide.CreatedAt = existing.CreatedAt
		if err := s.db.Save(guide).Error; err != nil {
			return fmt.Errorf("failed to update guide: %w", err)
		}
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("failed to look up guide: %w", err)
	}

	if err := s.db.Create(guide).Error; err != nil {
		return fmt.Errorf("failed to store guide: %w", err)
	}
	return nil
}

// GetGuide reads a guide by its external id.
func (s *Store) GetGuide(guideID string) (*models.GuideRecord, error) {
	var guide models.GuideRecord
	if err := s.db.Where("guide_id = ?", guideID).First(&guide).Error; err != nil {
		return nil, fmt.Errorf("failed to get guide %s: %w", guideID, err)
	}
	return &guide, nil
}

// SaveSubmission stores one submission's extracted text.
func (s *Store) SaveSubmission(sub *models.SubmissionRecord) error {
	sub.Fingerprint = cache.Fingerprint(utils.NormalizeContent(sub.Content))
	if err := s.db.Create(sub).Error; err != nil {
		return fmt.Errorf("failed to store submission: %w", err)
	}
	return nil
}

// SaveBatchResults writes one grade record per submission result.
func (s *Store) SaveBatchResults(guideID string, batch *models.BatchResult) error {
	now := time.Now()
	records := make([]models.GradeRecord, 0, len(batch.Results))

	for _, result := range batch.Results {
		record := models.GradeRecord{
			ProgressID:           batch.ProgressID,
			SubmissionID:         result.SubmissionID,
			GuideID:              guideID,
			Status:               result.Status,
			ErrorMessage:         result.Error,
			IsDuplicate:          result.IsDuplicate,
			OriginalSubmissionID: result.OriginalSubmissionID,
			GradedAt:             now,
		}
		if result.Grading != nil {
			record.Score = result.Grading.TotalScore
			record.MaxScore = result.Grading.MaxScore
			record.Percentage = result.Grading.Percentage
			record.Feedback = result.Grading.Feedback
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil
	}
	if err := s.db.Create(&records).Error; err != nil {
		return fmt.Errorf("failed to store grade records: %w", err)
	}
	return nil
}

// GetUnexportedGrades retrieves grade records not yet exported, oldest first.
func (s *Store) GetUnexportedGrades(limit int) ([]models.GradeRecord, error) {
	var grades []models.GradeRecord

	query := s.db.Where("exported = ?", false).Order("graded_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&grades).Error; err != nil {
		return nil, fmt.Errorf("failed to get unexported grades: %w", err)
	}
	return grades, nil
}

// MarkGradesExported flags grade records as exported.
func (s *Store) MarkGradesExported(ids []uint) error {
	now := time.Now()
	result := s.db.Model(&models.GradeRecord{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"exported":    true,
			"exported_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark grades as exported: %w", result.Error)
	}
	return nil
}

// GradeStats summarizes stored grade records for dashboards.
func (s *Store) GradeStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total int64
	if err := s.db.Model(&models.GradeRecord{}).Count(&total).Error; err != nil {
		return nil, err
	}
	stats["total_count"] = total

	var successful int64
	if err := s.db.Model(&models.GradeRecord{}).Where("status = ?", models.StatusSuccess).Count(&successful).Error; err != nil {
		return nil, err
	}
	stats["successful_count"] = successful

	var duplicates int64
	if err := s.db.Model(&models.GradeRecord{}).Where("is_duplicate = ?", true).Count(&duplicates).Error; err != nil {
		return nil, err
	}
	stats["duplicate_count"] = duplicates

	var unexported int64
	if err := s.db.Model(&models.GradeRecord{}).Where("exported = ?", false).Count(&unexported).Error; err != nil {
		return nil, err
	}
	stats["unexported_count"] = unexported

	return stats, nil
}

package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talentmatch/resume-engine/internal/models"
)

type MatchRepository interface {
	Create(result *models.MatchResult) error
	FindByProfileAndJob(profileVersionID, jobID uuid.UUID, jobVersion int) (*models.MatchResult, error)
	ListByJob(jobID uuid.UUID, jobVersion int) ([]*models.MatchResult, error)
}

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Create(result *models.MatchResult) error {
	if err := r.db.Create(result).Error; err != nil {
		return fmt.Errorf("failed to create match result: %w", err)
	}
	return nil
}

// FindByProfileAndJob looks up a stored result for the exact job version.
// A hit means the scores can be reused verbatim; they are deterministic.
func (r *matchRepository) FindByProfileAndJob(profileVersionID, jobID uuid.UUID, jobVersion int) (*models.MatchResult, error) {
	var result models.MatchResult
	err := r.db.
		Where("profile_version_id = ? AND job_id = ? AND job_version = ?", profileVersionID, jobID, jobVersion).
		First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find match result: %w", err)
	}
	return &result, nil
}

func (r *matchRepository) ListByJob(jobID uuid.UUID, jobVersion int) ([]*models.MatchResult, error) {
	var results []*models.MatchResult
	err := r.db.
		Where("job_id = ? AND job_version = ?", jobID, jobVersion).
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list match results: %w", err)
	}
	return results, nil
}

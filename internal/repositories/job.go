package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talentmatch/resume-engine/internal/models"
)

type JobRepository interface {
	Create(job *models.JobRequirement) error
	FindByID(id uuid.UUID) (*models.JobRequirement, error)
	Update(job *models.JobRequirement) error
	List(limit int) ([]models.JobRequirement, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(job *models.JobRequirement) error {
	if err := r.db.Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job requirement: %w", err)
	}
	return nil
}

func (r *jobRepository) FindByID(id uuid.UUID) (*models.JobRequirement, error) {
	var job models.JobRequirement
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("job requirement not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find job requirement: %w", err)
	}
	return &job, nil
}

// Update saves the full row; the BeforeUpdate hook bumps the version so
// previously computed matches no longer satisfy the current job.
func (r *jobRepository) Update(job *models.JobRequirement) error {
	if err := r.db.Save(job).Error; err != nil {
		return fmt.Errorf("failed to update job requirement: %w", err)
	}
	return nil
}

func (r *jobRepository) List(limit int) ([]models.JobRequirement, error) {
	var jobs []models.JobRequirement
	if err := r.db.Order("created_at DESC").Limit(limit).Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list job requirements: %w", err)
	}
	return jobs, nil
}

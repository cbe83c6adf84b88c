package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talentmatch/resume-engine/internal/models"
)

type TaskRepository interface {
	Create(task *models.ProcessingTask) error
	FindByID(id uuid.UUID) (*models.ProcessingTask, error)
	FindOpenByDocument(documentID uuid.UUID) (*models.ProcessingTask, error)
	FindPendingTasks(limit int) ([]models.ProcessingTask, error)
	MarkProcessing(id uuid.UUID) error
	MarkCompleted(id uuid.UUID, profileVersionID uuid.UUID) error
	MarkFailed(id uuid.UUID, errorMsg string) error
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(task *models.ProcessingTask) error {
	if err := r.db.Create(task).Error; err != nil {
		return fmt.Errorf("failed to create processing task: %w", err)
	}
	return nil
}

func (r *taskRepository) FindByID(id uuid.UUID) (*models.ProcessingTask, error) {
	var task models.ProcessingTask
	if err := r.db.Where("id = ?", id).First(&task).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("task not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// FindOpenByDocument returns the pending or running task for the document,
// or nil when none is open. Submitting while a task is open returns that
// same task instead of creating another.
func (r *taskRepository) FindOpenByDocument(documentID uuid.UUID) (*models.ProcessingTask, error) {
	var task models.ProcessingTask
	err := r.db.
		Where("document_id = ? AND status IN ?", documentID,
			[]models.TaskStatus{models.TaskPending, models.TaskProcessing}).
		Order("created_at DESC").
		First(&task).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open task: %w", err)
	}
	return &task, nil
}

func (r *taskRepository) FindPendingTasks(limit int) ([]models.ProcessingTask, error) {
	var tasks []models.ProcessingTask
	err := r.db.
		Where("status = ?", models.TaskPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending tasks: %w", err)
	}
	return tasks, nil
}

// MarkProcessing transitions pending -> processing. The status guard makes
// the claim atomic, so two workers polling the same row race safely.
func (r *taskRepository) MarkProcessing(id uuid.UUID) error {
	now := time.Now()
	result := r.db.Model(&models.ProcessingTask{}).
		Where("id = ? AND status = ?", id, models.TaskPending).
		Updates(map[string]interface{}{
			"status":     models.TaskProcessing,
			"started_at": now,
			"attempts":   gorm.Expr("attempts + 1"),
			"updated_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark task processing: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("task not claimable")
	}
	return nil
}

func (r *taskRepository) MarkCompleted(id uuid.UUID, profileVersionID uuid.UUID) error {
	now := time.Now()
	result := r.db.Model(&models.ProcessingTask{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":             models.TaskCompleted,
			"profile_version_id": profileVersionID,
			"finished_at":        now,
			"updated_at":         now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark task completed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("task not found")
	}
	return nil
}

func (r *taskRepository) MarkFailed(id uuid.UUID, errorMsg string) error {
	now := time.Now()
	result := r.db.Model(&models.ProcessingTask{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.TaskFailed,
			"error_message": errorMsg,
			"finished_at":   now,
			"updated_at":    now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark task failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("task not found")
	}
	return nil
}

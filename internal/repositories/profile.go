package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talentmatch/resume-engine/internal/models"
)

type ProfileRepository interface {
	CreateNextVersion(version *models.ProfileVersion) error
	FindByID(id uuid.UUID) (*models.ProfileVersion, error)
	FindLatestByDocument(documentID uuid.UUID) (*models.ProfileVersion, error)
	FindByIDs(ids []uuid.UUID) ([]models.ProfileVersion, error)
	ListLatest(limit int) ([]models.ProfileVersion, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// CreateNextVersion assigns the next version number for the document and
// inserts the row in one transaction. Existing versions are never touched.
func (r *profileRepository) CreateNextVersion(version *models.ProfileVersion) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var current int
		err := tx.Model(&models.ProfileVersion{}).
			Where("document_id = ?", version.DocumentID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&current).Error
		if err != nil {
			return fmt.Errorf("failed to determine next profile version: %w", err)
		}

		version.Version = current + 1
		if err := tx.Create(version).Error; err != nil {
			return fmt.Errorf("failed to create profile version: %w", err)
		}
		return nil
	})
}

func (r *profileRepository) FindByID(id uuid.UUID) (*models.ProfileVersion, error) {
	var version models.ProfileVersion
	if err := r.db.Where("id = ?", id).First(&version).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("profile version not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find profile version: %w", err)
	}
	return &version, nil
}

func (r *profileRepository) FindLatestByDocument(documentID uuid.UUID) (*models.ProfileVersion, error) {
	var version models.ProfileVersion
	err := r.db.Where("document_id = ?", documentID).
		Order("version DESC").
		First(&version).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("no profile version for document: %w", err)
		}
		return nil, fmt.Errorf("failed to find latest profile version: %w", err)
	}
	return &version, nil
}

func (r *profileRepository) FindByIDs(ids []uuid.UUID) ([]models.ProfileVersion, error) {
	var versions []models.ProfileVersion
	if err := r.db.Where("id IN ?", ids).Find(&versions).Error; err != nil {
		return nil, fmt.Errorf("failed to find profile versions: %w", err)
	}
	return versions, nil
}

// ListLatest returns the newest version per document, most recent first.
func (r *profileRepository) ListLatest(limit int) ([]models.ProfileVersion, error) {
	var versions []models.ProfileVersion
	sub := r.db.Model(&models.ProfileVersion{}).
		Select("document_id, MAX(version) AS version").
		Group("document_id")
	err := r.db.
		Joins("JOIN (?) latest ON latest.document_id = profile_versions.document_id AND latest.version = profile_versions.version", sub).
		Order("profile_versions.created_at DESC").
		Limit(limit).
		Find(&versions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list latest profile versions: %w", err)
	}
	return versions, nil
}

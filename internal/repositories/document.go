package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talentmatch/resume-engine/internal/models"
)

type DocumentRepository interface {
	Create(document *models.Document) error
	FindByID(id uuid.UUID) (*models.Document, error)
	FindByContentHash(hash string) (*models.Document, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(document *models.Document) error {
	if err := r.db.Create(&document).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *documentRepository) FindByID(id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := r.db.Where("id = ?", id).First(&doc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("document not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	return &doc, nil
}

// FindByContentHash returns the earliest document with identical content,
// used to short-circuit duplicate uploads.
func (r *documentRepository) FindByContentHash(hash string) (*models.Document, error) {
	var doc models.Document
	err := r.db.Where("content_hash = ?", hash).Order("created_at ASC").First(&doc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find document by hash: %w", err)
	}
	return &doc, nil
}

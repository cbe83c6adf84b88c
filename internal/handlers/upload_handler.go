package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"talentmatch/resume-engine/internal/models"
	"talentmatch/resume-engine/internal/repositories"
	"talentmatch/resume-engine/internal/services"
)

type UploadHandler struct {
	docRepo        repositories.DocumentRepository
	storageService services.StorageService
}

func NewUploadHandler(
	docRepo repositories.DocumentRepository,
	storageService services.StorageService,
) *UploadHandler {
	return &UploadHandler{
		docRepo:        docRepo,
		storageService: storageService,
	}
}

// HandleUpload handles POST /upload. A re-upload of byte-identical content
// returns the existing document instead of storing a copy.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("resume")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing 'resume' file in multipart form",
		})
	}

	saved, err := h.storageService.SaveFile(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to save resume file: %v", err),
		})
	}

	if existing, err := h.docRepo.FindByContentHash(saved.ContentHash); err == nil && existing != nil {
		h.storageService.DeleteFile(saved.Filename)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message":  "Identical document already uploaded",
			"document": toUploadResponse(existing),
		})
	}

	doc := models.Document{
		ID:               uuid.New(),
		Filename:         saved.Filename,
		OriginalFileName: file.Filename,
		FileType:         saved.MimeType,
		FilePath:         saved.FilePath,
		ContentHash:      saved.ContentHash,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := h.docRepo.Create(&doc); err != nil {
		h.storageService.DeleteFile(saved.Filename)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save document record",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Document uploaded successfully",
		"document": toUploadResponse(&doc),
	})
}

func toUploadResponse(doc *models.Document) models.UploadResponse {
	return models.UploadResponse{
		ID:           doc.ID.String(),
		Filename:     doc.Filename,
		OriginalName: doc.OriginalFileName,
		FileType:     doc.FileType,
		ContentHash:  doc.ContentHash,
	}
}

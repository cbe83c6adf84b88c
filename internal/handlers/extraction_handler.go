package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"talentmatch/resume-engine/internal/models"
	"talentmatch/resume-engine/internal/repositories"
	"talentmatch/resume-engine/internal/services"
)

type ExtractionHandler struct {
	taskRepo    repositories.TaskRepository
	docRepo     repositories.DocumentRepository
	profileRepo repositories.ProfileRepository
	worker      services.Worker
}

func NewExtractionHandler(
	taskRepo repositories.TaskRepository,
	docRepo repositories.DocumentRepository,
	profileRepo repositories.ProfileRepository,
	worker services.Worker,
) *ExtractionHandler {
	return &ExtractionHandler{
		taskRepo:    taskRepo,
		docRepo:     docRepo,
		profileRepo: profileRepo,
		worker:      worker,
	}
}

// HandleSubmit handles POST /extractions. Submitting while the document
// already has an open task returns that task rather than queueing another.
func (h *ExtractionHandler) HandleSubmit(c *fiber.Ctx) error {
	var req models.SubmitExtractionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request payload",
		})
	}

	documentID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid document_id format",
		})
	}

	if _, err := h.docRepo.FindByID(documentID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "document not found",
		})
	}

	open, err := h.taskRepo.FindOpenByDocument(documentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to check open tasks",
		})
	}
	if open != nil {
		return c.Status(fiber.StatusAccepted).JSON(taskResponse(open, nil))
	}

	task := &models.ProcessingTask{
		DocumentID: documentID,
		Status:     models.TaskPending,
	}
	if err := h.taskRepo.Create(task); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create processing task",
		})
	}

	h.worker.EnqueueTask(task.ID)

	return c.Status(fiber.StatusAccepted).JSON(taskResponse(task, nil))
}

// HandleGetTask handles GET /tasks/:id. Completed tasks include the profile
// version and its quality score.
func (h *ExtractionHandler) HandleGetTask(c *fiber.Ctx) error {
	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid task ID format",
		})
	}

	task, err := h.taskRepo.FindByID(taskID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "task not found",
		})
	}

	var quality *int
	if task.Status == models.TaskCompleted && task.ProfileVersionID != nil {
		if version, err := h.profileRepo.FindByID(*task.ProfileVersionID); err == nil {
			quality = &version.QualityScore
		}
	}

	return c.JSON(taskResponse(task, quality))
}

// HandleReprocess handles POST /documents/:id/reprocess. A new task is
// queued even when the document already has a profile; success appends the
// next immutable version.
func (h *ExtractionHandler) HandleReprocess(c *fiber.Ctx) error {
	documentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid document ID format",
		})
	}

	if _, err := h.docRepo.FindByID(documentID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "document not found",
		})
	}

	open, err := h.taskRepo.FindOpenByDocument(documentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to check open tasks",
		})
	}
	if open != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "document already has an open processing task",
			"task_id": open.ID.String(),
		})
	}

	task := &models.ProcessingTask{
		DocumentID: documentID,
		Status:     models.TaskPending,
	}
	if err := h.taskRepo.Create(task); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create processing task",
		})
	}

	h.worker.EnqueueTask(task.ID)

	return c.Status(fiber.StatusAccepted).JSON(taskResponse(task, nil))
}

// HandleGetProfile handles GET /profiles/:id.
func (h *ExtractionHandler) HandleGetProfile(c *fiber.Ctx) error {
	versionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid profile version ID format",
		})
	}

	version, err := h.profileRepo.FindByID(versionID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "profile version not found",
		})
	}

	profile, err := version.Profile()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to decode profile payload",
		})
	}

	return c.JSON(fiber.Map{
		"id":                 version.ID.String(),
		"document_id":        version.DocumentID.String(),
		"version":            version.Version,
		"quality_score":      version.QualityScore,
		"overall_confidence": version.OverallConfidence,
		"extracted_by":       version.ExtractedBy,
		"profile":            profile,
	})
}

func taskResponse(task *models.ProcessingTask, quality *int) models.TaskResponse {
	resp := models.TaskResponse{
		ID:           task.ID.String(),
		DocumentID:   task.DocumentID.String(),
		Status:       string(task.Status),
		QualityScore: quality,
		ErrorMessage: task.ErrorMessage,
	}
	if task.ProfileVersionID != nil {
		id := task.ProfileVersionID.String()
		resp.ProfileVersionID = &id
	}
	return resp
}

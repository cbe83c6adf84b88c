package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"talentmatch/resume-engine/internal/models"
	"talentmatch/resume-engine/internal/repositories"
)

type JobHandler struct {
	jobRepo repositories.JobRepository
}

func NewJobHandler(jobRepo repositories.JobRepository) *JobHandler {
	return &JobHandler{jobRepo: jobRepo}
}

type jobRequest struct {
	Title              string   `json:"title"`
	RequiredSkills     []string `json:"required_skills"`
	NiceToHaveSkills   []string `json:"nice_to_have_skills"`
	MinExperienceYears float64  `json:"min_experience_years"`
	SeniorityLevel     string   `json:"seniority_level"`
	EducationRequired  string   `json:"education_required"`
	Description        string   `json:"description"`
}

func (r *jobRequest) validate() string {
	if strings.TrimSpace(r.Title) == "" {
		return "title is required"
	}
	if r.MinExperienceYears < 0 {
		return "min_experience_years must not be negative"
	}
	return ""
}

// HandleCreate handles POST /jobs.
func (h *JobHandler) HandleCreate(c *fiber.Ctx) error {
	var req jobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request payload",
		})
	}
	if msg := req.validate(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	job := &models.JobRequirement{
		Title:              req.Title,
		RequiredSkills:     req.RequiredSkills,
		NiceToHaveSkills:   req.NiceToHaveSkills,
		MinExperienceYears: req.MinExperienceYears,
		SeniorityLevel:     req.SeniorityLevel,
		EducationRequired:  req.EducationRequired,
		Description:        req.Description,
		Version:            1,
	}
	if err := h.jobRepo.Create(job); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create job requirement",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(job)
}

// HandleGet handles GET /jobs/:id.
func (h *JobHandler) HandleGet(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job ID format",
		})
	}

	job, err := h.jobRepo.FindByID(jobID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "job requirement not found",
		})
	}
	return c.JSON(job)
}

// HandleList handles GET /jobs.
func (h *JobHandler) HandleList(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	jobs, err := h.jobRepo.List(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list job requirements",
		})
	}
	return c.JSON(fiber.Map{"jobs": jobs})
}

// HandleUpdate handles PUT /jobs/:id. The version bump invalidates stored
// match results against the previous revision.
func (h *JobHandler) HandleUpdate(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job ID format",
		})
	}

	job, err := h.jobRepo.FindByID(jobID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "job requirement not found",
		})
	}

	var req jobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request payload",
		})
	}
	if msg := req.validate(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	job.Title = req.Title
	job.RequiredSkills = req.RequiredSkills
	job.NiceToHaveSkills = req.NiceToHaveSkills
	job.MinExperienceYears = req.MinExperienceYears
	job.SeniorityLevel = req.SeniorityLevel
	job.EducationRequired = req.EducationRequired
	job.Description = req.Description

	if err := h.jobRepo.Update(job); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update job requirement",
		})
	}
	return c.JSON(job)
}

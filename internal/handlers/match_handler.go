package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"talentmatch/resume-engine/internal/matching"
	"talentmatch/resume-engine/internal/models"
	"talentmatch/resume-engine/internal/services"
)

type MatchHandler struct {
	matcher services.MatcherService
}

func NewMatchHandler(matcher services.MatcherService) *MatchHandler {
	return &MatchHandler{matcher: matcher}
}

// HandleCompute handles POST /matches. Quality-gate rejections come back as
// 422 with the score and threshold so the caller can decide to override.
func (h *MatchHandler) HandleCompute(c *fiber.Ctx) error {
	var req models.ComputeMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request payload",
		})
	}

	profileVersionID, err := uuid.Parse(req.ProfileVersionID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid profile_version_id format",
		})
	}
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job_id format",
		})
	}

	result, err := h.matcher.ComputeMatch(c.Context(), profileVersionID, jobID, req.Override)
	if err != nil {
		var gateErr *matching.QualityGateError
		if errors.As(err, &gateErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":         "profile quality below matching threshold",
				"quality_score": gateErr.QualityScore,
				"threshold":     gateErr.Threshold,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(toMatchResponse(result))
}

// HandleBulk handles POST /jobs/:id/matches/bulk.
func (h *MatchHandler) HandleBulk(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job ID format",
		})
	}

	var req models.BulkMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request payload",
		})
	}

	ids := make([]uuid.UUID, 0, len(req.ProfileVersionIDs))
	for _, raw := range req.ProfileVersionIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid profile version ID: " + raw,
			})
		}
		ids = append(ids, id)
	}

	results, failures, err := h.matcher.BulkMatch(c.Context(), jobID, ids, req.Limit, req.Override)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	responses := make([]models.MatchResponse, 0, len(results))
	for _, r := range results {
		responses = append(responses, toMatchResponse(r))
	}

	return c.JSON(fiber.Map{
		"matches":  responses,
		"failures": failures,
	})
}

// HandleRankings handles GET /jobs/:id/rankings.
func (h *MatchHandler) HandleRankings(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job ID format",
		})
	}

	entries, err := h.matcher.Rankings(c.Context(), jobID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"rankings": entries})
}

func toMatchResponse(r *models.MatchResult) models.MatchResponse {
	resp := models.MatchResponse{
		ID:               r.ID.String(),
		ProfileVersionID: r.ProfileVersionID.String(),
		JobID:            r.JobID.String(),
		JobVersion:       r.JobVersion,
		SkillScore:       r.SkillScore,
		ExperienceScore:  r.ExperienceScore,
		ProjectScore:     r.ProjectScore,
		DomainScore:      r.DomainScore,
		OverallScore:     r.OverallScore,
		ConfidenceLevel:  string(r.ConfidenceLevel),
	}
	if explanation, err := r.AiExplanation(); err == nil {
		resp.Explanation = explanation
	}
	return resp
}

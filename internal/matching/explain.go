package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"talentmatch/resume-engine/internal/models"
)

// NarrativeModel turns the grounded facts into readable prose. Implemented by
// the Gemini service; any failure falls back to templated text.
type NarrativeModel interface {
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
}

// ExplanationGenerator produces the three-part explanation attached to every
// match result. The facts come first and bound what the model may claim; the
// model only rephrases, it never scores.
type ExplanationGenerator struct {
	model  NarrativeModel
	logger *zap.Logger
}

func NewExplanationGenerator(model NarrativeModel, logger *zap.Logger) *ExplanationGenerator {
	return &ExplanationGenerator{model: model, logger: logger}
}

// Explain never returns an error: when the model is unreachable or returns
// something unusable, the deterministic template takes over so a match result
// is never blocked on narrative generation.
func (g *ExplanationGenerator) Explain(ctx context.Context, scores *Scores, job *models.JobRequirement) models.AiExplanation {
	if g.model != nil {
		explanation, err := g.generate(ctx, scores, job)
		if err == nil {
			return explanation
		}
		g.logger.Warn("narrative generation failed, using templated explanation",
			zap.String("job_title", job.Title),
			zap.Error(err))
	}
	return g.template(scores, job)
}

func (g *ExplanationGenerator) generate(ctx context.Context, scores *Scores, job *models.JobRequirement) (models.AiExplanation, error) {
	facts, err := json.Marshal(scores.Facts)
	if err != nil {
		return models.AiExplanation{}, fmt.Errorf("failed to encode grounding facts: %w", err)
	}

	prompt := fmt.Sprintf(`You are writing a hiring-match explanation for the role %q.

Scores (0-100): skill=%.1f experience=%.1f project=%.1f domain=%.1f overall=%.1f

Established facts (the ONLY claims you may make):
%s

Write a JSON object with exactly these keys:
- "summary": 2-3 sentences on overall fit.
- "strengths": 3 to 5 short bullet strings, each restating one established fact.
- "weaknesses": 3 to 5 short bullet strings, each restating one established fact or gap.
- "recommendations": 2 to 3 short bullet strings with concrete next steps.

Do not invent skills, employers, durations, or anything absent from the facts.
Respond with the JSON object only.`, job.Title, scores.Skill, scores.Experience, scores.Project, scores.Domain, scores.Overall, facts)

	raw, err := g.model.GenerateText(ctx, prompt, 0.3)
	if err != nil {
		return models.AiExplanation{}, fmt.Errorf("failed to generate explanation: %w", err)
	}

	var explanation models.AiExplanation
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &explanation); err != nil {
		return models.AiExplanation{}, fmt.Errorf("failed to parse explanation response: %w", err)
	}
	if strings.TrimSpace(explanation.Summary) == "" {
		return models.AiExplanation{}, fmt.Errorf("explanation response missing summary")
	}
	return explanation, nil
}

// template builds the fallback explanation purely from the grounding facts.
func (g *ExplanationGenerator) template(scores *Scores, job *models.JobRequirement) models.AiExplanation {
	f := scores.Facts

	var strengths []string
	if len(f.MatchedSkills) > 0 {
		strengths = append(strengths, fmt.Sprintf("Matches required skills: %s.", strings.Join(f.MatchedSkills, ", ")))
	}
	if len(f.NiceToHaveHits) > 0 {
		strengths = append(strengths, fmt.Sprintf("Also brings nice-to-have skills: %s.", strings.Join(f.NiceToHaveHits, ", ")))
	}
	if f.RequiredYears > 0 && f.ExperienceYears >= f.RequiredYears {
		strengths = append(strengths, fmt.Sprintf("%.1f years of experience meets the %.1f-year requirement.", f.ExperienceYears, f.RequiredYears))
	} else if f.RequiredYears == 0 && f.ExperienceYears > 0 {
		strengths = append(strengths, fmt.Sprintf("%.1f years of professional experience.", f.ExperienceYears))
	}
	if f.SeniorityLabel != "" {
		strengths = append(strengths, fmt.Sprintf("Assessed seniority: %s.", f.SeniorityLabel))
	}
	if scores.Project >= 70 {
		strengths = append(strengths, "Project history aligns closely with the role description.")
	}
	if len(strengths) == 0 {
		strengths = append(strengths, "No documented strengths relative to this role.")
	}

	var weaknesses []string
	if len(f.MissingSkills) > 0 {
		weaknesses = append(weaknesses, fmt.Sprintf("Missing required skills: %s.", strings.Join(f.MissingSkills, ", ")))
	}
	if f.RequiredYears > 0 && f.ExperienceYears < f.RequiredYears {
		weaknesses = append(weaknesses, fmt.Sprintf("%.1f years of experience falls short of the %.1f-year requirement.", f.ExperienceYears, f.RequiredYears))
	}
	if f.RequirementsUnspecified {
		weaknesses = append(weaknesses, "The job lists no required skills, so the skill score is not discriminative.")
	}
	if scores.Domain < 50 {
		weaknesses = append(weaknesses, "Prior roles show limited overlap with this role's domain.")
	}
	if len(weaknesses) == 0 {
		weaknesses = append(weaknesses, "No notable gaps identified against the stated requirements.")
	}

	var recommendations []string
	if len(f.MissingSkills) > 0 {
		missing := f.MissingSkills
		sort.Strings(missing)
		recommendations = append(recommendations, fmt.Sprintf("Probe depth in %s during the interview.", strings.Join(missing, ", ")))
	}
	switch {
	case scores.Overall >= 75:
		recommendations = append(recommendations, "Strong candidate for this role; proceed to interview.")
	case scores.Overall >= 50:
		recommendations = append(recommendations, "Moderate fit; screen for the weaker areas before advancing.")
	default:
		recommendations = append(recommendations, "Weak fit for this role as described; consider other openings.")
	}

	return models.AiExplanation{
		Summary: fmt.Sprintf("Overall match score %.1f/100 for %s with %s confidence, based on %d matched and %d missing required skills and %.1f years of experience.",
			scores.Overall, job.Title, scores.Confidence, len(f.MatchedSkills), len(f.MissingSkills), f.ExperienceYears),
		Strengths:       strengths,
		Weaknesses:      weaknesses,
		Recommendations: recommendations,
	}
}

// extractJSONObject tolerates markdown fences and chatter around the object.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

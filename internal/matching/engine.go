package matching

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"talentmatch/resume-engine/internal/models"
)

// Fixed sub-score weights. Overall score determinism depends on these never
// varying at runtime.
const (
	WeightSkill      = 0.40
	WeightExperience = 0.25
	WeightProject    = 0.20
	WeightDomain     = 0.15
)

// QualityGateError rejects a match request for a profile below the quality
// threshold without an explicit override. Always surfaced to the caller,
// never silently bypassed.
type QualityGateError struct {
	QualityScore int
	Threshold    int
}

func (e *QualityGateError) Error() string {
	return fmt.Sprintf("profile quality score %d is below the matching threshold %d; pass override to match anyway", e.QualityScore, e.Threshold)
}

// Embedder is the embedding capability behind the semantic sub-scores.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// GroundingFacts are the deterministic findings that both bound the
// explanation narrative and let callers audit a score.
type GroundingFacts struct {
	MatchedSkills           []string `json:"matched_skills"`
	MissingSkills           []string `json:"missing_skills"`
	NiceToHaveHits          []string `json:"nice_to_have_hits"`
	RequirementsUnspecified bool     `json:"requirements_unspecified"`
	ExperienceYears         float64  `json:"experience_years"`
	RequiredYears           float64  `json:"required_years"`
	SeniorityLabel          string   `json:"seniority_label,omitempty"`
}

// Scores is the quantitative half of a match result.
type Scores struct {
	Skill      float64
	Experience float64
	Project    float64
	Domain     float64
	Overall    float64
	Confidence models.ConfidenceLevel
	Facts      GroundingFacts
}

// Engine computes the four weighted sub-scores between a candidate profile
// and a job requirement. Safe for concurrent use across distinct
// (profile, job) pairs; the embedder is the only shared dependency.
type Engine struct {
	normalizer    *SkillNormalizer
	embedder      Embedder
	gateThreshold int
	logger        *zap.Logger
	now           func() time.Time
}

func NewEngine(normalizer *SkillNormalizer, embedder Embedder, gateThreshold int, logger *zap.Logger) *Engine {
	return &Engine{
		normalizer:    normalizer,
		embedder:      embedder,
		gateThreshold: gateThreshold,
		logger:        logger,
		now:           time.Now,
	}
}

// Match scores one profile against one job. The quality gate is enforced
// here: profiles under the threshold are rejected with QualityGateError
// unless the caller overrides explicitly.
func (e *Engine) Match(ctx context.Context, profile *models.CandidateProfile, qualityScore int, job *models.JobRequirement, override bool) (*Scores, error) {
	if qualityScore < e.gateThreshold && !override {
		return nil, &QualityGateError{QualityScore: qualityScore, Threshold: e.gateThreshold}
	}

	skills := e.normalizer.matchSkills(profile.AllSkills(), job.RequiredSkills, job.NiceToHaveSkills)

	years := ComputeExperienceYears(profile.Experience, e.now())
	experienceScore := e.experienceScore(profile, years, job.MinExperienceYears)

	projectScore, err := e.similarityScore(ctx, profile.Narrative(), job.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to compute project similarity: %w", err)
	}

	domainScore, err := e.similarityScore(ctx, experienceNarrative(profile), domainContext(job))
	if err != nil {
		return nil, fmt.Errorf("failed to compute domain familiarity: %w", err)
	}

	overall := WeightSkill*skills.Score +
		WeightExperience*experienceScore +
		WeightProject*projectScore +
		WeightDomain*domainScore
	overall = clampScore(overall)

	facts := GroundingFacts{
		MatchedSkills:           skills.Matched,
		MissingSkills:           skills.Missing,
		NiceToHaveHits:          skills.NiceToHaveHits,
		RequirementsUnspecified: skills.RequirementsUnspecified,
		ExperienceYears:         math.Round(years*10) / 10,
		RequiredYears:           job.MinExperienceYears,
	}
	if profile.Seniority.Label.Known {
		facts.SeniorityLabel = profile.Seniority.Label.Value
	}

	return &Scores{
		Skill:      skills.Score,
		Experience: experienceScore,
		Project:    projectScore,
		Domain:     domainScore,
		Overall:    overall,
		Confidence: confidenceLevel(overall, profile.OverallConfidence),
		Facts:      facts,
	}, nil
}

// experienceScore rewards meeting or exceeding the job's experience bar and
// penalizes shortfall proportionally, with a bounded bonus for visible
// seniority progression.
func (e *Engine) experienceScore(profile *models.CandidateProfile, years, required float64) float64 {
	if years <= 0 {
		return 0
	}

	var score float64
	switch {
	case required <= 0:
		// No bar to measure against: scale with tenure alone.
		score = 60 + 8*math.Min(years, 5)
	case years >= required:
		exceed := math.Min((years-required)/required, 1)
		score = 70 + 20*exceed
	default:
		score = 70 * years / required
	}

	if hasSeniorityProgression(profile.Experience) {
		score += 10
	}
	return clampScore(score)
}

var titleRanks = []string{"intern", "junior", "associate", "mid", "senior", "lead", "staff", "principal", "head", "director", "vp", "chief"}

func titleRank(title string) int {
	lower := strings.ToLower(title)
	rank := -1
	for i, marker := range titleRanks {
		if strings.Contains(lower, marker) {
			rank = i
		}
	}
	return rank
}

// hasSeniorityProgression detects a strictly increasing title rank across
// chronologically ordered dated entries.
func hasSeniorityProgression(entries []models.ExperienceEntry) bool {
	type ranked struct {
		start time.Time
		rank  int
	}
	var seq []ranked
	now := time.Now()
	for _, entry := range entries {
		r := titleRank(entry.Title)
		if r < 0 {
			continue
		}
		start, ok := parseMonth(entry.StartDate, now, false)
		if !ok {
			continue
		}
		seq = append(seq, ranked{start: start, rank: r})
	}
	if len(seq) < 2 {
		return false
	}
	sort.Slice(seq, func(i, j int) bool { return seq[i].start.Before(seq[j].start) })
	for i := 1; i < len(seq); i++ {
		if seq[i].rank <= seq[i-1].rank {
			return false
		}
	}
	return true
}

// similarityScore maps the cosine similarity of two embedded texts onto
// 0-100. Missing text on either side scores 0 rather than erroring.
func (e *Engine) similarityScore(ctx context.Context, candidateText, jobText string) (float64, error) {
	if strings.TrimSpace(candidateText) == "" || strings.TrimSpace(jobText) == "" {
		return 0, nil
	}

	cv, err := e.embedder.EmbedText(ctx, candidateText)
	if err != nil {
		return 0, fmt.Errorf("failed to embed candidate text: %w", err)
	}
	jv, err := e.embedder.EmbedText(ctx, jobText)
	if err != nil {
		return 0, fmt.Errorf("failed to embed job text: %w", err)
	}

	cos := cosineSimilarity(cv, jv)
	return clampScore((cos + 1) / 2 * 100), nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// experienceNarrative is the candidate side of the domain comparison: the
// career story without project detail.
func experienceNarrative(p *models.CandidateProfile) string {
	var b strings.Builder
	for _, e := range p.Experience {
		b.WriteString(e.Title)
		if e.Organization != "" {
			b.WriteString(" at ")
			b.WriteString(e.Organization)
		}
		b.WriteString(". ")
		b.WriteString(e.Description)
		b.WriteString("\n")
	}
	return b.String()
}

// domainContext is the job side of the domain comparison: title, seniority
// and description rather than the skill checklist.
func domainContext(j *models.JobRequirement) string {
	parts := []string{j.Title}
	if j.SeniorityLevel != "" {
		parts = append(parts, j.SeniorityLevel)
	}
	parts = append(parts, j.Description)
	return strings.Join(parts, ". ")
}

// confidenceLevel combines the score band with the profile's extraction
// confidence: a strong score over weak source data must not read as high
// confidence.
func confidenceLevel(overall, profileConfidence float64) models.ConfidenceLevel {
	level := models.ConfidenceLow
	switch {
	case overall >= 75:
		level = models.ConfidenceHigh
	case overall >= 50:
		level = models.ConfidenceMedium
	}

	if profileConfidence < 0.4 {
		return models.ConfidenceLow
	}
	if profileConfidence < 0.7 && level == models.ConfidenceHigh {
		return models.ConfidenceMedium
	}
	return level
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// Rank orders confidence levels for ranking tie-breaks (high > medium > low).
func (c ConfidenceLevel) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// AiExplanation is the structured rationale attached to a match result. The
// lists are grounded in the deterministic sub-scores; only the phrasing may
// vary between regenerations.
type AiExplanation struct {
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

// MatchResult ties one candidate profile version to one job requirement
// version. The overall score is a fixed-weight blend of the four sub-scores
// and is fully deterministic for identical inputs.
type MatchResult struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProfileVersionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_match_profile_job" json:"profile_version_id"`
	JobID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_match_profile_job" json:"job_id"`
	JobVersion       int       `gorm:"not null;uniqueIndex:idx_match_profile_job" json:"job_version"`

	SkillScore      float64 `gorm:"not null" json:"skill_score"`
	ExperienceScore float64 `gorm:"not null" json:"experience_score"`
	ProjectScore    float64 `gorm:"not null" json:"project_score"`
	DomainScore     float64 `gorm:"not null" json:"domain_score"`
	OverallScore    float64 `gorm:"not null" json:"overall_score"`

	ConfidenceLevel ConfidenceLevel `gorm:"type:text;not null" json:"confidence_level"`
	Explanation     string          `gorm:"type:jsonb" json:"-"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (MatchResult) TableName() string {
	return "match_results"
}

func (m *MatchResult) SetExplanation(e *AiExplanation) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode explanation: %w", err)
	}
	m.Explanation = string(raw)
	return nil
}

func (m *MatchResult) AiExplanation() (*AiExplanation, error) {
	var e AiExplanation
	if err := json.Unmarshal([]byte(m.Explanation), &e); err != nil {
		return nil, fmt.Errorf("failed to decode explanation: %w", err)
	}
	return &e, nil
}

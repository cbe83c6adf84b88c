package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CandidateProfile is the structured, confidence-annotated extraction of a
// single résumé version. Inferred fields carry explicit confidences; missing
// evidence is represented as Unknown, never fabricated.
type CandidateProfile struct {
	Identity       Identity            `json:"identity"`
	Links          []string            `json:"links,omitempty"`
	Education      []Education         `json:"education,omitempty"`
	Experience     []ExperienceEntry   `json:"experience,omitempty"`
	Projects       []Project           `json:"projects,omitempty"`
	Skills         map[string][]string `json:"skills,omitempty"`
	Certifications []string            `json:"certifications,omitempty"`
	Languages      []string            `json:"languages,omitempty"`

	Seniority   SeniorityAssessment `json:"seniority"`
	Personality PersonalityProfile  `json:"personality"`

	LeadershipSignals []string `json:"leadership_signals,omitempty"`
	RedFlags          []string `json:"red_flags,omitempty"`

	OverallConfidence float64 `json:"overall_confidence"`
}

type Identity struct {
	Name     Field[string] `json:"name"`
	Email    Field[string] `json:"email"`
	Phone    Field[string] `json:"phone"`
	Location Field[string] `json:"location"`
}

type Education struct {
	Institution  string `json:"institution"`
	Degree       string `json:"degree,omitempty"`
	FieldOfStudy string `json:"field_of_study,omitempty"`
	StartYear    string `json:"start_year,omitempty"`
	EndYear      string `json:"end_year,omitempty"`
}

type ExperienceEntry struct {
	Title        string   `json:"title"`
	Organization string   `json:"organization,omitempty"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

type Project struct {
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Technologies     []string `json:"technologies,omitempty"`
	Personal         bool     `json:"personal"`
	OwnershipSignals []string `json:"ownership_signals,omitempty"`
}

type SeniorityAssessment struct {
	Label    Field[string] `json:"label"`
	Evidence []string      `json:"evidence,omitempty"`
}

// PersonalityProfile holds behavioral inferences. Every trait is inferred,
// so every trait carries its own confidence.
type PersonalityProfile struct {
	WorkStyle             Field[string] `json:"work_style"`
	OwnershipLevel        Field[string] `json:"ownership_level"`
	LearningOrientation   Field[string] `json:"learning_orientation"`
	CommunicationStrength Field[string] `json:"communication_strength"`
	RiskProfile           Field[string] `json:"risk_profile"`
}

// EmptyProfile returns the zero-information profile used when every
// extraction strategy fails: all fields unknown, confidence zero.
func EmptyProfile() *CandidateProfile {
	return &CandidateProfile{
		Skills:            map[string][]string{},
		OverallConfidence: 0,
	}
}

// AllSkills flattens the categorized skill map.
func (p *CandidateProfile) AllSkills() []string {
	var out []string
	for _, group := range p.Skills {
		out = append(out, group...)
	}
	return out
}

// Narrative concatenates experience and project descriptions into the text
// used for semantic comparison against job descriptions.
func (p *CandidateProfile) Narrative() string {
	var out string
	for _, e := range p.Experience {
		out += e.Title + " " + e.Organization + ". " + e.Description + "\n"
	}
	for _, pr := range p.Projects {
		out += pr.Name + ". " + pr.Description + "\n"
	}
	return out
}

// ProfileVersion is one immutable persisted revision of a candidate profile.
// Reprocessing a document inserts the next version; rows are never mutated.
type ProfileVersion struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DocumentID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_profile_doc_version" json:"document_id"`
	Version           int       `gorm:"not null;uniqueIndex:idx_profile_doc_version" json:"version"`
	Payload           string    `gorm:"type:jsonb" json:"-"`
	QualityScore      int       `gorm:"not null" json:"quality_score"`
	OverallConfidence float64   `gorm:"not null" json:"overall_confidence"`
	ExtractedBy       string    `gorm:"type:text" json:"extracted_by"`
	CreatedAt         time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (ProfileVersion) TableName() string {
	return "profile_versions"
}

func (v *ProfileVersion) SetProfile(p *CandidateProfile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile payload: %w", err)
	}
	v.Payload = string(raw)
	return nil
}

func (v *ProfileVersion) Profile() (*CandidateProfile, error) {
	var p CandidateProfile
	if err := json.Unmarshal([]byte(v.Payload), &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile payload: %w", err)
	}
	return &p, nil
}

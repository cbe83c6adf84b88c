package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"talentmatch/resume-engine/internal/models"
)

// extractedProfile is the flat schema model adapters produce (and the JSON
// schema generative adapters are prompted for). Conversion into
// models.CandidateProfile marks empty values Unknown instead of guessing.
type extractedProfile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`

	Links          []string                 `json:"links"`
	Education      []models.Education       `json:"education"`
	Experience     []models.ExperienceEntry `json:"experience"`
	Projects       []models.Project         `json:"projects"`
	Skills         map[string][]string      `json:"skills"`
	Certifications []string                 `json:"certifications"`
	Languages      []string                 `json:"languages"`

	Seniority struct {
		Label      string   `json:"label"`
		Evidence   []string `json:"evidence"`
		Confidence float64  `json:"confidence"`
	} `json:"seniority"`

	Personality struct {
		WorkStyle             extractedTrait `json:"work_style"`
		OwnershipLevel        extractedTrait `json:"ownership_level"`
		LearningOrientation   extractedTrait `json:"learning_orientation"`
		CommunicationStrength extractedTrait `json:"communication_strength"`
		RiskProfile           extractedTrait `json:"risk_profile"`
	} `json:"personality"`

	LeadershipSignals []string `json:"leadership_signals"`
	RedFlags          []string `json:"red_flags"`
}

type extractedTrait struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// toProfile converts the wire form, capping confidences at the fidelity
// ceiling of the producing adapter.
func (e *extractedProfile) toProfile(kind AdapterKind) *models.CandidateProfile {
	ceiling := fidelityConfidence[kind]

	p := models.EmptyProfile()
	p.Identity.Name = knownIfSet(e.Name, ceiling)
	p.Identity.Email = knownIfSet(e.Email, ceiling)
	p.Identity.Phone = knownIfSet(e.Phone, ceiling)
	p.Identity.Location = knownIfSet(e.Location, ceiling)

	p.Links = dedupeStrings(e.Links)
	p.Education = e.Education
	p.Experience = e.Experience
	p.Projects = e.Projects
	if len(e.Skills) > 0 {
		p.Skills = e.Skills
	}
	p.Certifications = dedupeStrings(e.Certifications)
	p.Languages = dedupeStrings(e.Languages)

	if strings.TrimSpace(e.Seniority.Label) != "" {
		p.Seniority.Label = models.Known(e.Seniority.Label, capConfidence(e.Seniority.Confidence, ceiling))
		p.Seniority.Evidence = e.Seniority.Evidence
	}

	p.Personality.WorkStyle = traitField(e.Personality.WorkStyle, ceiling)
	p.Personality.OwnershipLevel = traitField(e.Personality.OwnershipLevel, ceiling)
	p.Personality.LearningOrientation = traitField(e.Personality.LearningOrientation, ceiling)
	p.Personality.CommunicationStrength = traitField(e.Personality.CommunicationStrength, ceiling)
	p.Personality.RiskProfile = traitField(e.Personality.RiskProfile, ceiling)

	p.LeadershipSignals = dedupeStrings(e.LeadershipSignals)
	p.RedFlags = dedupeStrings(e.RedFlags)

	p.OverallConfidence = overallConfidence(p)
	return p
}

func knownIfSet(value string, confidence float64) models.Field[string] {
	value = strings.TrimSpace(value)
	if value == "" {
		return models.Unknown[string]()
	}
	return models.Known(value, confidence)
}

func traitField(t extractedTrait, ceiling float64) models.Field[string] {
	if strings.TrimSpace(t.Value) == "" {
		return models.Unknown[string]()
	}
	return models.Known(t.Value, capConfidence(t.Confidence, ceiling))
}

func capConfidence(reported, ceiling float64) float64 {
	if reported <= 0 || reported > ceiling {
		return ceiling
	}
	return reported
}

// overallConfidence averages the confidences of every known annotated field.
// A profile with nothing known scores zero.
func overallConfidence(p *models.CandidateProfile) float64 {
	fields := []models.Field[string]{
		p.Identity.Name, p.Identity.Email, p.Identity.Phone, p.Identity.Location,
		p.Seniority.Label,
		p.Personality.WorkStyle, p.Personality.OwnershipLevel,
		p.Personality.LearningOrientation, p.Personality.CommunicationStrength,
		p.Personality.RiskProfile,
	}

	var sum float64
	var known int
	for _, f := range fields {
		if f.Known {
			sum += f.Confidence
			known++
		}
	}
	if known == 0 {
		return 0
	}

	// Coverage of structural sections tempers the field-level average.
	sections := 0
	total := 4
	if len(p.Experience) > 0 {
		sections++
	}
	if len(p.Education) > 0 {
		sections++
	}
	if len(p.AllSkills()) > 0 {
		sections++
	}
	if len(p.Projects) > 0 {
		sections++
	}

	avg := sum / float64(known)
	coverage := 0.5 + 0.5*float64(sections)/float64(total)
	return avg * coverage
}

func dedupeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

// parseProfileJSON decodes a generative response into the wire schema,
// tolerating markdown fences around the JSON body.
func parseProfileJSON(response string) (*extractedProfile, error) {
	var e extractedProfile
	if err := json.Unmarshal([]byte(extractJSON(response)), &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile JSON: %w", err)
	}
	return &e, nil
}

// extractJSON pulls the JSON object out of text that might wrap it in
// markdown or commentary.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}
	return text
}

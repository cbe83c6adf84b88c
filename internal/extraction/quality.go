package extraction

import (
	"talentmatch/resume-engine/internal/config"
	"talentmatch/resume-engine/internal/models"
)

// Stage bonus/penalty applied after the completeness sum, keyed by the
// highest-fidelity adapter that contributed any field. The penalty marks
// profiles recovered only by the pattern-matching fallback.
var stageBonus = map[AdapterKind]int{
	AdapterVision:   15,
	AdapterLayout:   8,
	AdapterSections: 0,
	AdapterRules:    -20,
	AdapterNone:     0,
}

// Quality bands.
const (
	QualityExcellent = 80
	QualityModerate  = 50
)

// ComputeQuality scores extraction completeness 0-100. Each dimension
// contributes its configured weight scaled by how filled-in it is, so the
// score never decreases when more fields become known.
func ComputeQuality(p *models.CandidateProfile, w config.QualityWeights, contributor AdapterKind) int {
	score := fraction(identityCompleteness(p))*float64(w.Identity) +
		fraction(experienceDepth(p))*float64(w.Experience) +
		fraction(educationCompleteness(p))*float64(w.Education) +
		fraction(skillsCoverage(p))*float64(w.Skills) +
		fraction(projectsDetail(p))*float64(w.Projects) +
		fraction(personalityConfidence(p))*float64(w.Personality)

	total := int(score+0.5) + stageBonus[contributor]
	if total < 0 {
		return 0
	}
	if total > 100 {
		return 100
	}
	return total
}

func fraction(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func identityCompleteness(p *models.CandidateProfile) float64 {
	known := 0
	for _, f := range []models.Field[string]{
		p.Identity.Name, p.Identity.Email, p.Identity.Phone, p.Identity.Location,
	} {
		if f.Known {
			known++
		}
	}
	return float64(known) / 4
}

func experienceDepth(p *models.CandidateProfile) float64 {
	if len(p.Experience) == 0 {
		return 0
	}
	count := fraction(float64(len(p.Experience)) / 3)

	described := 0
	dated := 0
	for _, e := range p.Experience {
		if e.Description != "" {
			described++
		}
		if e.StartDate != "" {
			dated++
		}
	}
	detail := (float64(described) + float64(dated)) / float64(2*len(p.Experience))
	return 0.5*count + 0.5*detail
}

func educationCompleteness(p *models.CandidateProfile) float64 {
	if len(p.Education) == 0 {
		return 0
	}
	return fraction(0.5 + 0.5*float64(len(p.Education)-1))
}

func skillsCoverage(p *models.CandidateProfile) float64 {
	return float64(len(p.AllSkills())) / 8
}

func projectsDetail(p *models.CandidateProfile) float64 {
	if len(p.Projects) == 0 {
		return 0
	}
	count := fraction(float64(len(p.Projects)) / 2)

	described := 0
	for _, pr := range p.Projects {
		if pr.Description != "" {
			described++
		}
	}
	return 0.6*count + 0.4*float64(described)/float64(len(p.Projects))
}

func personalityConfidence(p *models.CandidateProfile) float64 {
	traits := []models.Field[string]{
		p.Personality.WorkStyle,
		p.Personality.OwnershipLevel,
		p.Personality.LearningOrientation,
		p.Personality.CommunicationStrength,
		p.Personality.RiskProfile,
	}
	var sum float64
	for _, t := range traits {
		if t.Known {
			sum += t.Confidence
		}
	}
	return sum / float64(len(traits))
}

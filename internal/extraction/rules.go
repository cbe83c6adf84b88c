package extraction

import (
	"context"
	"strings"

	"talentmatch/resume-engine/internal/models"
)

// RulesAdapter is the last resort: pattern matching over the raw text with no
// structural understanding. It recovers contact entities, dictionary skills
// and bare date ranges, nothing more.
type RulesAdapter struct{}

func NewRulesAdapter() *RulesAdapter {
	return &RulesAdapter{}
}

func (a *RulesAdapter) Kind() AdapterKind {
	return AdapterRules
}

func (a *RulesAdapter) Extract(ctx context.Context, in Input) (*models.CandidateProfile, error) {
	text := in.Text
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoContent
	}

	var wire extractedProfile
	wire.Email = emailRe.FindString(text)
	wire.Links = urlRe.FindAllString(text, -1)
	if m := phoneRe.FindString(text); len(strings.Map(keepDigits, m)) >= 7 {
		wire.Phone = strings.TrimSpace(m)
	}

	wire.Skills = matchDictionarySkills(text)

	for _, m := range dateRangeRe.FindAllStringSubmatch(text, -1) {
		wire.Experience = append(wire.Experience, models.ExperienceEntry{
			StartDate: strings.TrimSpace(m[1]),
			EndDate:   strings.TrimSpace(m[2]),
		})
	}

	p := wire.toProfile(AdapterRules)
	if p.OverallConfidence == 0 && len(p.AllSkills()) == 0 && len(p.Experience) == 0 {
		return nil, ErrNoContent
	}
	return p, nil
}

// matchDictionarySkills scans lowercased text for unambiguous technology
// terms on word boundaries.
func matchDictionarySkills(text string) map[string][]string {
	lower := " " + strings.ToLower(text) + " "
	out := map[string][]string{}
	seen := map[string]bool{}

	for skill, category := range knownSkills {
		if seen[canonicalDictSkill(skill)] {
			continue
		}
		if containsWord(lower, skill) {
			canonical := canonicalDictSkill(skill)
			seen[canonical] = true
			out[category] = append(out[category], canonical)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func canonicalDictSkill(skill string) string {
	if skill == "golang" {
		return "go"
	}
	if skill == "postgres" {
		return "postgresql"
	}
	return skill
}

func containsWord(haystack, word string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], word)
		if i < 0 {
			return false
		}
		i += idx
		before := haystack[i-1]
		afterIdx := i + len(word)
		var after byte = ' '
		if afterIdx < len(haystack) {
			after = haystack[afterIdx]
		}
		if !isWordByte(before) && !isWordByte(after) {
			return true
		}
		idx = i + len(word)
		if idx >= len(haystack) {
			return false
		}
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

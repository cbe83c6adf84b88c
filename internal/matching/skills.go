package matching

import (
	"sort"
	"strings"
)

// SkillNormalizer folds skill strings onto a canonical taxonomy:
// case-insensitive, trimmed, with a configurable alias map
// (golang -> go, k8s -> kubernetes, ...).
type SkillNormalizer struct {
	synonyms map[string]string
}

func NewSkillNormalizer(synonyms map[string]string) *SkillNormalizer {
	return &SkillNormalizer{synonyms: synonyms}
}

func (n *SkillNormalizer) Canonical(skill string) string {
	s := strings.ToLower(strings.TrimSpace(skill))
	if canonical, ok := n.synonyms[s]; ok {
		return canonical
	}
	return s
}

func (n *SkillNormalizer) CanonicalSet(skills []string) map[string]bool {
	out := make(map[string]bool, len(skills))
	for _, s := range skills {
		if c := n.Canonical(s); c != "" {
			out[c] = true
		}
	}
	return out
}

// skillMatch is the deterministic skill comparison feeding both the skill
// sub-score and the explanation's grounding facts.
type skillMatch struct {
	Score                   float64
	Matched                 []string
	Missing                 []string
	NiceToHaveHits          []string
	RequirementsUnspecified bool
}

// matchSkills scores required-skill coverage 0-100 with a bounded bonus for
// nice-to-have overlap. An empty requirement list cannot be violated, so it
// scores 100 and is flagged for the explanation.
func (n *SkillNormalizer) matchSkills(candidate, required, niceToHave []string) skillMatch {
	have := n.CanonicalSet(candidate)

	if len(required) == 0 {
		m := skillMatch{Score: 100, RequirementsUnspecified: true}
		m.NiceToHaveHits = n.overlap(have, niceToHave)
		return m
	}

	var m skillMatch
	seen := map[string]bool{}
	for _, req := range required {
		c := n.Canonical(req)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		if have[c] {
			m.Matched = append(m.Matched, c)
		} else {
			m.Missing = append(m.Missing, c)
		}
	}
	sort.Strings(m.Matched)
	sort.Strings(m.Missing)

	total := len(m.Matched) + len(m.Missing)
	if total == 0 {
		m.Score = 100
		m.RequirementsUnspecified = true
		return m
	}

	m.Score = float64(len(m.Matched)) / float64(total) * 100

	m.NiceToHaveHits = n.overlap(have, niceToHave)
	if len(niceToHave) > 0 {
		bonus := 10 * float64(len(m.NiceToHaveHits)) / float64(len(niceToHave))
		m.Score += bonus
	}
	if m.Score > 100 {
		m.Score = 100
	}
	return m
}

func (n *SkillNormalizer) overlap(have map[string]bool, skills []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range skills {
		c := n.Canonical(s)
		if c != "" && have[c] && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

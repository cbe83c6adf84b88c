package matching

import (
	"sort"

	"talentmatch/resume-engine/internal/models"
)

// Rank orders match results for one job: overall score descending, then
// confidence level descending, then profile version ID ascending so equal
// candidates always come back in the same order. Percentile is the share of
// candidates scoring strictly lower; tied scores share a percentile.
func Rank(results []*models.MatchResult) []models.RankingEntry {
	ordered := make([]*models.MatchResult, len(results))
	copy(ordered, results)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].OverallScore != ordered[j].OverallScore {
			return ordered[i].OverallScore > ordered[j].OverallScore
		}
		if ri, rj := ordered[i].ConfidenceLevel.Rank(), ordered[j].ConfidenceLevel.Rank(); ri != rj {
			return ri > rj
		}
		return ordered[i].ProfileVersionID.String() < ordered[j].ProfileVersionID.String()
	})

	entries := make([]models.RankingEntry, 0, len(ordered))
	for i, r := range ordered {
		entries = append(entries, models.RankingEntry{
			Rank:             i + 1,
			ProfileVersionID: r.ProfileVersionID,
			MatchID:          r.ID,
			OverallScore:     r.OverallScore,
			ConfidenceLevel:  r.ConfidenceLevel,
			Percentile:       percentile(ordered, r.OverallScore),
		})
	}
	return entries
}

func percentile(ordered []*models.MatchResult, score float64) float64 {
	if len(ordered) <= 1 {
		return 100
	}
	lower := 0
	for _, r := range ordered {
		if r.OverallScore < score {
			lower++
		}
	}
	return float64(lower) / float64(len(ordered)-1) * 100
}

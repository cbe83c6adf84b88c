package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testSynonyms = map[string]string{
	"golang":   "go",
	"k8s":      "kubernetes",
	"postgres": "postgresql",
	"js":       "javascript",
}

func TestCanonical(t *testing.T) {
	n := NewSkillNormalizer(testSynonyms)

	assert.Equal(t, "go", n.Canonical("  Golang "))
	assert.Equal(t, "kubernetes", n.Canonical("K8s"))
	assert.Equal(t, "rust", n.Canonical("Rust"))
	assert.Equal(t, "", n.Canonical("   "))
}

func TestMatchSkills(t *testing.T) {
	n := NewSkillNormalizer(testSynonyms)

	tests := []struct {
		name       string
		candidate  []string
		required   []string
		niceToHave []string
		wantScore  float64
		wantFlag   bool
		wantMatch  []string
		wantMiss   []string
	}{
		{
			name:      "full coverage with extra skills scores 100",
			candidate: []string{"Go", "PostgreSQL", "Docker", "Terraform"},
			required:  []string{"Go", "PostgreSQL"},
			wantScore: 100,
			wantMatch: []string{"go", "postgresql"},
		},
		{
			name:      "one of three required",
			candidate: []string{"Go"},
			required:  []string{"Go", "Kubernetes", "Kafka"},
			wantScore: 100.0 / 3,
			wantMatch: []string{"go"},
			wantMiss:  []string{"kafka", "kubernetes"},
		},
		{
			name:      "synonyms bridge candidate and requirement",
			candidate: []string{"Golang", "Postgres"},
			required:  []string{"Go", "PostgreSQL"},
			wantScore: 100,
			wantMatch: []string{"go", "postgresql"},
		},
		{
			name:      "no required skills scores 100 and is flagged",
			candidate: []string{"Go"},
			required:  nil,
			wantScore: 100,
			wantFlag:  true,
		},
		{
			name:       "nice-to-have bonus is bounded",
			candidate:  []string{"Go", "Kubernetes", "Terraform"},
			required:   []string{"Go", "Rust"},
			niceToHave: []string{"Kubernetes", "Terraform"},
			wantScore:  60,
			wantMatch:  []string{"go"},
			wantMiss:   []string{"rust"},
		},
		{
			name:      "duplicate requirements count once",
			candidate: []string{"Go"},
			required:  []string{"Go", "golang", "Rust"},
			wantScore: 50,
			wantMatch: []string{"go"},
			wantMiss:  []string{"rust"},
		},
		{
			name:      "empty candidate misses everything",
			candidate: nil,
			required:  []string{"Go"},
			wantScore: 0,
			wantMiss:  []string{"go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.matchSkills(tt.candidate, tt.required, tt.niceToHave)
			assert.InDelta(t, tt.wantScore, got.Score, 0.01)
			assert.Equal(t, tt.wantFlag, got.RequirementsUnspecified)
			assert.Equal(t, tt.wantMatch, got.Matched)
			assert.Equal(t, tt.wantMiss, got.Missing)
		})
	}
}

func TestMatchSkillsDeterministicOrder(t *testing.T) {
	n := NewSkillNormalizer(testSynonyms)

	a := n.matchSkills([]string{"Go", "Redis"}, []string{"Kafka", "Go", "Redis", "Rust"}, nil)
	b := n.matchSkills([]string{"Redis", "Go"}, []string{"Rust", "Redis", "Go", "Kafka"}, nil)

	assert.Equal(t, a.Matched, b.Matched)
	assert.Equal(t, a.Missing, b.Missing)
	assert.Equal(t, a.Score, b.Score)
}

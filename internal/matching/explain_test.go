package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"talentmatch/resume-engine/internal/models"
)

type fakeNarrativeModel struct {
	response string
	err      error
}

func (f *fakeNarrativeModel) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	return f.response, f.err
}

func testScores() *Scores {
	return &Scores{
		Skill:      50,
		Experience: 70,
		Project:    60,
		Domain:     40,
		Overall:    55,
		Confidence: models.ConfidenceMedium,
		Facts: GroundingFacts{
			MatchedSkills:   []string{"go"},
			MissingSkills:   []string{"kubernetes"},
			ExperienceYears: 4,
			RequiredYears:   3,
		},
	}
}

func TestExplainUsesModelResponse(t *testing.T) {
	model := &fakeNarrativeModel{
		response: "```json\n{\"summary\":\"Solid fit.\",\"strengths\":[\"Knows Go\"],\"weaknesses\":[\"No Kubernetes\"],\"recommendations\":[\"Interview\"]}\n```",
	}
	g := NewExplanationGenerator(model, zap.NewNop())

	explanation := g.Explain(context.Background(), testScores(), testJob())

	assert.Equal(t, "Solid fit.", explanation.Summary)
	assert.Equal(t, []string{"Knows Go"}, explanation.Strengths)
}

func TestExplainFallsBackOnModelError(t *testing.T) {
	g := NewExplanationGenerator(&fakeNarrativeModel{err: errors.New("unavailable")}, zap.NewNop())

	explanation := g.Explain(context.Background(), testScores(), testJob())

	assert.NotEmpty(t, explanation.Summary)
	assert.NotEmpty(t, explanation.Strengths)
	assert.NotEmpty(t, explanation.Weaknesses)
	assert.NotEmpty(t, explanation.Recommendations)
	assert.Contains(t, explanation.Weaknesses[0], "kubernetes")
}

func TestExplainFallsBackOnGarbage(t *testing.T) {
	g := NewExplanationGenerator(&fakeNarrativeModel{response: "not json at all"}, zap.NewNop())

	explanation := g.Explain(context.Background(), testScores(), testJob())
	assert.NotEmpty(t, explanation.Summary)
}

func TestTemplateReflectsFacts(t *testing.T) {
	g := NewExplanationGenerator(nil, zap.NewNop())

	scores := testScores()
	explanation := g.Explain(context.Background(), scores, testJob())

	assert.Contains(t, explanation.Strengths[0], "go")
	assert.Contains(t, explanation.Weaknesses[0], "kubernetes")
	assert.NotEmpty(t, explanation.Recommendations)
}

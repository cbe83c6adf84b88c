package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesAdapterExtract(t *testing.T) {
	a := NewRulesAdapter()

	text := `Reach me at dana@example.com or github.com/danasmith.
Worked with Golang, Postgres and Kubernetes from Jan 2019 - Dec 2022.`

	profile, err := a.Extract(context.Background(), Input{Text: text})
	require.NoError(t, err)

	assert.Equal(t, "dana@example.com", profile.Identity.Email.Value)
	assert.LessOrEqual(t, profile.Identity.Email.Confidence, fidelityConfidence[AdapterRules])
	assert.False(t, profile.Identity.Name.Known, "rules stage never guesses names")

	skills := profile.AllSkills()
	assert.Contains(t, skills, "go")
	assert.Contains(t, skills, "postgresql")
	assert.Contains(t, skills, "kubernetes")

	require.NotEmpty(t, profile.Experience)
	assert.Equal(t, "Jan 2019", profile.Experience[0].StartDate)
	assert.Equal(t, "Dec 2022", profile.Experience[0].EndDate)
}

func TestRulesAdapterWordBoundaries(t *testing.T) {
	// "scala" inside "escalation" must not count; list items must.
	skills := matchDictionarySkills("Led incident escalation. Stack: scala, java.")
	require.NotNil(t, skills)
	assert.ElementsMatch(t, []string{"scala", "java"}, skills["languages"])

	assert.Nil(t, matchDictionarySkills("Managed escalations and javascripting workshops."))
}

func TestRulesAdapterNoContent(t *testing.T) {
	a := NewRulesAdapter()

	_, err := a.Extract(context.Background(), Input{Text: ""})
	assert.ErrorIs(t, err, ErrNoContent)

	_, err = a.Extract(context.Background(), Input{Text: "nothing recognizable here"})
	assert.ErrorIs(t, err, ErrNoContent)
}

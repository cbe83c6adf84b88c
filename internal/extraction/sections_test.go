package extraction

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `Dana Smith
dana.smith@example.com
+49 151 2345 6789
https://github.com/danasmith

Experience
Senior Backend Engineer at Acme GmbH
Jan 2021 - Present
Built the billing platform in Go and PostgreSQL.

Backend Engineer at Initech
Mar 2018 - Dec 2020
Maintained payment services.

Education
TU Berlin
BSc Computer Science, 2014 - 2018

Skills
Languages: Go, Python, SQL
Infrastructure: Kubernetes, Docker, AWS

Projects
resume-parser
CLI that extracts structured data from PDFs.

Languages
German, English
`

func TestSectionsAdapterExtract(t *testing.T) {
	a := NewSectionsAdapter()

	profile, err := a.Extract(context.Background(), Input{Text: sampleResume})
	require.NoError(t, err)

	assert.True(t, profile.Identity.Name.Known)
	assert.Equal(t, "Dana Smith", profile.Identity.Name.Value)
	assert.Equal(t, "dana.smith@example.com", profile.Identity.Email.Value)
	assert.NotEmpty(t, profile.Identity.Phone.Value)
	assert.Contains(t, profile.Links, "https://github.com/danasmith")

	require.Len(t, profile.Experience, 2)
	assert.Equal(t, "Senior Backend Engineer", profile.Experience[0].Title)
	assert.Equal(t, "Acme GmbH", profile.Experience[0].Organization)
	assert.Equal(t, "Jan 2021", profile.Experience[0].StartDate)
	assert.Equal(t, "Present", profile.Experience[0].EndDate)

	require.NotEmpty(t, profile.Education)
	assert.Contains(t, profile.Education[0].Institution, "TU Berlin")

	skills := profile.AllSkills()
	assert.Contains(t, skills, "Go")
	assert.Contains(t, skills, "Kubernetes")

	require.NotEmpty(t, profile.Projects)
	assert.Equal(t, "resume-parser", profile.Projects[0].Name)

	assert.ElementsMatch(t, []string{"German", "English"}, profile.Languages)
}

func TestSectionsAdapterConfidenceCeiling(t *testing.T) {
	a := NewSectionsAdapter()

	profile, err := a.Extract(context.Background(), Input{Text: sampleResume})
	require.NoError(t, err)

	assert.LessOrEqual(t, profile.Identity.Name.Confidence, fidelityConfidence[AdapterSections])
	assert.Greater(t, profile.OverallConfidence, 0.0)
}

func TestSectionsAdapterEmptyInput(t *testing.T) {
	a := NewSectionsAdapter()

	_, err := a.Extract(context.Background(), Input{Text: "   \n "})
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestSplitSections(t *testing.T) {
	sections := splitSections(sampleResume)

	assert.NotEmpty(t, sections[sectionHeader])
	assert.NotEmpty(t, sections[sectionExperience])
	assert.NotEmpty(t, sections[sectionEducation])
	assert.NotEmpty(t, sections[sectionSkills])
	assert.NotEmpty(t, sections[sectionProjects])

	// A paragraph mentioning a section word is not a header.
	long := strings.Repeat("x", 30) + " experience " + strings.Repeat("y", 30)
	_, ok := matchSectionTitle(long)
	assert.False(t, ok)
}

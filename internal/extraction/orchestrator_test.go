package extraction

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talentmatch/resume-engine/internal/config"
	"talentmatch/resume-engine/internal/models"
)

type stubAdapter struct {
	kind    AdapterKind
	profile *models.CandidateProfile
	err     error
	calls   int
}

func (s *stubAdapter) Kind() AdapterKind { return s.kind }

func (s *stubAdapter) Extract(ctx context.Context, in Input) (*models.CandidateProfile, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

func namedProfile(name string) *models.CandidateProfile {
	p := models.EmptyProfile()
	p.Identity.Name = models.Known(name, 0.9)
	p.Experience = []models.ExperienceEntry{{Title: "Engineer", StartDate: "2020-01", Description: "Work."}}
	p.Skills = map[string][]string{"languages": {"go"}}
	p.OverallConfidence = 0.8
	return p
}

func testExtractionConfig() config.ExtractionConfig {
	return config.ExtractionConfig{
		AdapterTimeout: 100 * time.Millisecond,
		QualityWeights: testWeights,
	}
}

func newTestOrchestrator(adapters ...Adapter) *Orchestrator {
	return NewOrchestrator(adapters, nil, testExtractionConfig(), zap.NewNop())
}

const plainResume = "Dana Smith\ndana@example.com\nExperience: Engineer at Acme, Jan 2020 - Present. Go, PostgreSQL."

func TestExtractFirstAdapterWins(t *testing.T) {
	vision := &stubAdapter{kind: AdapterVision, profile: namedProfile("Dana Smith")}
	layout := &stubAdapter{kind: AdapterLayout, profile: namedProfile("Wrong Name")}

	o := newTestOrchestrator(vision, layout)
	result, err := o.Extract(context.Background(), []byte(plainResume), "text/plain")
	require.NoError(t, err)

	assert.Equal(t, AdapterVision, result.ExtractedBy)
	assert.Equal(t, "Dana Smith", result.Profile.Identity.Name.Value)
	assert.Equal(t, 0, layout.calls, "complete first result must stop the chain")
}

func TestExtractFallsBackOnTimeout(t *testing.T) {
	vision := &stubAdapter{kind: AdapterVision, err: ErrInferenceTimeout}
	layout := &stubAdapter{kind: AdapterLayout, profile: namedProfile("Dana Smith")}

	o := newTestOrchestrator(vision, layout)
	result, err := o.Extract(context.Background(), []byte(plainResume), "text/plain")
	require.NoError(t, err)

	// The fallback stage, not the failed one, owns the result and its bonus.
	assert.Equal(t, AdapterLayout, result.ExtractedBy)
	assert.Equal(t, 1, vision.calls)
	assert.Equal(t, 1, layout.calls)
}

func TestExtractMergesPartialResults(t *testing.T) {
	partial := models.EmptyProfile()
	partial.Identity.Name = models.Known("Dana Smith", 0.9)

	filler := models.EmptyProfile()
	filler.Identity.Name = models.Known("Wrong Name", 0.6)
	filler.Identity.Email = models.Known("dana@example.com", 0.6)
	filler.Experience = []models.ExperienceEntry{{Title: "Engineer", StartDate: "2020-01"}}
	filler.Skills = map[string][]string{"languages": {"go"}}

	vision := &stubAdapter{kind: AdapterVision, profile: partial}
	sections := &stubAdapter{kind: AdapterSections, profile: filler}

	o := newTestOrchestrator(vision, sections)
	result, err := o.Extract(context.Background(), []byte(plainResume), "text/plain")
	require.NoError(t, err)

	// Higher-fidelity known fields survive the merge; gaps fill in.
	assert.Equal(t, "Dana Smith", result.Profile.Identity.Name.Value)
	assert.Equal(t, "dana@example.com", result.Profile.Identity.Email.Value)
	assert.NotEmpty(t, result.Profile.Experience)
	assert.Equal(t, AdapterVision, result.ExtractedBy)
}

func TestExtractZeroInformationProfileOnTotalFailure(t *testing.T) {
	vision := &stubAdapter{kind: AdapterVision, err: ErrInferenceTimeout}
	rules := &stubAdapter{kind: AdapterRules, err: ErrNoContent}

	o := newTestOrchestrator(vision, rules)
	result, err := o.Extract(context.Background(), []byte(plainResume), "text/plain")
	require.NoError(t, err)

	assert.Equal(t, AdapterNone, result.ExtractedBy)
	assert.False(t, result.Profile.Identity.Name.Known)
	assert.Equal(t, 0.0, result.Profile.OverallConfidence)
	assert.Equal(t, 0, result.QualityScore)
}

func TestExtractAllUnavailableIsAnError(t *testing.T) {
	vision := &stubAdapter{kind: AdapterVision, err: ErrInferenceUnavailable}
	layout := &stubAdapter{kind: AdapterLayout, err: ErrInferenceUnavailable}

	o := newTestOrchestrator(vision, layout)
	_, err := o.Extract(context.Background(), []byte(plainResume), "text/plain")
	assert.ErrorIs(t, err, ErrInferenceUnavailable)
}

func TestExtractUnsupportedFormat(t *testing.T) {
	o := newTestOrchestrator(&stubAdapter{kind: AdapterVision, profile: namedProfile("Dana Smith")})

	_, err := o.Extract(context.Background(), []byte{0x50, 0x4b}, "application/zip")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractSpentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newTestOrchestrator(&stubAdapter{kind: AdapterVision, profile: namedProfile("Dana Smith")})
	_, err := o.Extract(ctx, []byte(plainResume), "text/plain")
	assert.Error(t, err)
}

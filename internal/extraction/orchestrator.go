package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"talentmatch/resume-engine/internal/config"
	"talentmatch/resume-engine/internal/models"
)

// TextRecognizer is the optical-character-recognition capability for scanned
// documents: it recovers plain text from a document that has no text layer.
type TextRecognizer interface {
	RecognizeText(ctx context.Context, raw []byte, mimeType string) (string, error)
}

// Result is a finished extraction: the profile, its quality score, and the
// highest-fidelity adapter that contributed any field.
type Result struct {
	Profile      *models.CandidateProfile `json:"profile"`
	QualityScore int                      `json:"quality_score"`
	ExtractedBy  AdapterKind              `json:"extracted_by"`
}

// Orchestrator runs the degrading fallback chain. Each adapter is attempted
// only when the prior ones failed or left the profile incomplete; partial
// results merge so a higher-fidelity known field is never displaced by a
// lower-fidelity one.
type Orchestrator struct {
	adapters       []Adapter
	ocr            TextRecognizer
	weights        config.QualityWeights
	adapterTimeout time.Duration
	logger         *zap.Logger
}

func NewOrchestrator(adapters []Adapter, ocr TextRecognizer, cfg config.ExtractionConfig, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		adapters:       adapters,
		ocr:            ocr,
		weights:        cfg.QualityWeights,
		adapterTimeout: cfg.AdapterTimeout,
		logger:         logger,
	}
}

// Extract turns document bytes into a candidate profile. Total extraction
// failure is not an error: the caller gets a zero-information profile with
// confidence 0. The only error cases are an unsupported format, a spent
// context, and every adapter reporting its backing capability unreachable.
func (o *Orchestrator) Extract(ctx context.Context, raw []byte, mimeType string) (*Result, error) {
	in, err := o.prepareInput(ctx, raw, mimeType)
	if err != nil {
		return nil, err
	}

	var merged *models.CandidateProfile
	contributor := AdapterNone
	failures := make([]error, 0, len(o.adapters))

	for _, adapter := range o.adapters {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("extraction aborted: %w", err)
		}

		partial, err := o.runAdapter(ctx, adapter, in)
		if err != nil {
			failures = append(failures, err)
			o.logger.Debug("adapter failed, falling back",
				zap.String("adapter", string(adapter.Kind())),
				zap.Error(err),
			)
			continue
		}

		if merged == nil {
			merged = partial
			contributor = adapter.Kind()
		} else {
			mergeProfiles(merged, partial)
		}

		if profileComplete(merged) {
			break
		}
	}

	if merged == nil {
		if len(failures) > 0 && allUnavailable(failures) {
			return nil, fmt.Errorf("every extraction adapter unreachable: %w", errors.Join(failures...))
		}
		o.logger.Warn("no extractable content, emitting zero-information profile",
			zap.Int("adapters_failed", len(failures)),
		)
		merged = models.EmptyProfile()
	}

	return &Result{
		Profile:      merged,
		QualityScore: ComputeQuality(merged, o.weights, contributor),
		ExtractedBy:  contributor,
	}, nil
}

func (o *Orchestrator) runAdapter(ctx context.Context, adapter Adapter, in Input) (*models.CandidateProfile, error) {
	actx, cancel := context.WithTimeout(ctx, o.adapterTimeout)
	defer cancel()
	return adapter.Extract(actx, in)
}

// prepareInput recovers the text layer and routes scanned documents through
// OCR before the text-based stages see them.
func (o *Orchestrator) prepareInput(ctx context.Context, raw []byte, mimeType string) (Input, error) {
	in := Input{Raw: raw, Mime: mimeType}

	switch mimeType {
	case "application/pdf":
		text, pages, scanned, err := recoverTextLayer(raw)
		if err != nil {
			o.logger.Debug("text layer recovery failed", zap.Error(err))
		}
		in.Text, in.Pages, in.Scanned = text, pages, scanned
	case "text/plain":
		in.Text = CleanText(string(raw))
		in.Scanned = false
	default:
		return in, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}

	if in.Scanned && o.ocr != nil {
		octx, cancel := context.WithTimeout(ctx, o.adapterTimeout)
		text, err := o.ocr.RecognizeText(octx, raw, mimeType)
		cancel()
		if err != nil {
			o.logger.Warn("OCR branch failed for scanned document", zap.Error(err))
		} else if strings.TrimSpace(text) != "" {
			in.Text = CleanText(text)
			in.Pages = []string{in.Text}
		}
	}

	return in, nil
}

// profileComplete decides whether the chain can stop early: identity plus the
// two sections matching needs most.
func profileComplete(p *models.CandidateProfile) bool {
	return p.Identity.Name.Known && len(p.Experience) > 0 && len(p.AllSkills()) > 0
}

// mergeProfiles fills base's unknown fields and empty sections from a
// lower-fidelity partial result. Known fields are never overwritten.
func mergeProfiles(base, add *models.CandidateProfile) {
	base.Identity.Name = base.Identity.Name.Or(add.Identity.Name)
	base.Identity.Email = base.Identity.Email.Or(add.Identity.Email)
	base.Identity.Phone = base.Identity.Phone.Or(add.Identity.Phone)
	base.Identity.Location = base.Identity.Location.Or(add.Identity.Location)

	if len(base.Links) == 0 {
		base.Links = add.Links
	}
	if len(base.Education) == 0 {
		base.Education = add.Education
	}
	if len(base.Experience) == 0 {
		base.Experience = add.Experience
	}
	if len(base.Projects) == 0 {
		base.Projects = add.Projects
	}
	if len(base.AllSkills()) == 0 && len(add.Skills) > 0 {
		base.Skills = add.Skills
	}
	if len(base.Certifications) == 0 {
		base.Certifications = add.Certifications
	}
	if len(base.Languages) == 0 {
		base.Languages = add.Languages
	}

	if !base.Seniority.Label.Known {
		base.Seniority = add.Seniority
	}
	base.Personality.WorkStyle = base.Personality.WorkStyle.Or(add.Personality.WorkStyle)
	base.Personality.OwnershipLevel = base.Personality.OwnershipLevel.Or(add.Personality.OwnershipLevel)
	base.Personality.LearningOrientation = base.Personality.LearningOrientation.Or(add.Personality.LearningOrientation)
	base.Personality.CommunicationStrength = base.Personality.CommunicationStrength.Or(add.Personality.CommunicationStrength)
	base.Personality.RiskProfile = base.Personality.RiskProfile.Or(add.Personality.RiskProfile)

	if len(base.LeadershipSignals) == 0 {
		base.LeadershipSignals = add.LeadershipSignals
	}
	if len(base.RedFlags) == 0 {
		base.RedFlags = add.RedFlags
	}

	base.OverallConfidence = overallConfidence(base)
}

func allUnavailable(failures []error) bool {
	for _, err := range failures {
		if !errors.Is(err, ErrInferenceUnavailable) {
			return false
		}
	}
	return true
}

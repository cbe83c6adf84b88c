package extraction

import (
	"context"
	"errors"

	"talentmatch/resume-engine/internal/models"
)

// AdapterKind identifies one extraction strategy. Kinds are ordered by
// fidelity: vision > layout > sections > rules.
type AdapterKind string

const (
	AdapterVision   AdapterKind = "vision"
	AdapterLayout   AdapterKind = "layout"
	AdapterSections AdapterKind = "sections"
	AdapterRules    AdapterKind = "rules"
	AdapterNone     AdapterKind = "none"
)

// fidelityConfidence caps the confidence an adapter may claim for fields it
// extracts without a per-field self-report.
var fidelityConfidence = map[AdapterKind]float64{
	AdapterVision:   0.9,
	AdapterLayout:   0.75,
	AdapterSections: 0.6,
	AdapterRules:    0.4,
}

// Sentinel failures recognized by the fallback chain. Timeout and
// unavailability trigger fallback to the next adapter; they never surface
// past the orchestrator.
var (
	ErrInferenceTimeout     = errors.New("inference timed out")
	ErrInferenceUnavailable = errors.New("inference backend unavailable")
	ErrUnsupportedFormat    = errors.New("unsupported document format")
	ErrNoContent            = errors.New("no extractable content")
)

// Input carries one document through the chain. Text and Pages are populated
// from the text layer when one exists, or from the OCR branch for scanned
// documents.
type Input struct {
	Raw     []byte
	Mime    string
	Text    string
	Pages   []string
	Scanned bool
}

// Adapter is one data-carrying extraction strategy. Implementations return a
// partial profile; fields without evidence stay Unknown.
type Adapter interface {
	Kind() AdapterKind
	Extract(ctx context.Context, in Input) (*models.CandidateProfile, error)
}

// classifyModelErr maps transport-level failures onto the chain's sentinel
// taxonomy so the orchestrator can decide between fallback and task failure.
func classifyModelErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrInferenceTimeout
	}
	return errors.Join(ErrInferenceUnavailable, err)
}

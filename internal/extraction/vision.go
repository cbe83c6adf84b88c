package extraction

import (
	"context"
	"fmt"

	"talentmatch/resume-engine/internal/models"
)

// DocumentModel is the vision-capable capability the highest-fidelity adapter
// calls: it reads the raw document (layout, tables, images included) and
// answers a prompt about it.
type DocumentModel interface {
	GenerateFromDocument(ctx context.Context, raw []byte, mimeType, prompt string, temperature float32) (string, error)
}

// VisionAdapter extracts a profile by handing the raw document to a
// vision-capable model. Highest fidelity in the chain.
type VisionAdapter struct {
	model DocumentModel
}

func NewVisionAdapter(model DocumentModel) *VisionAdapter {
	return &VisionAdapter{model: model}
}

func (a *VisionAdapter) Kind() AdapterKind {
	return AdapterVision
}

func (a *VisionAdapter) Extract(ctx context.Context, in Input) (*models.CandidateProfile, error) {
	if a.model == nil {
		return nil, ErrInferenceUnavailable
	}

	response, err := a.model.GenerateFromDocument(ctx, in.Raw, in.Mime, buildVisionPrompt(), 0.1)
	if err != nil {
		return nil, classifyModelErr(ctx, err)
	}

	wire, err := parseProfileJSON(response)
	if err != nil {
		return nil, fmt.Errorf("vision adapter produced unparseable output: %w", err)
	}
	return wire.toProfile(AdapterVision), nil
}

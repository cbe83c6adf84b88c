package extraction

import (
	"context"
	"fmt"

	"talentmatch/resume-engine/internal/models"
)

// TextModel is the layout-aware generation capability: prompt in, text out.
type TextModel interface {
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
}

// LayoutAdapter reconstructs the profile from page-structured text. Used when
// the vision pass is unavailable or times out; the page boundaries preserve
// enough reading order for the model to segment multi-column résumés.
type LayoutAdapter struct {
	model TextModel
}

func NewLayoutAdapter(model TextModel) *LayoutAdapter {
	return &LayoutAdapter{model: model}
}

func (a *LayoutAdapter) Kind() AdapterKind {
	return AdapterLayout
}

func (a *LayoutAdapter) Extract(ctx context.Context, in Input) (*models.CandidateProfile, error) {
	if a.model == nil {
		return nil, ErrInferenceUnavailable
	}

	pages := in.Pages
	if len(pages) == 0 {
		if in.Text == "" {
			return nil, ErrNoContent
		}
		pages = []string{in.Text}
	}

	response, err := a.model.GenerateText(ctx, buildLayoutPrompt(pages), 0.1)
	if err != nil {
		return nil, classifyModelErr(ctx, err)
	}

	wire, err := parseProfileJSON(response)
	if err != nil {
		return nil, fmt.Errorf("layout adapter produced unparseable output: %w", err)
	}
	return wire.toProfile(AdapterLayout), nil
}

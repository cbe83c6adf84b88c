package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"talentmatch/resume-engine/internal/cache"
	"talentmatch/resume-engine/internal/config"
	"talentmatch/resume-engine/internal/extraction"
)

// GeminiService is the single client behind every model call: structured
// document extraction, OCR text recovery, embeddings, and explanation prose.
type GeminiService interface {
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateFromDocument(ctx context.Context, raw []byte, mimeType, prompt string, temperature float32) (string, error)
	RecognizeText(ctx context.Context, raw []byte, mimeType string) (string, error)
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

type geminiService struct {
	client       *genai.Client
	modelName    string
	embedModel   string
	cache        *cache.ResultCache
	embeddingTTL time.Duration
	logger       *zap.Logger
}

func NewGeminiService(cfg config.GeminiConfig, resultCache *cache.ResultCache, embeddingTTL time.Duration, logger *zap.Logger) (GeminiService, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:       client,
		modelName:    cfg.Model,
		embedModel:   cfg.EmbedModel,
		cache:        resultCache,
		embeddingTTL: embeddingTTL,
		logger:       logger,
	}, nil
}

func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 8192,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("no response generated")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}
	return text, nil
}

// GenerateFromDocument sends the raw document bytes alongside the prompt so
// the model reads layout, not just a text dump.
func (g *geminiService) GenerateFromDocument(ctx context.Context, raw []byte, mimeType, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 8192,
	}

	content := genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromBytes(raw, mimeType),
		genai.NewPartFromText(prompt),
	}, genai.RoleUser)

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, []*genai.Content{content}, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate from document: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("no response generated")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}
	return text, nil
}

// RecognizeText recovers plain text from a scanned document. Used by the
// extraction pipeline when no usable text layer exists.
func (g *geminiService) RecognizeText(ctx context.Context, raw []byte, mimeType string) (string, error) {
	text, err := g.GenerateFromDocument(ctx, raw, mimeType, extraction.OCRPrompt(), 0)
	if err != nil {
		return "", fmt.Errorf("failed to recognize document text: %w", err)
	}
	return text, nil
}

// EmbedText embeds the text, caching by content hash. Transient embedding
// failures therefore only cost one model call per distinct text per TTL.
func (g *geminiService) EmbedText(ctx context.Context, text string) ([]float32, error) {
	// Stay under the embedding model's token ceiling.
	if len(text) > 40000 {
		text = text[:40000]
	}

	key := cache.KeyText(cache.NamespaceEmbedding, text)
	data, err := g.cache.GetOrCompute(ctx, key, g.embeddingTTL, func(ctx context.Context) ([]byte, error) {
		result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}
		if result == nil || len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("empty embedding result")
		}
		return json.Marshal(result.Embeddings[0].Values)
	})
	if err != nil {
		return nil, err
	}

	var vector []float32
	if err := json.Unmarshal(data, &vector); err != nil {
		return nil, fmt.Errorf("failed to decode cached embedding: %w", err)
	}
	return vector, nil
}

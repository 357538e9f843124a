// Package ai generates study content with Gemini.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	genai "google.golang.org/genai"
	"study-aid-service/internal/domain"
)

const DefaultModel = "gemini-2.5-flash"

// contentModel is the part of genai.Models the generator uses.
type contentModel interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini implements app.ContentGenerator against the Gemini API.
type Gemini struct {
	models contentModel
	model  string
	log    *zap.Logger
}

func NewGemini(ctx context.Context, apiKey, model string, log *zap.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return newGemini(c.Models, model, log), nil
}

func newGemini(models contentModel, model string, log *zap.Logger) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gemini{models: models, model: model, log: log}
}

// Generate asks the model for one kind of content. Structured kinds request
// JSON matching a response schema; the summary is plain text.
func (g *Gemini) Generate(ctx context.Context, kind domain.GenerationKind, text string, count int) (domain.Content, error) {
	out := domain.Content{Kind: kind}
	var schema *genai.Schema
	switch kind {
	case domain.KindFlashcards:
		schema = flashcardsSchema
	case domain.KindMindMap:
		schema = mindMapSchema
	case domain.KindQuiz:
		schema = quizSchema
	case domain.KindVisualAid:
		schema = chartSchema
	case domain.KindSummary:
	default:
		return out, domain.ErrUnknownKind
	}

	var config *genai.GenerateContentConfig
	if schema != nil {
		config = &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		}
	}

	res, err := g.models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(buildPrompt(kind, text, count), genai.RoleUser),
	}, config)
	if err != nil {
		return out, fmt.Errorf("%w: gemini call: %v", domain.ErrGeneration, err)
	}
	raw := res.Text()
	if raw == "" {
		return out, fmt.Errorf("%w: empty response", domain.ErrGeneration)
	}
	g.log.Debug("gemini response", zap.String("kind", string(kind)), zap.Int("bytes", len(raw)))

	switch kind {
	case domain.KindFlashcards:
		err = decodeJSON(raw, &out.Flashcards)
	case domain.KindMindMap:
		out.MindMap = &domain.MindMapNode{}
		err = decodeJSON(raw, out.MindMap)
	case domain.KindQuiz:
		err = decodeJSON(raw, &out.Quiz)
	case domain.KindVisualAid:
		out.VisualAid = &domain.ChartData{}
		err = decodeJSON(raw, out.VisualAid)
	case domain.KindSummary:
		out.Summary = cleanSummary(raw)
	}
	if err != nil {
		g.log.Warn("unparseable gemini response", zap.String("kind", string(kind)), zap.Error(err))
		return domain.Content{Kind: kind}, err
	}
	return out, nil
}

func decodeJSON(raw string, v any) error {
	js := stripCodeFences(raw)
	err := json.Unmarshal([]byte(js), v)
	if err == nil {
		return nil
	}
	if s := findFirstJSON(js); s != "" {
		if err2 := json.Unmarshal([]byte(s), v); err2 == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: invalid JSON from model: %v", domain.ErrGeneration, err)
}

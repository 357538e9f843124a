package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	genai "google.golang.org/genai"
	"study-aid-service/internal/domain"
)

type fakeModels struct {
	reply  string
	err    error
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.reply}}},
		}},
	}, nil
}

func TestGenerateFlashcardsRequestsSchema(t *testing.T) {
	models := &fakeModels{reply: "```json\n[{\"question\":\"What is ATP?\",\"answer\":\"Energy currency\"}]\n```"}
	g := newGemini(models, "", nil)

	content, err := g.Generate(context.Background(), domain.KindFlashcards, "cells", 7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(content.Flashcards) != 1 || content.Flashcards[0].Answer != "Energy currency" {
		t.Fatalf("unexpected flashcards %+v", content.Flashcards)
	}
	if models.model != DefaultModel {
		t.Fatalf("expected default model, got %s", models.model)
	}
	if models.config == nil || models.config.ResponseMIMEType != "application/json" || models.config.ResponseSchema != flashcardsSchema {
		t.Fatalf("expected JSON schema config, got %+v", models.config)
	}
	if !strings.Contains(models.prompt, "exactly 7 flashcards") || !strings.HasSuffix(models.prompt, "Text: cells") {
		t.Fatalf("unexpected prompt %q", models.prompt)
	}
}

func TestGenerateMindMapAndChart(t *testing.T) {
	models := &fakeModels{reply: `{"name":"Biology","children":[{"name":"Cells","children":[{"name":"Nucleus"}]}]}`}
	g := newGemini(models, "gemini-test", nil)

	content, err := g.Generate(context.Background(), domain.KindMindMap, "text", 0)
	if err != nil {
		t.Fatalf("generate mind map: %v", err)
	}
	if content.MindMap == nil || content.MindMap.Children[0].Children[0].Name != "Nucleus" {
		t.Fatalf("unexpected mind map %+v", content.MindMap)
	}

	models.reply = `Here you go: {"labels":["a","b"],"datasets":[{"label":"Count","data":[1,2.5]}]}`
	content, err = g.Generate(context.Background(), domain.KindVisualAid, "text", 0)
	if err != nil {
		t.Fatalf("generate chart: %v", err)
	}
	if content.VisualAid == nil || content.VisualAid.Datasets[0].Data[1] != 2.5 {
		t.Fatalf("unexpected chart %+v", content.VisualAid)
	}
}

func TestGenerateSummaryIsPlainText(t *testing.T) {
	models := &fakeModels{reply: "## Key points\n* **Plants** make sugar\n\n- Light drives it\n"}
	g := newGemini(models, "", nil)

	content, err := g.Generate(context.Background(), domain.KindSummary, "text", 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if models.config != nil {
		t.Fatalf("summary should not request JSON")
	}
	want := "Key points\n- Plants make sugar\n- Light drives it"
	if content.Summary != want {
		t.Fatalf("expected %q, got %q", want, content.Summary)
	}
}

func TestGenerateFailures(t *testing.T) {
	g := newGemini(&fakeModels{reply: "not json at all"}, "", nil)
	if _, err := g.Generate(context.Background(), domain.KindQuiz, "text", 3); !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("expected generation error for bad JSON, got %v", err)
	}

	g = newGemini(&fakeModels{err: errors.New("quota")}, "", nil)
	if _, err := g.Generate(context.Background(), domain.KindQuiz, "text", 3); !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("expected generation error for API failure, got %v", err)
	}

	if _, err := g.Generate(context.Background(), "poem", "text", 0); !errors.Is(err, domain.ErrUnknownKind) {
		t.Fatalf("expected unknown kind, got %v", err)
	}
}

func TestFindFirstJSONSkipsBracketsInStrings(t *testing.T) {
	got := findFirstJSON(`prefix [{"q":"what is [x]?"}] trailing ]`)
	if got != `[{"q":"what is [x]?"}]` {
		t.Fatalf("unexpected json %q", got)
	}
}

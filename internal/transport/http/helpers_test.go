package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"study-aid-service/internal/app"
	"study-aid-service/internal/domain"
	"study-aid-service/internal/infra/memory"
	"study-aid-service/internal/ingest"
	"study-aid-service/internal/store"
)

type staticGenerator struct{}

func (staticGenerator) Generate(_ context.Context, kind domain.GenerationKind, _ string, count int) (domain.Content, error) {
	switch kind {
	case domain.KindQuiz:
		qs := make([]domain.QuizQuestion, count)
		for i := range qs {
			qs[i] = domain.QuizQuestion{Question: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a"}
		}
		return domain.Content{Quiz: qs}, nil
	case domain.KindFlashcards:
		return domain.Content{Flashcards: make([]domain.Flashcard, 0, count)}, nil
	}
	return domain.Content{Summary: "- point"}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *app.StudyService) {
	t.Helper()
	slot := memory.NewSlot()
	service := app.NewStudyService(
		memory.NewSessionStore(),
		ingest.NewExtractor(0),
		staticGenerator{},
		store.NewStudySets(slot, nil),
		store.NewPreferences(slot),
		nil,
	)
	mux := http.NewServeMux()
	NewAPIHandler(service, 0, nil).Register(mux)
	mux.HandleFunc("/ws", NewWSHandler(service, nil).ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, service
}

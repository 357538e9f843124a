package app

import (
	"testing"

	"study-aid-service/internal/domain"
)

func quizOf(n int) []domain.QuizQuestion {
	qs := make([]domain.QuizQuestion, n)
	for i := range qs {
		qs[i] = domain.QuizQuestion{Question: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a"}
	}
	return qs
}

func intPtr(v int) *int { return &v }

func TestComputeAnalyticsWithoutScores(t *testing.T) {
	sets := []domain.StudySet{
		{ID: "1", FileName: "a.pdf", Flashcards: make([]domain.Flashcard, 4)},
		{ID: "2", FileName: "b.pdf", Quiz: quizOf(3)},
	}
	got := ComputeAnalytics(sets)
	if got.AverageScore != nil || got.AverageScoreLabel != "N/A" {
		t.Fatalf("expected N/A average, got %v %q", got.AverageScore, got.AverageScoreLabel)
	}
	if got.DocumentsStudied != 2 || got.QuizzesTaken != 0 || got.TotalFlashcards != 4 {
		t.Fatalf("unexpected counts %+v", got)
	}
	if len(got.Scores) != 0 {
		t.Fatalf("expected no score points, got %d", len(got.Scores))
	}
}

func TestComputeAnalyticsAverages(t *testing.T) {
	sets := []domain.StudySet{
		{ID: "1", FileName: "Cell Biology Lecture 4.pdf", Quiz: quizOf(5), QuizScore: intPtr(3)},
		{ID: "2", FileName: "short.txt", Quiz: quizOf(4), QuizScore: intPtr(4)},
		{ID: "3", FileName: "no-quiz.txt", QuizScore: intPtr(2)},
	}
	got := ComputeAnalytics(sets)
	if got.AverageScore == nil || *got.AverageScore != 80.0 || got.AverageScoreLabel != "80.0%" {
		t.Fatalf("expected 80.0%%, got %v %q", got.AverageScore, got.AverageScoreLabel)
	}
	if got.QuizzesTaken != 3 {
		t.Fatalf("expected every scored set counted, got %d", got.QuizzesTaken)
	}
	if len(got.Scores) != 2 {
		t.Fatalf("expected the set without questions left out of the series, got %d", len(got.Scores))
	}
	if got.Scores[0].Label != "Cell Biology Le..." || got.Scores[1].Label != "short.txt..." {
		t.Fatalf("unexpected labels %+v", got.Scores)
	}
	if got.Scores[0].Percent != 60 || got.Scores[1].Percent != 100 {
		t.Fatalf("unexpected percents %+v", got.Scores)
	}
}

func TestComputeAnalyticsClampsStaleScores(t *testing.T) {
	// score recorded before the quiz was regenerated shorter
	sets := []domain.StudySet{{ID: "1", FileName: "x", Quiz: quizOf(2), QuizScore: intPtr(5)}}
	got := ComputeAnalytics(sets)
	if *got.AverageScore != 100 {
		t.Fatalf("expected clamp to 100, got %v", *got.AverageScore)
	}
}

func TestComputeAnalyticsRounding(t *testing.T) {
	sets := []domain.StudySet{{ID: "1", FileName: "x", Quiz: quizOf(3), QuizScore: intPtr(2)}}
	got := ComputeAnalytics(sets)
	if *got.AverageScore != 66.7 || got.AverageScoreLabel != "66.7%" {
		t.Fatalf("expected 66.7, got %v %q", *got.AverageScore, got.AverageScoreLabel)
	}
}

func TestComputeAnalyticsScoreWithoutQuiz(t *testing.T) {
	sets := []domain.StudySet{{ID: "1", FileName: "x", QuizScore: intPtr(0)}}
	got := ComputeAnalytics(sets)
	if got.QuizzesTaken != 1 {
		t.Fatalf("expected the scored set counted, got %d", got.QuizzesTaken)
	}
	if got.AverageScore != nil || got.AverageScoreLabel != "N/A" {
		t.Fatalf("expected no average without questions, got %v %q", got.AverageScore, got.AverageScoreLabel)
	}
}

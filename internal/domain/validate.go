package domain

import (
	"fmt"
	"strings"
)

// QuizOptionCount is the number of options every quiz question carries.
const QuizOptionCount = 4

// Validate checks generated content before it is merged into a study set.
func (c Content) Validate() error {
	switch c.Kind {
	case KindFlashcards:
		return ValidateFlashcards(c.Flashcards)
	case KindMindMap:
		return ValidateMindMap(c.MindMap)
	case KindQuiz:
		return ValidateQuiz(c.Quiz)
	case KindVisualAid:
		return ValidateChart(c.VisualAid)
	case KindSummary:
		if strings.TrimSpace(c.Summary) == "" {
			return fmt.Errorf("summary is empty")
		}
		return nil
	}
	return ErrUnknownKind
}

func ValidateFlashcards(cards []Flashcard) error {
	if len(cards) == 0 {
		return fmt.Errorf("no flashcards")
	}
	for i, card := range cards {
		if strings.TrimSpace(card.Question) == "" || strings.TrimSpace(card.Answer) == "" {
			return fmt.Errorf("flashcard %d: question and answer are required", i)
		}
	}
	return nil
}

func ValidateMindMap(root *MindMapNode) error {
	if root == nil || strings.TrimSpace(root.Name) == "" {
		return fmt.Errorf("mind map root needs a name")
	}
	return nil
}

// ValidateQuiz requires four options per question with the correct answer among them.
func ValidateQuiz(questions []QuizQuestion) error {
	if len(questions) == 0 {
		return fmt.Errorf("no quiz questions")
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("question %d: empty prompt", i)
		}
		if len(q.Options) != QuizOptionCount {
			return fmt.Errorf("question %d: want %d options, got %d", i, QuizOptionCount, len(q.Options))
		}
		found := false
		for _, opt := range q.Options {
			if opt == q.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("question %d: correct answer %q is not an option", i, q.CorrectAnswer)
		}
	}
	return nil
}

// ValidateChart requires every dataset to have one value per label.
func ValidateChart(chart *ChartData) error {
	if chart == nil || len(chart.Labels) == 0 {
		return fmt.Errorf("chart has no labels")
	}
	if len(chart.Datasets) == 0 {
		return fmt.Errorf("chart has no datasets")
	}
	for _, ds := range chart.Datasets {
		if len(ds.Data) != len(chart.Labels) {
			return fmt.Errorf("dataset %q: %d values for %d labels", ds.Label, len(ds.Data), len(chart.Labels))
		}
	}
	return nil
}

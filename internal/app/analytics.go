package app

import (
	"fmt"
	"math"

	"study-aid-service/internal/domain"
)

const scoreLabelRunes = 15

// ScorePoint is one bar of the per-set quiz score chart.
type ScorePoint struct {
	StudySetID string  `json:"studySetId"`
	Label      string  `json:"label"`
	Percent    float64 `json:"percent"`
}

// Analytics summarizes an owner's study sets.
type Analytics struct {
	DocumentsStudied  int          `json:"documentsStudied"`
	QuizzesTaken      int          `json:"quizzesTaken"`
	TotalFlashcards   int          `json:"totalFlashcards"`
	AverageScore      *float64     `json:"averageScore"`
	AverageScoreLabel string       `json:"averageScoreLabel"`
	Scores            []ScorePoint `json:"scores"`
}

// ComputeAnalytics derives the analytics view without modifying sets.
// QuizzesTaken counts every set with a score; the average and the series only
// cover scored sets that still have questions. The average is nil when there
// are none.
func ComputeAnalytics(sets []domain.StudySet) Analytics {
	out := Analytics{
		DocumentsStudied:  len(sets),
		AverageScoreLabel: "N/A",
		Scores:            []ScorePoint{},
	}

	var ratioSum float64
	rated := 0
	for _, set := range sets {
		out.TotalFlashcards += len(set.Flashcards)
		if set.QuizScore == nil {
			continue
		}
		out.QuizzesTaken++
		// a score without questions has no percentage
		if len(set.Quiz) == 0 {
			continue
		}
		ratio := float64(*set.QuizScore) / float64(len(set.Quiz))
		if ratio > 1 {
			ratio = 1
		}
		if ratio < 0 {
			ratio = 0
		}
		ratioSum += ratio
		rated++
		out.Scores = append(out.Scores, ScorePoint{
			StudySetID: set.ID,
			Label:      truncateLabel(set.FileName),
			Percent:    ratio * 100,
		})
	}

	if rated > 0 {
		avg := math.Round(ratioSum/float64(rated)*100*10) / 10
		out.AverageScore = &avg
		out.AverageScoreLabel = fmt.Sprintf("%.1f%%", avg)
	}
	return out
}

func truncateLabel(name string) string {
	runes := []rune(name)
	if len(runes) > scoreLabelRunes {
		runes = runes[:scoreLabelRunes]
	}
	return string(runes) + "..."
}

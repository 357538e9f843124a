package ai

import (
	"fmt"

	"study-aid-service/internal/domain"
)

const plainTextSuffix = "Please provide the output as clean text without any markdown formatting (e.g., no **, *, or # symbols)."

func buildPrompt(kind domain.GenerationKind, text string, count int) string {
	var task string
	switch kind {
	case domain.KindFlashcards:
		task = fmt.Sprintf("First, analyze the structure of the following raw text to identify key topics and concepts. Then, based on that understanding, generate exactly %d flashcards for studying. Each flashcard should have a clear question and a concise answer.", count)
	case domain.KindMindMap:
		task = "From the raw text provided, first identify the main subject, key themes, and their relationships. Then, create a hierarchical mind map representing the main topics and sub-topics. The root node should be the main subject of the text. Go about 3 levels deep."
	case domain.KindQuiz:
		task = fmt.Sprintf("Analyze the following text to understand its key information. Then, generate a multiple-choice quiz with exactly %d questions. Each question must have exactly 4 options, and one must be correct. Ensure the correctAnswer value is one of the strings in the options array.", count)
	case domain.KindVisualAid:
		task = "First, analyze the following text to find quantitative data or, if none exists, the frequency or importance of key concepts. Based on this analysis, generate data for a simple bar chart to visualize the information. Extract the data and format it for a chart with labels and one or more datasets."
	case domain.KindSummary:
		task = "Analyze the following text and create a concise, bullet-point summary of its key points and factual information. Each bullet point must start with a hyphen (-). Focus on summarizing the actual content of the document, not its context or purpose. For example, instead of saying 'This document explains photosynthesis', say '- Photosynthesis is the process plants use to convert light into energy'."
	}
	return task + " " + plainTextSuffix + " Text: " + text
}

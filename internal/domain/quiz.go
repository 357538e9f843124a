package domain

// ScoreQuiz counts answers matching each question's correct answer. Missing
// or extra answers are ignored.
func ScoreQuiz(questions []QuizQuestion, answers []string) int {
	score := 0
	for i, q := range questions {
		if i >= len(answers) {
			break
		}
		if answers[i] == q.CorrectAnswer {
			score++
		}
	}
	return score
}

package app

import (
	"strings"

	"quizlens/internal/domain"
)

// Score counts answers equal to the correct answer after trimming and
// lower-casing both sides. Missing answers count as wrong.
func Score(questions []domain.Question, answers []string) (int, []domain.QuestionOutcome) {
	score := 0
	outcomes := make([]domain.QuestionOutcome, len(questions))
	for i, q := range questions {
		var given string
		if i < len(answers) {
			given = answers[i]
		}
		correct := normalize(given) == normalize(q.Answer)
		if correct {
			score++
		}
		outcomes[i] = domain.QuestionOutcome{
			Index:         i,
			Question:      q.Question,
			UserAnswer:    given,
			CorrectAnswer: q.Answer,
			Correct:       correct,
		}
	}
	return score, outcomes
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

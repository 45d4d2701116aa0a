package quizgen

import (
	"fmt"
	"strings"

	"quizlens/internal/domain"
)

const outputShape = `[
  {
    "question": "...",
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "answer": "Correct Option"
  },
  ...
]`

func buildPrompt(text string, count int, difficulty domain.Difficulty) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d multiple-choice questions with %s difficulty based on the following content:\n",
		count, strings.ToLower(string(difficulty)))
	b.WriteString(text)
	b.WriteString("\n\nFormat the output as JSON with this structure:\n")
	b.WriteString(outputShape)
	b.WriteString("\n\nReturn only the JSON array. Each question has exactly four options and the answer is the text of one of them.")
	return b.String()
}

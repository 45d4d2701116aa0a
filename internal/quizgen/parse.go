package quizgen

import (
	"encoding/json"
	"fmt"
	"strings"

	"quizlens/internal/domain"
)

// StripFences removes a leading ```json (or bare ```) marker and a trailing
// ``` marker, trimming whitespace around both.
func StripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(cleaned, "```json"); ok {
		cleaned = strings.TrimSpace(rest)
	} else if rest, ok := strings.CutPrefix(cleaned, "```"); ok {
		cleaned = strings.TrimSpace(rest)
	}
	if rest, ok := strings.CutSuffix(cleaned, "```"); ok {
		cleaned = strings.TrimSpace(rest)
	}
	return cleaned
}

// Parse turns raw model text into questions. Any failure is a
// *domain.MalformedPayloadError carrying the unmodified raw text.
// When count is positive, extra questions are dropped.
func Parse(raw string, count int, requireAnswerInOptions bool) ([]domain.Question, error) {
	malformed := func(err error) error {
		return &domain.MalformedPayloadError{Raw: raw, Err: err}
	}

	cleaned := StripFences(raw)

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, malformed(fmt.Errorf("invalid JSON: %w", err))
	}
	if err := validateShape(doc); err != nil {
		return nil, malformed(err)
	}

	var questions []domain.Question
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, malformed(err)
	}

	if requireAnswerInOptions {
		for i := range questions {
			option, ok := matchOption(questions[i].Options, questions[i].Answer)
			if !ok {
				return nil, malformed(fmt.Errorf("question %d: answer %q is not one of its options", i+1, questions[i].Answer))
			}
			questions[i].Answer = option
		}
	}

	if count > 0 && len(questions) > count {
		questions = questions[:count]
	}
	return questions, nil
}

// matchOption finds the option equal to answer, trimmed and case-insensitive.
func matchOption(options []string, answer string) (string, bool) {
	want := strings.TrimSpace(answer)
	for _, o := range options {
		if strings.EqualFold(strings.TrimSpace(o), want) {
			return o, true
		}
	}
	return "", false
}

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoContent means the resolved quiz source was empty after trimming.
	ErrNoContent = errors.New("no content available")
	// ErrBlankName is returned when a quiz is requested without a user name.
	ErrBlankName = errors.New("name is required")

	ErrInvalidCount      = errors.New("question count must be 3, 5 or 10")
	ErrInvalidDifficulty = errors.New("difficulty must be Easy, Medium or Hard")
	ErrInvalidMode       = errors.New("input mode must be Topic, TextNotes or PDF")
	// ErrNoQuiz is returned when answering before a quiz was generated.
	ErrNoQuiz = errors.New("no quiz loaded")
	// ErrQuestionNotFound indicates a question index outside the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a selected option that the question does not offer.
	ErrOptionNotFound = errors.New("option not found")
	// ErrIncompleteAnswers is returned when submitting before every question is answered.
	ErrIncompleteAnswers = errors.New("every question needs an answer")
	// ErrAlreadySubmitted is returned for changes to a frozen attempt.
	ErrAlreadySubmitted = errors.New("quiz already submitted")
	// ErrGenerationSuperseded means the session was restarted or regenerated while a quiz was being generated.
	ErrGenerationSuperseded = errors.New("quiz generation superseded")
	// ErrCatalogUnavailable indicates the topic catalog could not be loaded.
	ErrCatalogUnavailable = errors.New("topic catalog unavailable")
	// ErrLeaderboardUnavailable indicates the leaderboard file is missing or unreadable.
	ErrLeaderboardUnavailable = errors.New("no leaderboard data available")
)

// MalformedPayloadError reports model output that could not be turned into questions.
// Raw keeps the unmodified model text so it can be shown to the user.
type MalformedPayloadError struct {
	Raw string
	Err error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("failed to parse quiz: %v", e.Err)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

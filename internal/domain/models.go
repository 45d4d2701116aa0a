package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateTimeLayout is the leaderboard timestamp format (YYYY-MM-DD HH:MM:SS).
const DateTimeLayout = "2006-01-02 15:04:05"

// NotesTopic is the leaderboard topic recorded for quizzes built from notes or a PDF.
const NotesTopic = "Notes"

// Difficulty is the requested quiz difficulty.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ParseDifficulty accepts any casing of Easy, Medium or Hard.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "easy":
		return DifficultyEasy, nil
	case "medium":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, raw)
}

// InputMode selects where quiz content comes from.
type InputMode string

const (
	ModeTopic     InputMode = "Topic"
	ModeTextNotes InputMode = "TextNotes"
	ModePDF       InputMode = "PDF"
)

// ParseInputMode accepts the canonical names plus the "Text Notes" label.
func ParseInputMode(raw string) (InputMode, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), " ", "")) {
	case "", "topic":
		return ModeTopic, nil
	case "textnotes", "text", "notes":
		return ModeTextNotes, nil
	case "pdf":
		return ModePDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, raw)
}

// QuestionCounts are the quiz lengths a user may request.
var QuestionCounts = []int{3, 5, 10}

// ValidateCount reports ErrInvalidCount for anything outside QuestionCounts.
func ValidateCount(n int) error {
	for _, c := range QuestionCounts {
		if n == c {
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrInvalidCount, n)
}

// Question models an MCQ question. Answer is the text of the correct option.
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// TopicKey identifies a (topic, difficulty) pair, both lowercased.
type TopicKey struct {
	Topic      string
	Difficulty string
}

func NewTopicKey(topic string, difficulty Difficulty) TopicKey {
	return TopicKey{
		Topic:      strings.ToLower(topic),
		Difficulty: strings.ToLower(string(difficulty)),
	}
}

// AttemptRecord is one leaderboard row.
type AttemptRecord struct {
	Name       string     `json:"name"`
	Score      string     `json:"score"` // "<correct>/<total>"
	Topic      string     `json:"topic"`
	Difficulty Difficulty `json:"difficulty"`
	DateTime   string     `json:"dateTime"`
}

// NewAttemptRecord formats the score and timestamp the way the leaderboard stores them.
func NewAttemptRecord(name string, score, total int, topic string, difficulty Difficulty, at time.Time) AttemptRecord {
	return AttemptRecord{
		Name:       name,
		Score:      fmt.Sprintf("%d/%d", score, total),
		Topic:      topic,
		Difficulty: difficulty,
		DateTime:   at.Format(DateTimeLayout),
	}
}

// QuestionOutcome is the graded view of one question.
type QuestionOutcome struct {
	Index         int    `json:"index"`
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Correct       bool   `json:"correct"`
}

// Result summarizes a submitted attempt.
type Result struct {
	Score    int               `json:"score"`
	Total    int               `json:"total"`
	Outcomes []QuestionOutcome `json:"outcomes"`
	Record   AttemptRecord     `json:"record"`
	// PersistError is set when the leaderboard append failed; in-memory history was still updated.
	PersistError string `json:"persistError,omitempty"`
}

// WeakTopic is the display form of a weak (topic, difficulty) pair.
type WeakTopic struct {
	Topic       string `json:"topic"`
	Difficulty  string `json:"difficulty"`
	LowestScore int    `json:"lowestScore"`
}

// CatalogTopic is one entry of the reference topic catalog.
type CatalogTopic struct {
	Name string `json:"name"`
}

// Phase is the lifecycle phase of a quiz session.
type Phase string

const (
	PhaseEmpty     Phase = "empty"
	PhaseLoaded    Phase = "loaded"
	PhaseAnswering Phase = "answering"
	PhaseSubmitted Phase = "submitted"
)

// QuestionView hides the answer until the quiz is submitted.
type QuestionView struct {
	Index    int      `json:"index"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// SessionView is the read model handed to clients.
type SessionView struct {
	SessionID        string         `json:"sessionId"`
	Phase            Phase          `json:"phase"`
	Name             string         `json:"name,omitempty"`
	Topic            string         `json:"topic,omitempty"`
	Mode             InputMode      `json:"mode,omitempty"`
	Difficulty       Difficulty     `json:"difficulty,omitempty"`
	Questions        []QuestionView `json:"questions"`
	Answers          []string       `json:"answers"`
	Submitted        bool           `json:"submitted"`
	Result           *Result        `json:"result,omitempty"`
	RecommendedTopic string         `json:"recommendedTopic,omitempty"`
}

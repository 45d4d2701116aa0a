package app

import (
	"context"

	"quizlens/internal/domain"
	"quizlens/internal/source"
)

// SessionRepository abstracts how user sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(ctx context.Context, sessionID string) *Session
	Get(ctx context.Context, sessionID string) (*Session, bool)
	DeleteIfEmpty(ctx context.Context, sessionID string)
}

// SourceResolver turns user input into the text a quiz is generated from.
type SourceResolver interface {
	Resolve(ctx context.Context, in source.Input) (string, error)
}

// QuestionGenerator produces multiple-choice questions about text.
type QuestionGenerator interface {
	Generate(ctx context.Context, text string, count int, difficulty domain.Difficulty) ([]domain.Question, error)
}

// LeaderboardStore persists attempt records.
type LeaderboardStore interface {
	Append(ctx context.Context, rec domain.AttemptRecord) error
	Recent(ctx context.Context, n int) ([]domain.AttemptRecord, error)
}

// TopicCatalog loads the reference topic catalog (from cache/backing store).
type TopicCatalog interface {
	Topics(ctx context.Context) ([]domain.CatalogTopic, error)
}

package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"quizlens/internal/domain"
	"quizlens/internal/insights"
	"quizlens/internal/source"
)

const (
	// LeaderboardSize is how many recent attempts the leaderboard shows.
	LeaderboardSize = 10
	// WeakTopicsSize is how many weak topics are listed.
	WeakTopicsSize = 10
)

// GenerateRequest carries everything needed to build a quiz.
type GenerateRequest struct {
	Name       string
	Mode       domain.InputMode
	Topic      string
	Text       string
	PDF        []byte
	Count      int
	Difficulty domain.Difficulty
}

// QuizService contains the core quiz use cases.
type QuizService struct {
	sessions    SessionRepository
	sources     SourceResolver
	generator   QuestionGenerator
	leaderboard LeaderboardStore
	catalog     TopicCatalog
	recommender *insights.Recommender
	now         func() time.Time
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithClock sets the clock used for attempt timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithRecommender replaces the randomly seeded recommender.
func WithRecommender(r *insights.Recommender) Option {
	return func(s *QuizService) { s.recommender = r }
}

// NewQuizService wires the use cases. catalog may be nil, which disables
// recommendations and topic search.
func NewQuizService(sessions SessionRepository, sources SourceResolver, generator QuestionGenerator,
	leaderboard LeaderboardStore, catalog TopicCatalog, opts ...Option) *QuizService {
	s := &QuizService{
		sessions:    sessions,
		sources:     sources,
		generator:   generator,
		leaderboard: leaderboard,
		catalog:     catalog,
		recommender: insights.NewRecommender(nil),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate validates the request, resolves the source text and asks the
// generator for questions. The model call runs without holding the session.
func (s *QuizService) Generate(ctx context.Context, sessionID string, req GenerateRequest) (domain.SessionView, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.SessionView{}, domain.ErrBlankName
	}
	if err := domain.ValidateCount(req.Count); err != nil {
		return domain.SessionView{}, err
	}
	difficulty, err := domain.ParseDifficulty(string(req.Difficulty))
	if err != nil {
		return domain.SessionView{}, err
	}
	mode, err := domain.ParseInputMode(string(req.Mode))
	if err != nil {
		return domain.SessionView{}, err
	}

	text, err := s.sources.Resolve(ctx, source.Input{Mode: mode, Topic: req.Topic, Text: req.Text, PDF: req.PDF})
	if err != nil {
		return domain.SessionView{}, err
	}

	quiz := loadedQuiz{name: name, mode: mode, difficulty: difficulty}
	if mode == domain.ModeTopic {
		quiz.topic = text
	}

	session := s.sessions.GetOrCreate(ctx, sessionID)
	token := session.beginGeneration()

	questions, genErr := s.generator.Generate(ctx, text, req.Count, difficulty)
	if genErr == nil && len(questions) == 0 {
		genErr = &domain.MalformedPayloadError{Err: fmt.Errorf("model returned no questions")}
	}
	quiz.questions = questions

	return session.finishGeneration(token, quiz, genErr)
}

// SelectAnswer records the option chosen for the question at index.
func (s *QuizService) SelectAnswer(ctx context.Context, sessionID string, index int, option string) (domain.SessionView, error) {
	session, ok := s.sessions.Get(ctx, sessionID)
	if !ok {
		return domain.SessionView{}, domain.ErrNoQuiz
	}
	return session.selectAnswer(index, option)
}

// Submit freezes the attempt, scores it and records it. answers, when
// given, replace the current selections first. A leaderboard failure is
// reported in Result.PersistError and does not undo anything.
func (s *QuizService) Submit(ctx context.Context, sessionID string, answers ...string) (domain.Result, error) {
	session, ok := s.sessions.Get(ctx, sessionID)
	if !ok {
		return domain.Result{}, domain.ErrNoQuiz
	}

	sub, err := session.freeze(answers)
	if err != nil {
		return domain.Result{}, err
	}

	rec := domain.NewAttemptRecord(sub.name, sub.score, sub.total, sub.recordTopic(), sub.difficulty, s.now())
	persistErr := s.leaderboard.Append(ctx, rec)
	if persistErr != nil {
		log.Printf("leaderboard append failed for session %s: %v", sessionID, persistErr)
	}

	result := session.recordAttempt(sub, rec, persistErr)

	if sub.mode == domain.ModeTopic {
		s.recommendNext(ctx, session, sub)
	}
	return result, nil
}

func (s *QuizService) recommendNext(ctx context.Context, session *Session, sub submission) {
	if s.catalog == nil {
		return
	}
	topics, err := s.catalog.Topics(ctx)
	if err != nil {
		log.Printf("topic catalog unavailable: %v", err)
		return
	}
	if next, ok := s.recommender.Recommend(topics, sub.topic); ok {
		session.setRecommendation(sub.token, next)
	}
}

// Restart clears the current quiz. History and weak topics are kept.
func (s *QuizService) Restart(ctx context.Context, sessionID string) domain.SessionView {
	session, ok := s.sessions.Get(ctx, sessionID)
	if !ok {
		return emptyView(sessionID)
	}
	return session.restart()
}

// State returns the current view of the session without creating it.
func (s *QuizService) State(ctx context.Context, sessionID string) domain.SessionView {
	session, ok := s.sessions.Get(ctx, sessionID)
	if !ok {
		return emptyView(sessionID)
	}
	return session.view()
}

// Predict returns the expected score for a topic and difficulty from this
// session's history.
func (s *QuizService) Predict(ctx context.Context, sessionID, topic string, difficulty domain.Difficulty) (float64, error) {
	d, err := domain.ParseDifficulty(string(difficulty))
	if err != nil {
		return 0, err
	}
	session, ok := s.sessions.Get(ctx, sessionID)
	if !ok {
		return insights.DefaultPrediction, nil
	}
	return session.predict(strings.TrimSpace(topic), d), nil
}

// WeakTopics lists the session's weakest pairs, lowest score first.
func (s *QuizService) WeakTopics(ctx context.Context, sessionID string) []domain.WeakTopic {
	session, ok := s.sessions.Get(ctx, sessionID)
	if !ok {
		return []domain.WeakTopic{}
	}
	return session.weakTopics(WeakTopicsSize)
}

// Leaderboard returns the most recent attempts, newest first.
func (s *QuizService) Leaderboard(ctx context.Context) ([]domain.AttemptRecord, error) {
	return s.leaderboard.Recent(ctx, LeaderboardSize)
}

// SearchTopics fuzzily matches query against the topic catalog.
func (s *QuizService) SearchTopics(ctx context.Context, query string, limit int) ([]domain.CatalogTopic, error) {
	if s.catalog == nil {
		return nil, domain.ErrCatalogUnavailable
	}
	topics, err := s.catalog.Topics(ctx)
	if err != nil {
		return nil, err
	}
	return insights.SearchTopics(topics, strings.TrimSpace(query), limit), nil
}

// Subscribe returns a channel that receives every change to the session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context, sessionID string) (<-chan domain.SessionView, func()) {
	return s.sessions.GetOrCreate(ctx, sessionID).Subscribe()
}

// Release drops the session if it no longer holds any state.
func (s *QuizService) Release(ctx context.Context, sessionID string) {
	s.sessions.DeleteIfEmpty(ctx, sessionID)
}

func emptyView(sessionID string) domain.SessionView {
	return domain.SessionView{
		SessionID: sessionID,
		Phase:     domain.PhaseEmpty,
		Questions: []domain.QuestionView{},
		Answers:   []string{},
	}
}

package app

import (
	"strings"
	"sync"

	"quizlens/internal/domain"
	"quizlens/internal/insights"
)

// Session is the in-memory state of one user: the current quiz plus the
// history and weak topics that outlive restarts.
type Session struct {
	id string
	mu sync.RWMutex

	phase      domain.Phase
	name       string
	topic      string
	mode       domain.InputMode
	difficulty domain.Difficulty
	questions  []domain.Question
	answers    []string
	result     *domain.Result
	recommend  string

	// generation increments on every generate and restart so late results
	// from an abandoned model call are dropped.
	generation uint64

	history     *insights.History
	weak        *insights.WeakTopics
	subscribers map[chan domain.SessionView]struct{}
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id string) *Session {
	return &Session{
		id:          id,
		phase:       domain.PhaseEmpty,
		history:     insights.NewHistory(),
		weak:        insights.NewWeakTopics(),
		subscribers: make(map[chan domain.SessionView]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// IsEmpty reports whether the session holds nothing worth keeping.
func (s *Session) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase == domain.PhaseEmpty && s.weak.Len() == 0 && s.history.Len() == 0 && len(s.subscribers) == 0
}

func (s *Session) beginGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

type loadedQuiz struct {
	name       string
	topic      string
	mode       domain.InputMode
	difficulty domain.Difficulty
	questions  []domain.Question
}

// finishGeneration applies a model result if no restart or newer generate
// happened since token was issued. A failed generation leaves the session empty.
func (s *Session) finishGeneration(token uint64, quiz loadedQuiz, genErr error) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.generation {
		return s.snapshotLocked(), domain.ErrGenerationSuperseded
	}

	s.answers = nil
	s.result = nil
	if genErr != nil {
		s.questions = nil
		s.topic = ""
		s.recommend = ""
		s.phase = domain.PhaseEmpty
		return s.broadcastLocked(), genErr
	}

	s.name = quiz.name
	s.topic = quiz.topic
	s.mode = quiz.mode
	s.difficulty = quiz.difficulty
	s.questions = quiz.questions
	s.phase = domain.PhaseLoaded
	return s.broadcastLocked(), nil
}

func (s *Session) selectAnswer(index int, option string) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureAnswerableLocked(); err != nil {
		return domain.SessionView{}, err
	}
	if err := s.setAnswerLocked(index, option); err != nil {
		return domain.SessionView{}, err
	}
	s.phase = domain.PhaseAnswering
	return s.broadcastLocked(), nil
}

func (s *Session) ensureAnswerableLocked() error {
	switch s.phase {
	case domain.PhaseEmpty:
		return domain.ErrNoQuiz
	case domain.PhaseSubmitted:
		return domain.ErrAlreadySubmitted
	}
	return nil
}

// setAnswerLocked stores the canonical option text at index, growing the
// answer slice with blanks as needed.
func (s *Session) setAnswerLocked(index int, option string) error {
	if index < 0 || index >= len(s.questions) {
		return domain.ErrQuestionNotFound
	}
	canonical, ok := findOption(s.questions[index].Options, option)
	if !ok {
		return domain.ErrOptionNotFound
	}
	for len(s.answers) <= index {
		s.answers = append(s.answers, "")
	}
	s.answers[index] = canonical
	return nil
}

func findOption(options []string, selected string) (string, bool) {
	want := strings.TrimSpace(selected)
	for _, o := range options {
		if strings.EqualFold(strings.TrimSpace(o), want) {
			return o, true
		}
	}
	return "", false
}

// submission is what the service needs to record an attempt outside the lock.
type submission struct {
	token      uint64
	name       string
	topic      string
	mode       domain.InputMode
	difficulty domain.Difficulty
	score      int
	total      int
	outcomes   []domain.QuestionOutcome
}

// recordTopic is the leaderboard topic: the topic itself in Topic mode, Notes otherwise.
func (sub submission) recordTopic() string {
	if sub.mode == domain.ModeTopic {
		return sub.topic
	}
	return domain.NotesTopic
}

// freeze applies optional form answers, checks completeness, scores and
// moves to Submitted. Answers are immutable afterwards until restart.
func (s *Session) freeze(answers []string) (submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureAnswerableLocked(); err != nil {
		return submission{}, err
	}
	if len(answers) > 0 {
		if len(answers) != len(s.questions) {
			return submission{}, domain.ErrIncompleteAnswers
		}
		canonical := make([]string, len(answers))
		for i, a := range answers {
			if strings.TrimSpace(a) == "" {
				return submission{}, domain.ErrIncompleteAnswers
			}
			option, ok := findOption(s.questions[i].Options, a)
			if !ok {
				return submission{}, domain.ErrOptionNotFound
			}
			canonical[i] = option
		}
		s.answers = canonical
	}
	if len(s.answers) != len(s.questions) {
		return submission{}, domain.ErrIncompleteAnswers
	}
	for _, a := range s.answers {
		if a == "" {
			return submission{}, domain.ErrIncompleteAnswers
		}
	}

	score, outcomes := Score(s.questions, s.answers)
	s.phase = domain.PhaseSubmitted
	return submission{
		token:      s.generation,
		name:       s.name,
		topic:      s.topic,
		mode:       s.mode,
		difficulty: s.difficulty,
		score:      score,
		total:      len(s.questions),
		outcomes:   outcomes,
	}, nil
}

// recordAttempt updates history and weak topics and stores the result.
func (s *Session) recordAttempt(sub submission, rec domain.AttemptRecord, persistErr error) domain.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.NewTopicKey(rec.Topic, sub.difficulty)
	s.history.Add(key, sub.score)
	s.weak.Update(key, sub.score, sub.total)

	result := domain.Result{
		Score:    sub.score,
		Total:    sub.total,
		Outcomes: sub.outcomes,
		Record:   rec,
	}
	if persistErr != nil {
		result.PersistError = persistErr.Error()
	}
	if sub.token == s.generation {
		s.result = &result
		s.broadcastLocked()
	}
	return result
}

func (s *Session) setRecommendation(token uint64, topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.generation {
		return
	}
	s.recommend = topic
	s.broadcastLocked()
}

// restart clears the current quiz. History and weak topics are kept.
func (s *Session) restart() domain.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.phase = domain.PhaseEmpty
	s.topic = ""
	s.questions = nil
	s.answers = nil
	s.result = nil
	s.recommend = ""
	return s.broadcastLocked()
}

func (s *Session) view() domain.SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) predict(topic string, difficulty domain.Difficulty) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Predict(topic, difficulty)
}

func (s *Session) weakTopics(n int) []domain.WeakTopic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weak.Top(n)
}

// Subscribe returns a channel fed with every view change, starting with the
// current one. The caller must invoke cancel to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.SessionView, func()) {
	ch := make(chan domain.SessionView, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	// the buffer is empty, so this cannot block while holding the lock
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() domain.SessionView {
	view := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- view:
		default:
			// drop the stale view so a slow reader never blocks the session
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
	return view
}

func (s *Session) snapshotLocked() domain.SessionView {
	submitted := s.phase == domain.PhaseSubmitted

	questions := make([]domain.QuestionView, len(s.questions))
	for i, q := range s.questions {
		questions[i] = domain.QuestionView{
			Index:    i,
			Question: q.Question,
			Options:  append([]string(nil), q.Options...),
		}
	}

	view := domain.SessionView{
		SessionID:        s.id,
		Phase:            s.phase,
		Name:             s.name,
		Topic:            s.topic,
		Mode:             s.mode,
		Difficulty:       s.difficulty,
		Questions:        questions,
		Answers:          append([]string{}, s.answers...),
		Submitted:        submitted,
		RecommendedTopic: s.recommend,
	}
	if s.result != nil {
		r := *s.result
		view.Result = &r
	}
	return view
}

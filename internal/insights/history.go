package insights

import (
	"math"

	"quizlens/internal/domain"
)

// DefaultPrediction is returned for pairs with no recorded attempts.
const DefaultPrediction = 3.0

// History keeps every score per (topic, difficulty). Not safe for
// concurrent use; the owning session serializes access.
type History struct {
	scores map[domain.TopicKey][]int
}

func NewHistory() *History {
	return &History{scores: make(map[domain.TopicKey][]int)}
}

// Add appends score to the key's history.
func (h *History) Add(key domain.TopicKey, score int) {
	h.scores[key] = append(h.scores[key], score)
}

// Len returns the number of pairs with at least one score.
func (h *History) Len() int { return len(h.scores) }

// Scores returns a copy of the recorded scores for key.
func (h *History) Scores(key domain.TopicKey) []int {
	return append([]int(nil), h.scores[key]...)
}

// Predict returns the mean score for the pair rounded to one decimal
// with ties to even,
// or DefaultPrediction without history.
func (h *History) Predict(topic string, difficulty domain.Difficulty) float64 {
	scores := h.scores[domain.NewTopicKey(topic, difficulty)]
	if len(scores) == 0 {
		return DefaultPrediction
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	mean := float64(sum) / float64(len(scores))
	return math.RoundToEven(mean*10) / 10
}

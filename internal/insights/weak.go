package insights

import (
	"sort"
	"strings"
	"unicode"

	"quizlens/internal/domain"
)

// Threshold is floor(0.6 * total), computed without floating point.
func Threshold(total int) int {
	return total * 6 / 10
}

// WeakTopics tracks the lowest score per pair while it stays under the
// threshold. Not safe for concurrent use.
type WeakTopics struct {
	lowest map[domain.TopicKey]int
}

func NewWeakTopics() *WeakTopics {
	return &WeakTopics{lowest: make(map[domain.TopicKey]int)}
}

// Update records an attempt: a score under the threshold keeps the lowest
// such score for key, anything else clears key.
func (w *WeakTopics) Update(key domain.TopicKey, score, total int) {
	if score >= Threshold(total) {
		delete(w.lowest, key)
		return
	}
	if cur, ok := w.lowest[key]; !ok || score < cur {
		w.lowest[key] = score
	}
}

// Lowest returns the tracked score for key.
func (w *WeakTopics) Lowest(key domain.TopicKey) (int, bool) {
	s, ok := w.lowest[key]
	return s, ok
}

func (w *WeakTopics) Len() int { return len(w.lowest) }

// Top returns up to n weak pairs, lowest score first, title-cased.
// Ties are ordered by topic then difficulty.
func (w *WeakTopics) Top(n int) []domain.WeakTopic {
	keys := make([]domain.TopicKey, 0, len(w.lowest))
	for k := range w.lowest {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if w.lowest[a] != w.lowest[b] {
			return w.lowest[a] < w.lowest[b]
		}
		if a.Topic != b.Topic {
			return a.Topic < b.Topic
		}
		return a.Difficulty < b.Difficulty
	})
	if n >= 0 && len(keys) > n {
		keys = keys[:n]
	}

	out := make([]domain.WeakTopic, len(keys))
	for i, k := range keys {
		out[i] = domain.WeakTopic{
			Topic:       TitleCase(k.Topic),
			Difficulty:  TitleCase(k.Difficulty),
			LowestScore: w.lowest[k],
		}
	}
	return out
}

// TitleCase upper-cases every letter that follows a non-letter and
// lower-cases the rest, so "intro to c++" becomes "Intro To C++".
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

package insights

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/samber/lo"

	"quizlens/internal/domain"
)

// Recommender picks the next topic from the catalog at random.
type Recommender struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRecommender uses src for its choices. A nil src seeds from the runtime.
func NewRecommender(src rand.Source) *Recommender {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Recommender{rnd: rand.New(src)}
}

// Recommend returns a catalog topic other than completed (compared
// case-insensitively). When every entry matches, the whole catalog is
// eligible. It reports false only for an empty catalog.
func (r *Recommender) Recommend(catalog []domain.CatalogTopic, completed string) (string, bool) {
	if len(catalog) == 0 {
		return "", false
	}

	candidates := catalog
	if completed != "" {
		candidates = lo.Filter(catalog, func(t domain.CatalogTopic, _ int) bool {
			return !strings.EqualFold(t.Name, completed)
		})
		if len(candidates) == 0 {
			candidates = catalog
		}
	}

	r.mu.Lock()
	i := r.rnd.IntN(len(candidates))
	r.mu.Unlock()
	return candidates[i].Name, true
}

package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizlens/internal/domain"
)

// TopicLoader fetches the topic catalog from a backing store (CSV file, Postgres).
type TopicLoader interface {
	LoadTopics(ctx context.Context) ([]domain.CatalogTopic, error)
}

const catalogFlightKey = "catalog"

// CatalogRepository caches the topic catalog with TTL to avoid repeated loads.
type CatalogRepository struct {
	loader TopicLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu     sync.RWMutex
	cached []domain.CatalogTopic
	expiry time.Time
	loaded bool
}

func NewCatalogRepository(loader TopicLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) Topics(ctx context.Context) ([]domain.CatalogTopic, error) {
	if topics, ok := r.fresh(r.clock()); ok {
		return topics, nil
	}

	result, err, _ := r.sf.Do(catalogFlightKey, func() (interface{}, error) {
		now := r.clock()
		if topics, ok := r.fresh(now); ok {
			return topics, nil
		}

		topics, err := r.loader.LoadTopics(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cached = topics
		r.expiry = now.Add(r.ttlWithJitter())
		r.loaded = true
		r.mu.Unlock()
		return topics, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.CatalogTopic), nil
}

func (r *CatalogRepository) fresh(now time.Time) ([]domain.CatalogTopic, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.loaded && r.expiry.After(now) {
		return r.cached, true
	}
	return nil, false
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticTopicLoader is a simple loader backed by a slice (useful for tests/demos).
type StaticTopicLoader struct {
	topics []domain.CatalogTopic
}

func NewStaticTopicLoader(names ...string) *StaticTopicLoader {
	topics := make([]domain.CatalogTopic, len(names))
	for i, n := range names {
		topics[i] = domain.CatalogTopic{Name: n}
	}
	return &StaticTopicLoader{topics: topics}
}

func (l *StaticTopicLoader) LoadTopics(_ context.Context) ([]domain.CatalogTopic, error) {
	return append([]domain.CatalogTopic(nil), l.topics...), nil
}

package redis

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizlens/internal/domain"
	"quizlens/internal/infra/memory"
)

// CatalogKey is the Redis list holding cached topic names in catalog order.
const CatalogKey = "quizlens:catalog:topics"

// CatalogRepository caches the topic catalog in a Redis list and falls back
// to a loader on cache miss. Instances share the cache through Redis.
type CatalogRepository struct {
	client *redis.Client
	loader memory.TopicLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader memory.TopicLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) Topics(ctx context.Context) ([]domain.CatalogTopic, error) {
	if topics, ok := r.cached(ctx); ok {
		return topics, nil
	}

	result, err, _ := r.sf.Do(CatalogKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if topics, ok := r.cached(ctx); ok {
			return topics, nil
		}

		topics, err := r.loader.LoadTopics(ctx)
		if err != nil {
			return nil, err
		}
		r.store(ctx, topics)
		return topics, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.CatalogTopic), nil
}

func (r *CatalogRepository) cached(ctx context.Context) ([]domain.CatalogTopic, bool) {
	names, err := r.client.LRange(ctx, CatalogKey, 0, -1).Result()
	if err != nil || len(names) == 0 {
		return nil, false
	}
	topics := make([]domain.CatalogTopic, len(names))
	for i, n := range names {
		topics[i] = domain.CatalogTopic{Name: n}
	}
	return topics, true
}

func (r *CatalogRepository) store(ctx context.Context, topics []domain.CatalogTopic) {
	if len(topics) == 0 {
		return
	}
	names := make([]interface{}, len(topics))
	for i, t := range topics {
		names[i] = t.Name
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, CatalogKey)
	pipe.RPush(ctx, CatalogKey, names...)
	if ttl := r.ttlWithJitter(); ttl > 0 {
		pipe.Expire(ctx, CatalogKey, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("redis catalog cache write: %v", err)
	}
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

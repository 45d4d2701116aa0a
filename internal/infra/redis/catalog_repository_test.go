package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quizlens/internal/domain"
	"quizlens/internal/infra/memory"
)

func TestCatalogRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{TopicLoader: memory.NewStaticTopicLoader("Decorators", "Generators", "Closures")}
	repo := NewCatalogRepository(client, loader, time.Minute)

	topics, err := repo.Topics(context.Background())
	if err != nil {
		t.Fatalf("topics: %v", err)
	}
	if len(topics) != 3 || loader.calls != 1 {
		t.Fatalf("expected 3 topics from one load, got %d (calls=%d)", len(topics), loader.calls)
	}
	if !mr.Exists(CatalogKey) {
		t.Fatalf("expected catalog key to be set")
	}
	if ttl := mr.TTL(CatalogKey); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("expected ttl with jitter, got %s", ttl)
	}

	// Second call should hit cache, loader not incremented.
	cached, _ := repo.Topics(context.Background())
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached[0].Name != "Decorators" || cached[2].Name != "Closures" {
		t.Fatalf("cache lost catalog order: %+v", cached)
	}

	// Another instance shares the cache.
	other := NewCatalogRepository(client, loader, time.Minute)
	if _, err := other.Topics(context.Background()); err != nil || loader.calls != 1 {
		t.Fatalf("expected shared cache hit, err=%v calls=%d", err, loader.calls)
	}
}

func TestCatalogRepositoryReloadsAfterExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{TopicLoader: memory.NewStaticTopicLoader("Closures")}
	repo := NewCatalogRepository(newClient(mr), loader, time.Minute)

	_, _ = repo.Topics(context.Background())
	mr.FastForward(2 * time.Minute)
	_, _ = repo.Topics(context.Background())

	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.TopicLoader
	calls int
}

func (l *countingLoader) LoadTopics(ctx context.Context) ([]domain.CatalogTopic, error) {
	l.calls++
	return l.TopicLoader.LoadTopics(ctx)
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"quizlens/internal/domain"
)

func TestCatalogRepositoryCaches(t *testing.T) {
	loader := &countingLoader{TopicLoader: NewStaticTopicLoader("Decorators", "Generators")}
	repo := NewCatalogRepository(loader, time.Minute)

	topics, err := repo.Topics(context.Background())
	if err != nil {
		t.Fatalf("topics: %v", err)
	}
	if len(topics) != 2 || topics[0].Name != "Decorators" {
		t.Fatalf("unexpected topics: %+v", topics)
	}

	if _, err := repo.Topics(context.Background()); err != nil {
		t.Fatalf("topics 2: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls.Load())
	}
}

func TestCatalogRepositoryReloadsAfterExpiry(t *testing.T) {
	loader := &countingLoader{TopicLoader: NewStaticTopicLoader("Closures")}
	repo := NewCatalogRepository(loader, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.Topics(context.Background())
	now = now.Add(2 * time.Minute)
	_, _ = repo.Topics(context.Background())

	if loader.calls.Load() != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls.Load())
	}
}

func TestCatalogRepositoryDeduplicatesConcurrentLoads(t *testing.T) {
	release := make(chan struct{})
	loader := &countingLoader{TopicLoader: NewStaticTopicLoader("Closures"), gate: release}
	repo := NewCatalogRepository(loader, time.Minute)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Topics(context.Background())
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if loader.calls.Load() != 1 {
		t.Fatalf("expected one shared load, got %d", loader.calls.Load())
	}
}

func TestCatalogRepositoryDoesNotCacheErrors(t *testing.T) {
	loader := &failingLoader{}
	repo := NewCatalogRepository(loader, time.Minute)

	for range 2 {
		if _, err := repo.Topics(context.Background()); !errors.Is(err, domain.ErrCatalogUnavailable) {
			t.Fatalf("expected catalog error, got %v", err)
		}
	}
	if loader.calls != 2 {
		t.Fatalf("expected failed loads to be retried, got %d", loader.calls)
	}
}

type countingLoader struct {
	TopicLoader
	calls atomic.Int32
	gate  chan struct{}
}

func (l *countingLoader) LoadTopics(ctx context.Context) ([]domain.CatalogTopic, error) {
	l.calls.Add(1)
	if l.gate != nil {
		<-l.gate
	}
	return l.TopicLoader.LoadTopics(ctx)
}

type failingLoader struct {
	calls int
}

func (l *failingLoader) LoadTopics(context.Context) ([]domain.CatalogTopic, error) {
	l.calls++
	return nil, domain.ErrCatalogUnavailable
}

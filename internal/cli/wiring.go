package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"quizlens/internal/app"
	"quizlens/internal/config"
	"quizlens/internal/infra/csvstore"
	"quizlens/internal/infra/memory"
	pgcatalog "quizlens/internal/infra/postgres"
	rediscache "quizlens/internal/infra/redis"
	"quizlens/internal/infra/sqlite"
	"quizlens/internal/llm"
	"quizlens/internal/quizgen"
	"quizlens/internal/source"
)

// runtime holds the wired service and the resources to release on exit.
type runtime struct {
	service *app.QuizService
	closers []func()
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func buildRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	rt := &runtime{}

	events, err := sqlite.Open(cfg.EventLog.Path)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	rt.closers = append(rt.closers, func() { events.Close() })

	llmCfg := cfg.LLMConfig(os.Getenv)
	llmCfg.Verbose = llmCfg.Verbose || verbose
	provider, err := llm.NewProvider(ctx, llmCfg, events)
	if err != nil {
		rt.Close()
		return nil, err
	}
	log.Printf("using %s model %s", llmCfg.Provider, provider.ModelID())

	var loader memory.TopicLoader = csvstore.NewCatalogLoader(cfg.Catalog.Path)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, pool.Close)
		loader = pgcatalog.NewCatalogLoader(pool)
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var (
		catalog  app.TopicCatalog
		sessions app.SessionRepository
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, func() { client.Close() })
		catalog = rediscache.NewCatalogRepository(client, loader, catalogTTL)
		sessions = rediscache.NewSessionStore(client, config.TTLDuration(cfg.Redis.TTL, 30*time.Minute))
	} else {
		catalog = memory.NewCatalogRepository(loader, catalogTTL)
		sessions = memory.NewSessionStore()
	}

	rt.service = app.NewQuizService(
		sessions,
		source.NewResolver(nil),
		quizgen.New(provider, cfg.QuizgenConfig()),
		csvstore.NewLeaderboard(cfg.Leaderboard.Path),
		catalog,
	)
	return rt, nil
}

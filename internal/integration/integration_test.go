package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quizlens/internal/app"
	"quizlens/internal/domain"
	"quizlens/internal/infra/csvstore"
	pgcatalog "quizlens/internal/infra/postgres"
	pgmigrations "quizlens/internal/infra/postgres/migrations"
	infraredis "quizlens/internal/infra/redis"
	"quizlens/internal/llm"
	"quizlens/internal/quizgen"
	"quizlens/internal/source"
)

const threeQuestions = `[
  {"question": "Q1", "options": ["A", "B", "C", "D"], "answer": "A"},
  {"question": "Q2", "options": ["A", "B", "C", "D"], "answer": "B"},
  {"question": "Q3", "options": ["A", "B", "C", "D"], "answer": "C"}
]`

func TestQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateTopics(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "topics.csv")
	if err := os.WriteFile(catalogPath, []byte("Topic_ID,Topic_Name\n1,Generators\n2,Decorators\n"), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	csvTopics, err := csvstore.NewCatalogLoader(catalogPath).LoadTopics(ctx)
	if err != nil {
		t.Fatalf("load csv catalog: %v", err)
	}

	loader := pgcatalog.NewCatalogLoader(pool)
	added, err := loader.ImportTopics(ctx, csvTopics)
	if err != nil || added != 2 {
		t.Fatalf("import topics: added=%d err=%v", added, err)
	}
	if again, err := loader.ImportTopics(ctx, csvTopics); err != nil || again != 0 {
		t.Fatalf("expected re-import to add nothing: added=%d err=%v", again, err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	provider := llm.NewMockProvider(llm.MockResponse{Text: threeQuestions})
	leaderboard := csvstore.NewLeaderboard(filepath.Join(dir, "leaderboard.csv"))
	service := app.NewQuizService(
		infraredis.NewSessionStore(redisClient, 5*time.Minute),
		source.NewResolver(nil),
		quizgen.New(provider, quizgen.DefaultConfig()),
		leaderboard,
		infraredis.NewCatalogRepository(redisClient, loader, 5*time.Minute),
	)

	view, err := service.Generate(ctx, "sid-1", app.GenerateRequest{
		Name:       "Ada",
		Mode:       domain.ModeTopic,
		Topic:      "Generators",
		Count:      3,
		Difficulty: domain.DifficultyMedium,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(view.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(view.Questions))
	}
	if n, err := redisClient.Exists(ctx, "quizlens:session:sid-1").Result(); err != nil || n != 1 {
		t.Fatalf("expected session liveness key, n=%d err=%v", n, err)
	}

	result, err := service.Submit(ctx, "sid-1", "D", "D", "D")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 0 || result.PersistError != "" {
		t.Fatalf("unexpected result: %+v", result)
	}

	state := service.State(ctx, "sid-1")
	if state.RecommendedTopic != "Decorators" {
		t.Fatalf("expected recommendation from postgres catalog, got %q", state.RecommendedTopic)
	}
	cached, err := redisClient.LRange(ctx, infraredis.CatalogKey, 0, -1).Result()
	if err != nil || len(cached) != 2 {
		t.Fatalf("expected catalog cached in redis, got %v err=%v", cached, err)
	}

	weak := service.WeakTopics(ctx, "sid-1")
	if len(weak) != 1 || weak[0].Topic != "Generators" || weak[0].Difficulty != "Medium" {
		t.Fatalf("unexpected weak topics: %+v", weak)
	}

	records, err := service.Leaderboard(ctx)
	if err != nil || len(records) != 1 || records[0].Score != "0/3" {
		t.Fatalf("unexpected leaderboard: %+v err=%v", records, err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quizlens", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizlens"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quizlens:quizpass@%s:%s/quizlens?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateTopics(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}

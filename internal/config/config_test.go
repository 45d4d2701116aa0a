package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Leaderboard.Path != "data/leaderboard.csv" || cfg.Catalog.Path != "data/python_topics.csv" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
redis:
  addr: localhost:6379
  ttl: 30m
leaderboard:
  path: /tmp/lb.csv
llm:
  provider: OpenAI
  model: gpt-4o
  timeout: 20s
  max_attempts: 5
  require_answer_in_options: false
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Addr != "localhost:6379" || cfg.Leaderboard.Path != "/tmp/lb.csv" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Catalog.Path != "data/python_topics.csv" {
		t.Fatalf("expected catalog default to be filled, got %q", cfg.Catalog.Path)
	}

	llmCfg := cfg.LLMConfig(func(k string) string {
		if k == "OPENAI_API_KEY" {
			return "sk-test"
		}
		return ""
	})
	if llmCfg.Provider != "openai" || llmCfg.OpenAI.Model != "gpt-4o" || llmCfg.OpenAI.APIKey != "sk-test" {
		t.Fatalf("unexpected llm config: %+v", llmCfg)
	}
	if llmCfg.Timeout != 20*time.Second || llmCfg.Retry.MaxAttempts != 5 {
		t.Fatalf("unexpected llm limits: %+v", llmCfg)
	}
	if cfg.QuizgenConfig().RequireAnswerInOptions {
		t.Fatal("expected membership check to be disabled")
	}
	if !Default().QuizgenConfig().RequireAnswerInOptions {
		t.Fatal("expected membership check on by default")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %s", got)
	}
	if got := TTLDuration("90s", time.Minute); got != 90*time.Second {
		t.Fatalf("expected 90s, got %s", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for junk, got %s", got)
	}
}

package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"quizlens/internal/llm"
	"quizlens/internal/quizgen"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
		// SessionSecret signs the session cookie. Empty generates one per process.
		SessionSecret string `yaml:"session_secret"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Catalog struct {
		Path string `yaml:"path"`
		TTL  string `yaml:"ttl"`
	} `yaml:"catalog"`
	Leaderboard struct {
		Path string `yaml:"path"`
	} `yaml:"leaderboard"`
	EventLog struct {
		Path string `yaml:"path"`
	} `yaml:"event_log"`
	LLM struct {
		Provider    string  `yaml:"provider"`
		Model       string  `yaml:"model"`
		BaseURL     string  `yaml:"base_url"`
		Timeout     string  `yaml:"timeout"`
		MaxAttempts int     `yaml:"max_attempts"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
		// RequireAnswerInOptions defaults to true when unset.
		RequireAnswerInOptions *bool `yaml:"require_answer_in_options"`
	} `yaml:"llm"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Catalog.Path == "" {
		c.Catalog.Path = "data/python_topics.csv"
	}
	if c.Leaderboard.Path == "" {
		c.Leaderboard.Path = "data/leaderboard.csv"
	}
	if c.EventLog.Path == "" {
		c.EventLog.Path = "data/quizlens.db"
	}
}

// Load reads YAML config from path. A missing file yields Default().
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// LLMConfig merges the llm section over llm.DefaultConfig and then applies
// environment overrides from getenv.
func (c Config) LLMConfig(getenv func(string) string) llm.Config {
	out := llm.DefaultConfig()
	if p := strings.ToLower(c.LLM.Provider); p != "" {
		out.Provider = p
	}
	if c.LLM.Model != "" {
		out.Gemini.Model = c.LLM.Model
		out.OpenAI.Model = c.LLM.Model
		out.Anthropic.Model = c.LLM.Model
	}
	out.OpenAI.BaseURL = c.LLM.BaseURL
	out.Timeout = TTLDuration(c.LLM.Timeout, out.Timeout)
	if c.LLM.MaxAttempts > 0 {
		out.Retry.MaxAttempts = c.LLM.MaxAttempts
	}
	out.ApplyEnv(getenv)
	return out
}

// QuizgenConfig returns generator settings from the llm section.
func (c Config) QuizgenConfig() quizgen.Config {
	out := quizgen.DefaultConfig()
	if c.LLM.MaxTokens > 0 {
		out.MaxTokens = c.LLM.MaxTokens
	}
	if c.LLM.Temperature > 0 {
		out.Temperature = c.LLM.Temperature
	}
	if c.LLM.RequireAnswerInOptions != nil {
		out.RequireAnswerInOptions = *c.LLM.RequireAnswerInOptions
	}
	return out
}

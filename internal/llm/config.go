package llm

import (
	"fmt"
	"strings"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use: gemini, openai, anthropic or mock.
	Provider string

	Gemini    GeminiConfig
	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
	Retry     RetryConfig

	// Timeout is the maximum duration for a single request including retries.
	Timeout time.Duration

	// Verbose traces prompts and replies to the log.
	Verbose bool
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config that talks to Gemini.
func DefaultConfig() Config {
	return Config{
		Provider:  ProviderGemini,
		Gemini:    GeminiConfig{Model: "gemini-flash"},
		OpenAI:    OpenAIConfig{Model: "gpt-4o-mini"},
		Anthropic: AnthropicConfig{Model: "claude-haiku"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ApplyEnv overlays API keys, provider and model from the environment.
// getenv is usually os.Getenv. When no provider is forced, the first
// provider whose key is set wins, Gemini first.
func (c *Config) ApplyEnv(getenv func(string) string) {
	gemini := getenv("GEMINI_API_KEY")
	openaiKey := getenv("OPENAI_API_KEY")
	anthropicKey := getenv("ANTHROPIC_API_KEY")

	if gemini != "" {
		c.Gemini.APIKey = gemini
	}
	if openaiKey != "" {
		c.OpenAI.APIKey = openaiKey
	}
	if anthropicKey != "" {
		c.Anthropic.APIKey = anthropicKey
	}

	if p := getenv("QUIZLENS_LLM_PROVIDER"); p != "" {
		c.Provider = strings.ToLower(p)
	} else if c.apiKey() == "" {
		switch {
		case gemini != "":
			c.Provider = ProviderGemini
		case openaiKey != "":
			c.Provider = ProviderOpenAI
		case anthropicKey != "":
			c.Provider = ProviderAnthropic
		}
	}

	if m := getenv("QUIZLENS_LLM_MODEL"); m != "" {
		switch c.Provider {
		case ProviderGemini:
			c.Gemini.Model = m
		case ProviderOpenAI:
			c.OpenAI.Model = m
		case ProviderAnthropic:
			c.Anthropic.Model = m
		}
	}
}

func (c Config) apiKey() string {
	switch c.Provider {
	case ProviderGemini:
		return c.Gemini.APIKey
	case ProviderOpenAI:
		return c.OpenAI.APIKey
	case ProviderAnthropic:
		return c.Anthropic.APIKey
	}
	return ""
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}

package quizgen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// MaxTokens is the token budget for the model response. Zero leaves the provider default.
	MaxTokens int

	// Temperature controls output randomness. Zero leaves the provider default.
	Temperature float64

	// RequireAnswerInOptions rejects questions whose answer is not one of
	// their options. Disable to accept the model output as-is.
	RequireAnswerInOptions bool
}

// DefaultConfig returns the recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:              4096,
		Temperature:            0.7,
		RequireAnswerInOptions: true,
	}
}

package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/roadmap-backend/internal/platform/envutil"
)

type Config struct {
	// Provider is one of "gemini", "openai", "anthropic", "mock".
	Provider string

	Anthropic AnthropicConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
	Retry     RetryConfig

	// Timeout bounds a single generation, retries included.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

func DefaultConfig() Config {
	return Config{
		Provider:  "gemini",
		Anthropic: AnthropicConfig{Model: "claude-haiku"},
		OpenAI:    OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:    GeminiConfig{Model: "gemini-flash"},
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 45 * time.Second,
	}
}

// ConfigFromEnv overlays LLM_* and provider key variables on the defaults.
// GOOGLE_API_KEY is accepted for Gemini as well.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.Provider = strings.ToLower(envutil.String("LLM_PROVIDER", cfg.Provider))

	cfg.Gemini.APIKey = envutil.String("GEMINI_API_KEY", envutil.String("GOOGLE_API_KEY", ""))
	cfg.Gemini.Model = envutil.String("GEMINI_MODEL", cfg.Gemini.Model)

	cfg.OpenAI.APIKey = envutil.String("OPENAI_API_KEY", "")
	cfg.OpenAI.Model = envutil.String("OPENAI_MODEL", cfg.OpenAI.Model)
	cfg.OpenAI.BaseURL = envutil.String("OPENAI_BASE_URL", "")

	cfg.Anthropic.APIKey = envutil.String("ANTHROPIC_API_KEY", "")
	cfg.Anthropic.Model = envutil.String("ANTHROPIC_MODEL", cfg.Anthropic.Model)

	cfg.Retry.MaxAttempts = envutil.Int("LLM_MAX_ATTEMPTS", cfg.Retry.MaxAttempts)
	cfg.Timeout = envutil.Duration("LLM_TIMEOUT", cfg.Timeout)
	return cfg
}

// Validate reports a missing key for the selected provider. The error wraps
// ErrNotConfigured.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("%w: ANTHROPIC_API_KEY is required for the anthropic provider", ErrNotConfigured)
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required for the openai provider", ErrNotConfigured)
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY is required for the gemini provider", ErrNotConfigured)
		}
	case "mock":
	default:
		return fmt.Errorf("%w: unknown LLM provider %q", ErrNotConfigured, c.Provider)
	}
	return nil
}

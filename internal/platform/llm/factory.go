package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

// NewProvider builds the configured provider wrapped as
// caller -> timeout -> retry -> logging -> base.
func NewProvider(ctx context.Context, cfg Config, log *logger.Logger, observer Observer) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error
	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logged := WithLogging(base, log, observer)
	retried := WithRetry(logged, cfg.Retry)
	return WithTimeout(retried, cfg.Timeout), nil
}

// Unconfigured stands in when no credentials are present so the service can
// still start; every call fails with ErrNotConfigured.
type Unconfigured struct {
	Reason error
}

func (u Unconfigured) Generate(context.Context, Request) (*Response, error) {
	if u.Reason != nil {
		return nil, u.Reason
	}
	return nil, ErrNotConfigured
}

func (u Unconfigured) ModelID() string { return "unconfigured" }

func isInvalid(err error) bool {
	var inv *ErrInvalidResponse
	var maxTok *ErrMaxTokensExceeded
	return errors.As(err, &inv) || errors.As(err, &maxTok)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

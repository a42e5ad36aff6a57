package llm

import (
	"context"
	"time"

	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

// Observer receives one record per model call. observability.Metrics
// implements it.
type Observer interface {
	ObserveLLM(purpose, model, outcome string, latency time.Duration, usage Usage)
}

// LoggingProvider logs and measures every call made through it.
type LoggingProvider struct {
	inner    Provider
	log      *logger.Logger
	observer Observer
}

func WithLogging(p Provider, log *logger.Logger, observer Observer) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{inner: p, log: log.With("component", "llm"), observer: observer}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)
	latency := time.Since(start)

	model := l.inner.ModelID()
	var usage Usage
	if resp != nil {
		usage = resp.Usage
		if resp.Model != "" {
			model = resp.Model
		}
	}
	outcome := Outcome(err)

	if l.observer != nil {
		l.observer.ObserveLLM(purpose, model, outcome, latency, usage)
	}

	fields := []interface{}{
		"purpose", purpose,
		"model", model,
		"outcome", outcome,
		"latency_ms", latency.Milliseconds(),
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
	}
	if err != nil {
		l.log.Warn("llm call failed", append(fields, "error", err)...)
	} else {
		l.log.Debug("llm call", fields...)
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

// Outcome buckets err into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsRateLimited(err):
		return "rate_limited"
	case isInvalid(err):
		return "invalid"
	case isContextErr(err):
		return "timeout"
	default:
		return "error"
	}
}

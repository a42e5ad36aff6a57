package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/yungbote/roadmap-backend/internal/platform/httpx"
)

// ErrRateLimit means the provider throttled the request or the quota ran out.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

func (e *ErrRateLimit) HTTPStatusCode() int { return http.StatusTooManyRequests }

// ErrInvalidResponse means the model returned content that does not match
// the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable wraps network failures and 5xx answers.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrRequestRejected is a 4xx answer other than throttling, such as a bad
// API key or an unknown model. Resending the same request cannot succeed.
type ErrRequestRejected struct {
	Status int
	Err    error
}

func (e *ErrRequestRejected) Error() string {
	return fmt.Sprintf("LLM request rejected (status %d): %v", e.Status, e.Err)
}

func (e *ErrRequestRejected) Unwrap() error { return e.Err }

func (e *ErrRequestRejected) HTTPStatusCode() int { return e.Status }

// ErrMaxTokensExceeded means the answer was cut off at the token limit.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// ErrNotConfigured is returned when no provider credentials are present.
var ErrNotConfigured = errors.New("llm provider not configured")

// IsRateLimited reports whether err is a throttling/quota rejection, either
// typed or recognizable by status code or message.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return true
	}
	if httpx.StatusCode(err) == http.StatusTooManyRequests {
		return true
	}
	return httpx.LooksThrottled(err.Error())
}

// classifyStatus maps an upstream HTTP status onto the typed errors.
func classifyStatus(status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{Err: err}
	case status == http.StatusRequestTimeout || status >= 500:
		return &ErrProviderUnavailable{Err: err}
	}
	if err != nil && httpx.LooksThrottled(err.Error()) {
		return &ErrRateLimit{Err: err}
	}
	if status >= 400 {
		return &ErrRequestRejected{Status: status, Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

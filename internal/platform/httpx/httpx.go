package httpx

import (
	"errors"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"
)

type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

func IsRetryableHTTPStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatusCode()
	}
	return 0
}

// quotaMarkers are substrings upstream providers put in throttling errors
// when no structured status code survives wrapping.
var quotaMarkers = []string{
	"429",
	"resource_exhausted",
	"resource exhausted",
	"rate limit",
	"rate_limit",
	"quota",
	"too many requests",
}

// LooksThrottled reports whether a free-form error message reads like a
// rate-limit or quota rejection.
func LooksThrottled(msg string) bool {
	m := strings.ToLower(msg)
	for _, marker := range quotaMarkers {
		if strings.Contains(m, marker) {
			return true
		}
	}
	return false
}

// Jitter spreads base by +/-20%.
func Jitter(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	delta := base.Seconds() * 0.2
	low := base.Seconds() - delta
	high := base.Seconds() + delta
	if low < 0 {
		low = 0
	}
	v := low + rand.Float64()*(high-low)
	return time.Duration(v * float64(time.Second))
}

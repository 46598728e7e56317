package ocr

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultRetryAfter is the backoff used when a provider throttles without saying for how long.
const DefaultRetryAfter = time.Minute

// RateLimitError reports that an OCR provider refused a screenshot because of
// quota or request-rate limits. The fallback chain parks the provider for RetryAfter.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	msg := fmt.Sprintf("ocr provider %s throttled, retry in %s", e.Provider, e.RetryAfter)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// NewRateLimitError builds a RateLimitError for provider. A non-positive wait means DefaultRetryAfter.
func NewRateLimitError(provider string, cause error, wait time.Duration) *RateLimitError {
	if wait <= 0 {
		wait = DefaultRetryAfter
	}
	return &RateLimitError{Provider: provider, RetryAfter: wait, Err: cause}
}

// RetryAfterOf reports the backoff carried by err when it is, or wraps, a RateLimitError.
func RetryAfterOf(err error) (time.Duration, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.RetryAfter, true
	}
	return 0, false
}

// ParseRetryAfter reads a Retry-After header given as delay-seconds or an HTTP date.
// Blank, malformed and past values yield 0.
func ParseRetryAfter(val string, now time.Time) time.Duration {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	at, err := http.ParseTime(val)
	if err != nil || !at.After(now) {
		return 0
	}
	return at.Sub(now).Truncate(time.Second)
}

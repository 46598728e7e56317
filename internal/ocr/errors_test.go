package ocr_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"folioscan/internal/ocr"
)

func TestNewRateLimitError_DefaultsRetryAfter(t *testing.T) {
	err := ocr.NewRateLimitError("gemini", errors.New("429"), 0)
	assert.Equal(t, ocr.DefaultRetryAfter, err.RetryAfter)
	assert.Equal(t, "gemini", err.Provider)
}

func TestRateLimitError_Message(t *testing.T) {
	base := errors.New("quota exhausted")
	err := ocr.NewRateLimitError("openai", base, 5*time.Second)

	assert.ErrorIs(t, err, base)
	assert.Equal(t, "ocr provider openai throttled, retry in 5s: quota exhausted", err.Error())

	bare := ocr.NewRateLimitError("claude", nil, time.Second)
	assert.Equal(t, "ocr provider claude throttled, retry in 1s", bare.Error())
}

func TestRetryAfterOf(t *testing.T) {
	wrapped := fmt.Errorf("extracting: %w", ocr.NewRateLimitError("gemini", nil, 7*time.Second))

	wait, ok := ocr.RetryAfterOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, 7*time.Second, wait)

	_, ok = ocr.RetryAfterOf(errors.New("timeout"))
	assert.False(t, ok)
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2025, 10, 21, 7, 28, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"30", 30 * time.Second},
		{" 12 ", 12 * time.Second},
		{"-5", 0},
		{"abc", 0},
		{"Tue, 21 Oct 2025 07:28:45 GMT", 45 * time.Second},
		{"Tue, 21 Oct 2025 07:27:00 GMT", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ocr.ParseRetryAfter(tt.in, now))
		})
	}
}

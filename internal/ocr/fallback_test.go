package ocr_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"folioscan/internal/domain"
	"folioscan/internal/ocr"
	"folioscan/internal/port"
	"folioscan/mocks"
)

func holdingsOutput(model string) *port.ExtractOutput {
	return &port.ExtractOutput{
		Holdings:  []domain.Holding{{Ticker: "TSLA", Weight: 60}, {Ticker: "AAPL", Weight: 40}},
		ModelUsed: model,
	}
}

var screenshot = port.ExtractInput{ImageBytes: []byte("png"), ContentType: "image/png", Broker: domain.BrokerToss}

func TestFallbackExtractor_FirstSucceeds(t *testing.T) {
	e1 := new(mocks.MockHoldingsExtractor)
	e2 := new(mocks.MockHoldingsExtractor)
	e1.On("Extract", mock.Anything, screenshot).Return(holdingsOutput("gemini"), nil)

	fe := ocr.NewFallbackExtractor([]port.HoldingsExtractor{e1, e2}, []string{"gemini", "openai"})

	out, err := fe.Extract(context.Background(), screenshot)
	require.NoError(t, err)
	assert.Equal(t, "gemini", out.ModelUsed)
	e2.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestFallbackExtractor_FirstFails_SecondSucceeds(t *testing.T) {
	e1 := new(mocks.MockHoldingsExtractor)
	e2 := new(mocks.MockHoldingsExtractor)
	e1.On("Extract", mock.Anything, screenshot).Return(nil, errors.New("bad gateway"))
	e2.On("Extract", mock.Anything, screenshot).Return(holdingsOutput("openai"), nil)

	fe := ocr.NewFallbackExtractor([]port.HoldingsExtractor{e1, e2}, []string{"gemini", "openai"})

	out, err := fe.Extract(context.Background(), screenshot)
	require.NoError(t, err)
	assert.Equal(t, "openai", out.ModelUsed)
}

func TestFallbackExtractor_AllRateLimited(t *testing.T) {
	e1 := new(mocks.MockHoldingsExtractor)
	e2 := new(mocks.MockHoldingsExtractor)
	e1.On("Extract", mock.Anything, screenshot).Return(nil, ocr.NewRateLimitError("gemini", errors.New("429"), 60*time.Second))
	e2.On("Extract", mock.Anything, screenshot).Return(nil, ocr.NewRateLimitError("openai", errors.New("429"), 30*time.Second))

	fe := ocr.NewFallbackExtractor([]port.HoldingsExtractor{e1, e2}, []string{"gemini", "openai"})

	out, err := fe.Extract(context.Background(), screenshot)
	assert.Nil(t, out)

	var rlErr *ocr.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)
	assert.Equal(t, 30*time.Second, rlErr.RetryAfter)
}

func TestFallbackExtractor_AllFail_NonRateLimit(t *testing.T) {
	e1 := new(mocks.MockHoldingsExtractor)
	e2 := new(mocks.MockHoldingsExtractor)
	e1.On("Extract", mock.Anything, screenshot).Return(nil, ocr.NewRateLimitError("gemini", errors.New("429"), 60*time.Second))
	e2.On("Extract", mock.Anything, screenshot).Return(nil, errors.New("invalid image"))

	fe := ocr.NewFallbackExtractor([]port.HoldingsExtractor{e1, e2}, []string{"gemini", "openai"})

	_, err := fe.Extract(context.Background(), screenshot)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all OCR providers failed")

	var rlErr *ocr.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestFallbackExtractor_SkipsOpenCircuit(t *testing.T) {
	e1 := new(mocks.MockHoldingsExtractor)
	e2 := new(mocks.MockHoldingsExtractor)
	e1.On("Extract", mock.Anything, screenshot).Return(nil, ocr.NewRateLimitError("gemini", errors.New("429"), 60*time.Second)).Once()
	e2.On("Extract", mock.Anything, screenshot).Return(holdingsOutput("openai"), nil)

	fe := ocr.NewFallbackExtractor([]port.HoldingsExtractor{e1, e2}, []string{"gemini", "openai"})

	_, err := fe.Extract(context.Background(), screenshot)
	require.NoError(t, err)

	out, err := fe.Extract(context.Background(), screenshot)
	require.NoError(t, err)
	assert.Equal(t, "openai", out.ModelUsed)
	e1.AssertNumberOfCalls(t, "Extract", 1)
	e2.AssertNumberOfCalls(t, "Extract", 2)
}

func TestFallbackExtractor_CircuitAutoCloses(t *testing.T) {
	e1 := new(mocks.MockHoldingsExtractor)
	e2 := new(mocks.MockHoldingsExtractor)
	e1.On("Extract", mock.Anything, screenshot).Return(nil, ocr.NewRateLimitError("gemini", errors.New("429"), 1*time.Second)).Once()
	e2.On("Extract", mock.Anything, screenshot).Return(holdingsOutput("openai"), nil).Once()

	fe := ocr.NewFallbackExtractor([]port.HoldingsExtractor{e1, e2}, []string{"gemini", "openai"})

	out, err := fe.Extract(context.Background(), screenshot)
	require.NoError(t, err)
	assert.Equal(t, "openai", out.ModelUsed)

	time.Sleep(1100 * time.Millisecond)

	e1.On("Extract", mock.Anything, screenshot).Return(holdingsOutput("gemini"), nil).Once()
	out, err = fe.Extract(context.Background(), screenshot)
	require.NoError(t, err)
	assert.Equal(t, "gemini", out.ModelUsed)
}

package ocr_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"folioscan/internal/ocr"
	"folioscan/internal/port"
	"folioscan/mocks"
)

func TestNewThrottledExtractor_DisabledReturnsNext(t *testing.T) {
	next := new(mocks.MockHoldingsExtractor)
	assert.Same(t, next, ocr.NewThrottledExtractor(next, 0, 5))
}

func TestThrottledExtractor_Passthrough(t *testing.T) {
	next := new(mocks.MockHoldingsExtractor)
	next.On("Extract", mock.Anything, screenshot).Return(holdingsOutput("gemini"), nil)

	ex := ocr.NewThrottledExtractor(next, 100, 2)
	out, err := ex.Extract(context.Background(), screenshot)
	require.NoError(t, err)
	assert.Equal(t, "gemini", out.ModelUsed)
}

func TestThrottledExtractor_CanceledContext(t *testing.T) {
	next := new(mocks.MockHoldingsExtractor)
	ex := ocr.NewThrottledExtractor(next, 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ex.Extract(ctx, port.ExtractInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	next.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

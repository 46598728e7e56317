package ingest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"folioscan/internal/domain"
	"folioscan/internal/ingest"
	"folioscan/internal/logger"
	"folioscan/internal/port"
	"folioscan/mocks"
)

func byBytes(b string) interface{} {
	return mock.MatchedBy(func(in port.ExtractInput) bool { return string(in.ImageBytes) == b })
}

func newPipeline(t *testing.T, ext port.HoldingsExtractor, batch int) *ingest.Pipeline {
	t.Helper()
	log := logger.Discard()
	client := ingest.NewClient(ext, nil, log)
	sched := ingest.NewScheduler(client, ingest.WithSleepFunc(noSleep), ingest.WithLogger(log))
	p, err := ingest.NewPipeline(sched, batch, log)
	require.NoError(t, err)
	return p
}

func TestPipeline_Ingest(t *testing.T) {
	ext := new(mocks.MockHoldingsExtractor)
	ext.On("Extract", mock.Anything, byBytes("one")).Return(&port.ExtractOutput{
		Holdings: []domain.Holding{h("aapl", 30)}, ModelUsed: "m",
	}, nil)
	ext.On("Extract", mock.Anything, byBytes("two")).Return(nil, errors.New("ocr down"))
	ext.On("Extract", mock.Anything, byBytes("three")).Return(&port.ExtractOutput{
		Holdings: []domain.Holding{h("AAPL", 20), h("MSFT", 50)}, ModelUsed: "m",
	}, nil)

	p := newPipeline(t, ext, 2)
	session := ingest.NewSession()
	report, err := p.Ingest(context.Background(), session, []domain.ImageInput{
		{Name: "1.png", Data: []byte("one")},
		{Name: "2.png", Data: []byte("two")},
		{Name: "3.png", Data: []byte("three")},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.SuccessCount)
	assert.Equal(t, 1, report.FailureCount)
	assert.False(t, report.ManualEntryRequired)
	assertDraft(t, []domain.Holding{h("AAPL", 50), h("MSFT", 50)}, report.Draft)
	assert.Equal(t, domain.ValidationValid, report.Validation.Status)
	assert.Equal(t, "2.png", report.Results[1].Name)
	assert.False(t, report.Results[1].Success)

	assert.Equal(t, 3, session.UploadCount())
	done, total := session.Progress()
	assert.Equal(t, 3, done)
	assert.Equal(t, 3, total)
	ext.AssertNumberOfCalls(t, "Extract", 3)
}

func TestPipeline_AllFailedRequiresManualEntry(t *testing.T) {
	ext := new(mocks.MockHoldingsExtractor)
	ext.On("Extract", mock.Anything, mock.Anything).Return(nil, errors.New("ocr down"))

	p := newPipeline(t, ext, 2)
	report, err := p.Ingest(context.Background(), nil, []domain.ImageInput{{Data: []byte("a")}, {Data: []byte("b")}})
	require.NoError(t, err)

	assert.True(t, report.ManualEntryRequired)
	assert.Equal(t, 0, report.Draft.Len())
	assert.Equal(t, domain.ValidationEmpty, report.Validation.Status)
	assert.Equal(t, 2, report.FailureCount)
}

func TestPipeline_NoImages(t *testing.T) {
	p := newPipeline(t, new(mocks.MockHoldingsExtractor), 2)
	_, err := p.Ingest(context.Background(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrNoImages)
}

func TestNewPipeline_InvalidBatchSize(t *testing.T) {
	_, err := ingest.NewPipeline(nil, 0, logger.Discard())
	assert.ErrorIs(t, err, domain.ErrInvalidBatchSize)
}

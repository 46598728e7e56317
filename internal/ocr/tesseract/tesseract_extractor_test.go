package tesseract_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folioscan/internal/config"
	"folioscan/internal/domain"
	"folioscan/internal/ocr"
	"folioscan/internal/ocr/tesseract"
	"folioscan/internal/port"
)

type fakeRecognizer struct {
	text      string
	err       error
	languages []string
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ []byte, languages []string) (string, error) {
	f.languages = languages
	return f.text, f.err
}

func TestTesseractExtractor_TossLayout(t *testing.T) {
	rec := &fakeRecognizer{text: "총 자산 5,000,000원\n애플\n40%\n테슬라 60%\n현금 0%"}
	ex := tesseract.NewExtractorWithRecognizer(&config.OCRProviderConfig{Languages: "kor+eng"}, ocr.NewTickerMapper(nil), rec)

	out, err := ex.Extract(context.Background(), port.ExtractInput{ImageBytes: []byte("png"), Broker: domain.BrokerToss})

	require.NoError(t, err)
	assert.Equal(t, []string{"kor", "eng"}, rec.languages)
	assert.Equal(t, []domain.Holding{{Ticker: "AAPL", Weight: 40}, {Ticker: "TSLA", Weight: 60}}, out.Holdings)
	assert.Equal(t, "tesseract", out.ModelUsed)
}

func TestTesseractExtractor_DefaultLanguages(t *testing.T) {
	rec := &fakeRecognizer{text: "KO 10%"}
	ex := tesseract.NewExtractorWithRecognizer(&config.OCRProviderConfig{}, nil, rec)

	out, err := ex.Extract(context.Background(), port.ExtractInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"kor", "eng"}, rec.languages)
	assert.Equal(t, []domain.Holding{{Ticker: "KO", Weight: 10}}, out.Holdings)
}

func TestTesseractExtractor_NoText(t *testing.T) {
	ex := tesseract.NewExtractorWithRecognizer(&config.OCRProviderConfig{}, nil, &fakeRecognizer{text: "  \n"})
	_, err := ex.Extract(context.Background(), port.ExtractInput{})
	assert.Error(t, err)
}

func TestTesseractExtractor_RecognizerError(t *testing.T) {
	ex := tesseract.NewExtractorWithRecognizer(&config.OCRProviderConfig{}, nil, &fakeRecognizer{err: errors.New("leptonica: bad image")})
	_, err := ex.Extract(context.Background(), port.ExtractInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leptonica")
}

package ocr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folioscan/internal/domain"
	"folioscan/internal/ocr"
)

func TestParseHoldingsJSON_Object(t *testing.T) {
	got, err := ocr.ParseHoldingsJSON(`{"holdings":[{"ticker":"AAPL","weight":25.5},{"ticker":"TSLA","weight":74.5}]}`)
	require.NoError(t, err)
	assert.Equal(t, []domain.Holding{{Ticker: "AAPL", Weight: 25.5}, {Ticker: "TSLA", Weight: 74.5}}, got)
}

func TestParseHoldingsJSON_CodeFenceAndStringWeights(t *testing.T) {
	text := "```json\n{\"holdings\":[{\"ticker\":\"NVDA\",\"weight\":\"12.5%\"},{\"ticker\":\"MSFT\",\"weight\":\"1,000\"}]}\n```"
	got, err := ocr.ParseHoldingsJSON(text)
	require.NoError(t, err)
	assert.Equal(t, []domain.Holding{{Ticker: "NVDA", Weight: 12.5}, {Ticker: "MSFT", Weight: 1000}}, got)
}

func TestParseHoldingsJSON_BareArray(t *testing.T) {
	got, err := ocr.ParseHoldingsJSON(`[{"ticker":"KO","weight":10}]`)
	require.NoError(t, err)
	assert.Equal(t, []domain.Holding{{Ticker: "KO", Weight: 10}}, got)
}

func TestParseHoldingsJSON_NameFallbackAndBadWeight(t *testing.T) {
	got, err := ocr.ParseHoldingsJSON(`{"holdings":[{"name":"삼성전자","weight":30},{"ticker":"X","weight":"n/a"},{"ticker":"Y"}]}`)
	require.NoError(t, err)
	assert.Equal(t, []domain.Holding{{Ticker: "삼성전자", Weight: 30}}, got)
}

func TestParseHoldingsJSON_EmptyHoldings(t *testing.T) {
	got, err := ocr.ParseHoldingsJSON(`{"holdings":[]}`)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseHoldingsJSON_Errors(t *testing.T) {
	for _, text := range []string{"not json", `{"positions":[]}`, `[{"ticker":1}`} {
		_, err := ocr.ParseHoldingsJSON(text)
		assert.Error(t, err, text)
	}
}

func TestBuildHoldingsPrompt_TossHint(t *testing.T) {
	toss := ocr.BuildHoldingsPrompt(domain.BrokerToss)
	def := ocr.BuildHoldingsPrompt(domain.BrokerDefault)

	assert.Contains(t, toss, "토스증권")
	assert.NotContains(t, def, "토스증권")
	assert.Contains(t, def, `{"holdings": [{"ticker": "AAPL", "weight": 25.5}]}`)
}

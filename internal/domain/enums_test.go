package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"folioscan/internal/domain"
)

func TestParseBrokerType(t *testing.T) {
	tests := []struct {
		in   string
		want domain.BrokerType
	}{
		{"TOSS", domain.BrokerToss},
		{"toss", domain.BrokerToss},
		{"토스증권", domain.BrokerToss},
		{"Toss Securities", domain.BrokerToss},
		{"  toss  ", domain.BrokerToss},
		{"DEFAULT", domain.BrokerDefault},
		{"기본", domain.BrokerDefault},
		{"", domain.BrokerDefault},
		{"kiwoom", domain.BrokerDefault},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ParseBrokerType(tt.in))
		})
	}
}

func TestBrokerType_Names(t *testing.T) {
	assert.Equal(t, "토스증권", domain.BrokerToss.KoreanName())
	assert.Equal(t, "Toss Securities", domain.BrokerToss.EnglishName())
	assert.Equal(t, "Default", domain.BrokerType("bogus").EnglishName())
}

func TestPortfolioDraft_Accessors(t *testing.T) {
	d := domain.PortfolioDraft{Holdings: []domain.Holding{{Ticker: "AAPL", Weight: 60}, {Ticker: "MSFT", Weight: 40}}}

	assert.Equal(t, 2, d.Len())
	assert.Equal(t, []string{"AAPL", "MSFT"}, d.Tickers())
	assert.InDelta(t, 100.0, d.Total(), 1e-9)
	w, ok := d.Weight("MSFT")
	assert.True(t, ok)
	assert.Equal(t, 40.0, w)
	_, ok = d.Weight("NVDA")
	assert.False(t, ok)
}

func TestValidationOutcome_Flags(t *testing.T) {
	assert.True(t, domain.ValidationOutcome{Status: domain.ValidationWarn}.RequiresConfirmation())
	assert.False(t, domain.ValidationOutcome{Status: domain.ValidationValid}.RequiresConfirmation())
	assert.True(t, domain.ValidationOutcome{Status: domain.ValidationEmpty}.Blocking())
	assert.True(t, domain.ValidationOutcome{Status: domain.ValidationInvalid}.Blocking())
	assert.False(t, domain.ValidationOutcome{Status: domain.ValidationWarn}.Blocking())
}

package ingest_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"folioscan/internal/domain"
	"folioscan/internal/ingest"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		entries []domain.Holding
		status  domain.ValidationStatus
		reason  string
		total   float64
	}{
		{"empty", nil, domain.ValidationEmpty, "", 0},
		{"negative weight", []domain.Holding{h("AAPL", -5)}, domain.ValidationInvalid, domain.ReasonBadEntry, 0},
		{"zero weight", []domain.Holding{h("AAPL", 0), h("MSFT", 100)}, domain.ValidationInvalid, domain.ReasonBadEntry, 0},
		{"NaN weight", []domain.Holding{h("AAPL", math.NaN())}, domain.ValidationInvalid, domain.ReasonBadEntry, 0},
		{"infinite weight", []domain.Holding{h("AAPL", math.Inf(1))}, domain.ValidationInvalid, domain.ReasonBadEntry, 0},
		{"blank ticker", []domain.Holding{h("  ", 50), h("MSFT", 50)}, domain.ValidationInvalid, domain.ReasonBadEntry, 0},
		{"bad entry beats warn", []domain.Holding{h("", 10)}, domain.ValidationInvalid, domain.ReasonBadEntry, 0},
		{"duplicate ticker", []domain.Holding{h("AAPL", 50), h("MSFT", 25), h("AAPL", 25)}, domain.ValidationInvalid, domain.ReasonBadEntry, 0},
		{"duplicate after trim", []domain.Holding{h("AAPL", 50), h(" AAPL ", 50)}, domain.ValidationInvalid, domain.ReasonBadEntry, 0},
		{"lower boundary", []domain.Holding{h("AAPL", 50), h("MSFT", 45)}, domain.ValidationValid, "", 95},
		{"upper boundary", []domain.Holding{h("AAPL", 55), h("MSFT", 50)}, domain.ValidationValid, "", 105},
		{"exact", []domain.Holding{h("AAPL", 60), h("MSFT", 40)}, domain.ValidationValid, "", 100},
		{"thirds", []domain.Holding{h("A", 33.3), h("B", 33.3), h("C", 33.4)}, domain.ValidationValid, "", 100},
		{"below band", []domain.Holding{h("AAPL", 50), h("MSFT", 40)}, domain.ValidationWarn, "", 90},
		{"just below band", []domain.Holding{h("AAPL", 94.99)}, domain.ValidationWarn, "", 94.99},
		{"above band", []domain.Holding{h("AAPL", 100), h("MSFT", 5.01)}, domain.ValidationWarn, "", 105.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ingest.Validate(tt.entries)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.reason, got.Reason)
			assert.InDelta(t, tt.total, got.Total, 1e-9)
		})
	}
}

func TestValidate_WarnRequiresConfirmation(t *testing.T) {
	got := ingest.Validate([]domain.Holding{h("AAPL", 50), h("MSFT", 40)})
	assert.True(t, got.RequiresConfirmation())
	assert.False(t, got.Blocking())
}

func TestValidateDraft_MergedDraftIsValid(t *testing.T) {
	draft := ingest.Merge([]domain.ExtractionResult{ok(h("A", 1), h("B", 2), h("C", 4))})
	assert.Equal(t, domain.ValidationValid, ingest.ValidateDraft(draft).Status)
	assert.Equal(t, domain.ValidationEmpty, ingest.ValidateDraft(domain.PortfolioDraft{}).Status)
}

package ingest

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"folioscan/internal/domain"
)

// Tolerance band for the weight total. Both bounds are inclusive.
var (
	LowerBound = decimal.NewFromInt(95)
	UpperBound = decimal.NewFromInt(105)
)

// Validate gates a set of portfolio entries, one per ticker.
// Checks run in order: empty, bad entry, total outside [95, 105], valid.
// A ticker listed twice is a bad entry.
func Validate(entries []domain.Holding) domain.ValidationOutcome {
	if len(entries) == 0 {
		return domain.ValidationOutcome{Status: domain.ValidationEmpty}
	}

	seen := make(map[string]bool, len(entries))
	total := decimal.Zero
	for _, e := range entries {
		ticker := strings.TrimSpace(e.Ticker)
		if ticker == "" || seen[ticker] || !validWeight(e.Weight) {
			return domain.ValidationOutcome{Status: domain.ValidationInvalid, Reason: domain.ReasonBadEntry}
		}
		seen[ticker] = true
		total = total.Add(decimal.NewFromFloat(e.Weight))
	}

	sum, _ := total.Float64()
	if total.LessThan(LowerBound) || total.GreaterThan(UpperBound) {
		return domain.ValidationOutcome{Status: domain.ValidationWarn, Total: sum}
	}
	return domain.ValidationOutcome{Status: domain.ValidationValid, Total: sum}
}

// ValidateDraft validates the holdings of a draft.
func ValidateDraft(d domain.PortfolioDraft) domain.ValidationOutcome {
	return Validate(d.Holdings)
}

func validWeight(w float64) bool {
	return !math.IsNaN(w) && !math.IsInf(w, 0) && w > 0
}

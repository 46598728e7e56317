package ingest

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"folioscan/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Merge combines the holdings of all successful results into a draft.
// Weights are summed per uppercased ticker and rescaled so the draft totals 100.
// A zero total yields an empty draft.
func Merge(results []domain.ExtractionResult) domain.PortfolioDraft {
	var holdings []domain.Holding
	for _, r := range results {
		if !r.Success {
			continue
		}
		holdings = append(holdings, r.Holdings...)
	}
	return Normalize(holdings)
}

// Normalize sums duplicate tickers and rescales weights to total 100,
// keeping first-appearance order.
func Normalize(holdings []domain.Holding) domain.PortfolioDraft {
	var order []string
	sums := make(map[string]decimal.Decimal)

	for _, h := range holdings {
		ticker := strings.ToUpper(strings.TrimSpace(h.Ticker))
		if ticker == "" || math.IsNaN(h.Weight) || math.IsInf(h.Weight, 0) || h.Weight <= 0 {
			continue
		}
		w := decimal.NewFromFloat(h.Weight)
		if prev, ok := sums[ticker]; ok {
			sums[ticker] = prev.Add(w)
			continue
		}
		order = append(order, ticker)
		sums[ticker] = w
	}

	total := decimal.Zero
	for _, t := range order {
		total = total.Add(sums[t])
	}
	if !total.IsPositive() {
		return domain.PortfolioDraft{Holdings: []domain.Holding{}}
	}

	out := make([]domain.Holding, 0, len(order))
	for _, t := range order {
		scaled, _ := sums[t].Mul(hundred).Div(total).Float64()
		out = append(out, domain.Holding{Ticker: t, Weight: scaled})
	}
	return domain.PortfolioDraft{Holdings: out}
}

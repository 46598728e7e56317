package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ImageInput is one screenshot submitted for extraction.
type ImageInput struct {
	Name        string
	Data        []byte
	ContentType string
	Broker      BrokerType
}

// Holding is a single (ticker, weight) pair.
type Holding struct {
	Ticker string  `json:"ticker"`
	Weight float64 `json:"weight"`
}

// ExtractionResult is the outcome of extracting holdings from one image.
// A failed result always carries an empty Holdings slice.
type ExtractionResult struct {
	Index    int       `json:"index"`
	Name     string    `json:"name,omitempty"`
	Success  bool      `json:"success"`
	Holdings []Holding `json:"holdings"`
	Provider string    `json:"provider,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// FailedResult builds an unsuccessful ExtractionResult.
func FailedResult(index int, reason string) ExtractionResult {
	return ExtractionResult{Index: index, Success: false, Holdings: []Holding{}, Error: reason}
}

// PortfolioDraft is an ordered set of unique tickers with weights.
// Order is the order in which each ticker first appeared.
type PortfolioDraft struct {
	Holdings []Holding `json:"holdings"`
}

// Len returns the number of tickers in the draft.
func (d PortfolioDraft) Len() int { return len(d.Holdings) }

// Weight returns the weight for ticker and whether it is present.
func (d PortfolioDraft) Weight(ticker string) (float64, bool) {
	for _, h := range d.Holdings {
		if h.Ticker == ticker {
			return h.Weight, true
		}
	}
	return 0, false
}

// Tickers returns the tickers in draft order.
func (d PortfolioDraft) Tickers() []string {
	out := make([]string, len(d.Holdings))
	for i, h := range d.Holdings {
		out[i] = h.Ticker
	}
	return out
}

// Total returns the sum of all weights.
func (d PortfolioDraft) Total() float64 {
	var sum float64
	for _, h := range d.Holdings {
		sum += h.Weight
	}
	return sum
}

// ValidationOutcome is the result of validating a set of portfolio entries.
type ValidationOutcome struct {
	Status ValidationStatus `json:"status"`
	Reason string           `json:"reason,omitempty"`
	Total  float64          `json:"total"`
}

// RequiresConfirmation reports whether the caller must confirm before submitting.
func (v ValidationOutcome) RequiresConfirmation() bool {
	return v.Status == ValidationWarn
}

// Blocking reports whether the entries must not be submitted.
func (v ValidationOutcome) Blocking() bool {
	return v.Status == ValidationInvalid || v.Status == ValidationEmpty
}

// ExtractionRun is the persisted record of one multi-image extraction.
type ExtractionRun struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	Broker       BrokerType      `db:"broker" json:"broker"`
	ImageCount   int             `db:"image_count" json:"image_count"`
	SuccessCount int             `db:"success_count" json:"success_count"`
	FailureCount int             `db:"failure_count" json:"failure_count"`
	Draft        json.RawMessage `db:"draft" json:"draft"`
	Results      json.RawMessage `db:"results" json:"results"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// TickerAlias maps a company name as it appears in a screenshot to a ticker symbol.
type TickerAlias struct {
	Alias     string    `db:"alias" json:"alias"`
	Ticker    string    `db:"ticker" json:"ticker"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

package ocr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"folioscan/internal/domain"
)

type rawHolding struct {
	Ticker string          `json:"ticker"`
	Name   string          `json:"name"`
	Weight json.RawMessage `json:"weight"`
}

// ParseHoldingsJSON decodes the JSON answer of a vision model into holdings.
// It accepts {"holdings": [...]} or a bare array, optionally wrapped in a code fence.
// Weights may be numbers or strings such as "12.5%". Entries with an unreadable weight are skipped.
func ParseHoldingsJSON(text string) ([]domain.Holding, error) {
	body := []byte(stripCodeFence(text))

	var raws []rawHolding
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("parsing holdings array: %w (raw: %s)", err, truncate(text, 500))
		}
	} else {
		var wrapped struct {
			Holdings *[]rawHolding `json:"holdings"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("parsing holdings JSON: %w (raw: %s)", err, truncate(text, 500))
		}
		if wrapped.Holdings == nil {
			return nil, fmt.Errorf("response has no holdings key (raw: %s)", truncate(text, 500))
		}
		raws = *wrapped.Holdings
	}

	holdings := make([]domain.Holding, 0, len(raws))
	for _, r := range raws {
		ticker := r.Ticker
		if strings.TrimSpace(ticker) == "" {
			ticker = r.Name
		}
		w, ok := parseWeight(r.Weight)
		if !ok {
			continue
		}
		holdings = append(holdings, domain.Holding{Ticker: ticker, Weight: w})
	}
	return holdings, nil
}

func parseWeight(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

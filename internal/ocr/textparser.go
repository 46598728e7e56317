package ocr

import (
	"regexp"
	"strconv"
	"strings"

	"folioscan/internal/domain"
)

var (
	tickerPattern   = regexp.MustCompile(`\b([0-9]{6}\.[A-Z]{2}|[A-Z]{2,5})\b`)
	weightPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	tossSkipPattern = regexp.MustCompile(`(?i)(합계|총|평가금액|보유|종목|자산|현금|total|asset|cash|portfolio)`)
)

// TextParser turns raw OCR text into holdings.
type TextParser interface {
	Parse(text string) []domain.Holding
}

// TextParserFor returns the text parser for a broker layout.
func TextParserFor(broker domain.BrokerType) TextParser {
	if broker == domain.BrokerToss {
		return TossTextParser{}
	}
	return DefaultTextParser{}
}

// DefaultTextParser reads one holding per line: the first ticker and the first percentage.
type DefaultTextParser struct{}

func (DefaultTextParser) Parse(text string) []domain.Holding {
	var out []domain.Holding
	for _, line := range strings.Split(text, "\n") {
		ticker, hasTicker := findTicker(line)
		weight, hasWeight := findWeight(line)
		if hasTicker && hasWeight {
			out = append(out, domain.Holding{Ticker: ticker, Weight: weight})
		}
	}
	return out
}

// TossTextParser handles the Toss Securities layout, where header and total rows
// must be skipped and a ticker may be followed by its weight on the next line.
type TossTextParser struct{}

func (TossTextParser) Parse(text string) []domain.Holding {
	var out []domain.Holding
	pending := ""

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || tossSkipPattern.MatchString(line) {
			continue
		}

		ticker, hasTicker := findTicker(line)
		weight, hasWeight := findWeight(line)

		switch {
		case hasTicker && hasWeight:
			out = append(out, domain.Holding{Ticker: ticker, Weight: weight})
			pending = ""
		case hasTicker:
			pending = ticker
		case hasWeight && pending != "":
			out = append(out, domain.Holding{Ticker: pending, Weight: weight})
			pending = ""
		}
	}
	return out
}

func findTicker(line string) (string, bool) {
	m := tickerPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func findWeight(line string) (float64, bool) {
	m := weightPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	w, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return w, true
}

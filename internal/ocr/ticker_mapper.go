package ocr

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"folioscan/internal/domain"
	"folioscan/internal/logger"
	"folioscan/internal/port"
)

// defaultAliases maps company names as shown in Korean brokerage apps to tickers.
var defaultAliases = map[string]string{
	// US
	"애플":         "AAPL",
	"테슬라":        "TSLA",
	"마이크로소프트":    "MSFT",
	"엔비디아":       "NVDA",
	"아마존":        "AMZN",
	"알파벳":        "GOOGL",
	"구글":         "GOOGL",
	"메타":         "META",
	"페이스북":       "META",
	"넷플릭스":       "NFLX",
	"인텔":         "INTC",
	"코카콜라":       "KO",
	"나이키":        "NKE",
	"맥도날드":       "MCD",
	"스타벅스":       "SBUX",
	"월마트":        "WMT",
	"JP모건":       "JPM",
	"제이피모건":      "JPM",
	"뱅크오브아메리카":   "BAC",
	"비자":         "V",
	"마스터카드":      "MA",
	"디즈니":        "DIS",
	"보잉":         "BA",
	"존슨앤존슨":      "JNJ",
	"화이자":        "PFE",
	"모더나":        "MRNA",
	"버크셔해서웨이":    "BRK.B",
	"팔란티어":       "PLTR",
	"우버":         "UBER",
	"에어비앤비":      "ABNB",
	"스냅":         "SNAP",
	"스포티파이":      "SPOT",
	"세노버스에너지":    "CVE",
	"일루미나":       "ILMN",
	"유나이티드파셀서비스": "UPS",
	"써클인터넷그룹":    "CRCL",
	"노보노디스크":     "NVO",
	"아이온큐":       "IONQ",
	// KR
	"삼성전자":     "005930.KS",
	"SK하이닉스":   "000660.KS",
	"네이버":      "035420.KS",
	"카카오":      "035720.KS",
	"LG전자":     "066570.KS",
	"현대차":      "005380.KS",
	"기아":       "000270.KS",
	"포스코":      "005490.KS",
	"셀트리온":     "068270.KS",
	"삼성바이오로직스": "207940.KS",
	"삼성물산":     "028260.KS",
	"삼성SDI":    "006400.KS",
	"LG화학":     "051910.KS",
	"LG에너지솔루션": "373220.KS",
	"KB금융":     "105560.KS",
	"신한지주":     "055550.KS",
	"하나금융지주":   "086790.KS",
	"우리금융지주":   "316140.KS",
	"NH투자증권":   "005940.KS",
	"삼성생명":     "032830.KS",
	"SK이노베이션":  "096770.KS",
	"SK텔레콤":    "017670.KS",
	"LG유플러스":   "032640.KS",
	// CN
	"알리바바": "BABA",
	"텐센트":  "TCEHY",
	"바이두":  "BIDU",
	"JD닷컴": "JD",
	"징동":   "JD",
	"니오":   "NIO",
}

var (
	tickerShape   = regexp.MustCompile(`^[A-Z]{2,6}$|^[0-9]{6}\.[A-Z]{2}$`)
	nonNameChars  = regexp.MustCompile(`[^가-힣A-Za-z]`)
	hangulPattern = regexp.MustCompile(`[가-힣]`)
	hangulRun     = regexp.MustCompile(`[가-힣](?:[가-힣\s]*[가-힣])?`)
)

type alias struct {
	name       string
	normalized string
	ticker     string
}

// TickerMapper resolves company names to tickers. It is immutable after construction.
type TickerMapper struct {
	exact      map[string]string
	normalized map[string]string
	byLength   []alias // longest name first
	log        *logger.Entry
}

// NewTickerMapper creates a mapper from the built-in aliases plus extra.
// Extra aliases override built-in ones with the same name.
func NewTickerMapper(extra []domain.TickerAlias) *TickerMapper {
	m := &TickerMapper{
		exact:      make(map[string]string, len(defaultAliases)+len(extra)),
		normalized: make(map[string]string, len(defaultAliases)+len(extra)),
		log:        logger.L().WithComponent("ocr.TickerMapper"),
	}
	for name, ticker := range defaultAliases {
		m.exact[name] = ticker
	}
	for _, a := range extra {
		name := strings.TrimSpace(a.Alias)
		ticker := strings.ToUpper(strings.TrimSpace(a.Ticker))
		if name == "" || ticker == "" {
			continue
		}
		m.exact[name] = ticker
	}
	for name, ticker := range m.exact {
		n := normalizeName(name)
		m.normalized[n] = ticker
		m.byLength = append(m.byLength, alias{name: name, normalized: n, ticker: ticker})
	}
	sort.Slice(m.byLength, func(i, j int) bool {
		li, lj := len([]rune(m.byLength[i].name)), len([]rune(m.byLength[j].name))
		if li != lj {
			return li > lj
		}
		return m.byLength[i].name < m.byLength[j].name
	})
	return m
}

// LoadTickerMapper builds a mapper from the built-in aliases and every alias in repo.
func LoadTickerMapper(ctx context.Context, repo port.TickerAliasRepository) (*TickerMapper, error) {
	aliases, err := repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading ticker aliases: %w", err)
	}
	return NewTickerMapper(aliases), nil
}

// Len returns the number of known aliases.
func (m *TickerMapper) Len() int { return len(m.exact) }

// Resolve maps a company name to its ticker.
// Lookup order: exact, normalized, already a ticker, case-insensitive, containment.
// Unknown names are returned trimmed but otherwise unchanged.
func (m *TickerMapper) Resolve(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return trimmed
	}
	if t, ok := m.exact[trimmed]; ok {
		return t
	}
	n := normalizeName(trimmed)
	if t, ok := m.normalized[n]; ok && n != "" {
		return t
	}
	if IsTicker(trimmed) {
		return trimmed
	}
	for _, a := range m.byLength {
		if strings.EqualFold(a.name, trimmed) {
			return a.ticker
		}
	}
	if len([]rune(n)) >= 2 {
		for _, a := range m.byLength {
			if a.normalized == "" || len([]rune(a.normalized)) < 2 {
				continue
			}
			if strings.Contains(n, a.normalized) || strings.Contains(a.normalized, n) {
				return a.ticker
			}
		}
	}
	m.log.WithField("name", trimmed).Debug("no ticker alias matched")
	return trimmed
}

// MapText replaces known company names in raw OCR text with their tickers,
// longest name first, then retries per line on normalized Hangul runs.
func (m *TickerMapper) MapText(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	for _, a := range m.byLength {
		if strings.Contains(text, a.name) {
			text = strings.ReplaceAll(text, a.name, a.ticker)
		}
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !hangulPattern.MatchString(line) {
			continue
		}
		lines[i] = hangulRun.ReplaceAllStringFunc(line, func(run string) string {
			candidate := strings.TrimSpace(run)
			if t, ok := m.normalized[normalizeName(candidate)]; ok {
				return strings.Replace(run, candidate, t, 1)
			}
			return run
		})
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// IsTicker reports whether s already looks like a ticker symbol.
func IsTicker(s string) bool {
	return tickerShape.MatchString(strings.TrimSpace(s))
}

func normalizeName(s string) string {
	return strings.ToUpper(nonNameChars.ReplaceAllString(s, ""))
}

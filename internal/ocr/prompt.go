package ocr

import "folioscan/internal/domain"

// BuildHoldingsPrompt returns the extraction prompt for a brokerage portfolio screenshot.
func BuildHoldingsPrompt(broker domain.BrokerType) string {
	hint := ""
	if broker == domain.BrokerToss {
		hint = `
- The screenshot comes from the Toss Securities (토스증권) app. Ignore summary rows such as 총 자산, 평가금액, 현금 and 합계.
- Profit or return percentages shown with a + or - sign are NOT portfolio weights.`
	}

	return `You are a portfolio screenshot extraction assistant. Analyze the provided brokerage app screenshot and extract every holding with its portfolio weight.

IMPORTANT INSTRUCTIONS:
- A holding is one security (stock, ETF, fund) listed in the screenshot.
- "weight" is the percentage of the whole portfolio the holding represents, as a number between 0 and 100 without the % sign.
- Use the exchange ticker symbol (e.g. AAPL, TSLA, 005930.KS). If only a company name is visible, put the company name exactly as shown in "ticker".
- Do not invent holdings that are not visible. Do not include cash, totals or headers.` + hint + `

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation, just the raw JSON object:
{"holdings": [{"ticker": "AAPL", "weight": 25.5}]}

If no holdings are visible return {"holdings": []}.`
}

package research

import (
	"fmt"
	"strings"

	"stock-research-agent/internal/types"
)

const analystSystem = "You are a senior equity research analyst. Be factual, concise, and conservative. When asked for JSON, respond ONLY with strict JSON."

// newsPrompt asks for a short sentiment read over recent headlines.
func newsPrompt(ticker string, articles []types.NewsArticle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the news sentiment for %s in 2-3 sentences based on these headlines:\n", ticker)
	quoted := 0
	for _, a := range articles {
		fmt.Fprintf(&b, "- %s (%s)\n", a.Title, a.Source)
		quoted++
		if quoted == 3 {
			break
		}
	}
	b.WriteString("\nFocus on what matters for an investor. Plain text, no markdown.")
	return b.String()
}

// newsFallback is the deterministic summary used when the LLM is unavailable.
func newsFallback(ticker string, articles []types.NewsArticle) string {
	if len(articles) == 0 {
		return fmt.Sprintf("No recent news found for %s.", ticker)
	}
	return fmt.Sprintf("Recent coverage for %s spans %d articles; latest headline: %q.",
		ticker, len(articles), articles[0].Title)
}

// technicalPrompt asks for a technical read given the computed levels.
func technicalPrompt(ticker string, trend types.Trend, currentPrice float64, support, resistance []float64, rsi float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Give a 2-3 sentence technical analysis for %s.\n", ticker)
	fmt.Fprintf(&b, "Trend: %s\n", trend)
	if currentPrice > 0 {
		fmt.Fprintf(&b, "Current price: %.2f\n", currentPrice)
	}
	if len(support) > 0 {
		fmt.Fprintf(&b, "Support levels: %s\n", joinLevels(support))
	}
	if len(resistance) > 0 {
		fmt.Fprintf(&b, "Resistance levels: %s\n", joinLevels(resistance))
	}
	if rsi > 0 {
		fmt.Fprintf(&b, "RSI(14): %.1f\n", rsi)
	}
	b.WriteString("Plain text, no markdown.")
	return b.String()
}

// technicalFallback renders the computed levels without the LLM.
func technicalFallback(ticker string, trend types.Trend, support, resistance []float64) string {
	msg := fmt.Sprintf("%s is in a %s trend.", ticker, trend)
	if len(support) > 0 {
		msg += fmt.Sprintf(" Support near %.2f.", support[len(support)-1])
	}
	if len(resistance) > 0 {
		msg += fmt.Sprintf(" Resistance near %.2f.", resistance[0])
	}
	return msg
}

// synthesisInput carries everything the final prompt needs.
type synthesisInput struct {
	Ticker       string
	Query        string
	Info         types.StockInfo
	NewsSummary  string
	TechSummary  string
	Trend        types.Trend
	Support      []float64
	Resistance   []float64
	Metrics      types.FinancialMetrics
	ArticleCount int
}

// synthesisResult is the strict JSON contract for the final LLM call.
type synthesisResult struct {
	Stance     string   `json:"stance"`
	Confidence string   `json:"confidence"`
	Summary    string   `json:"summary"`
	Rationale  string   `json:"rationale"`
	KeyDrivers []string `json:"key_drivers"`
	Risks      []string `json:"risks"`
	Catalysts  []string `json:"catalysts"`
}

func synthesisPrompt(in synthesisInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Produce an investment recommendation for %s.\n", in.Ticker)
	if in.Query != "" {
		fmt.Fprintf(&b, "User query: %q\n", in.Query)
	}
	b.WriteString("\nData gathered:\n")
	fmt.Fprintf(&b, "Company: %s\n", in.Info.CompanyName)
	if in.Info.CurrentPrice != nil {
		fmt.Fprintf(&b, "Price: %.2f\n", *in.Info.CurrentPrice)
	}
	if in.Info.PERatio != nil {
		fmt.Fprintf(&b, "P/E: %.2f\n", *in.Info.PERatio)
	}
	if in.Metrics.EPS != nil {
		fmt.Fprintf(&b, "EPS (ttm): %.2f\n", *in.Metrics.EPS)
	}
	if in.Metrics.ProfitMargin != nil {
		fmt.Fprintf(&b, "Profit margin: %.1f%%\n", *in.Metrics.ProfitMargin*100)
	}
	if in.Metrics.RevenueGrowth != nil {
		fmt.Fprintf(&b, "Revenue growth (qoq): %.1f%%\n", *in.Metrics.RevenueGrowth*100)
	}
	fmt.Fprintf(&b, "Trend: %s\n", in.Trend)
	if len(in.Support) > 0 {
		fmt.Fprintf(&b, "Support: %s\n", joinLevels(in.Support))
	}
	if len(in.Resistance) > 0 {
		fmt.Fprintf(&b, "Resistance: %s\n", joinLevels(in.Resistance))
	}
	fmt.Fprintf(&b, "News summary (%d articles): %s\n", in.ArticleCount, in.NewsSummary)
	fmt.Fprintf(&b, "Technical summary: %s\n", in.TechSummary)
	b.WriteString(`
Respond with a single JSON object:
{"stance": "buy"|"sell"|"hold", "confidence": "high"|"medium"|"low", "summary": string, "rationale": string, "key_drivers": [string], "risks": [string], "catalysts": [string]}`)
	return b.String()
}

// synthesisFallback is the safe default when the LLM call fails or returns
// garbage: HOLD with medium confidence and a generic rationale.
func synthesisFallback(in synthesisInput) synthesisResult {
	return synthesisResult{
		Stance:     string(types.StanceHold),
		Confidence: string(types.ConfidenceMedium),
		Summary: fmt.Sprintf("%s is in a %s trend. %s",
			in.Ticker, in.Trend, in.NewsSummary),
		Rationale:  "Automated synthesis unavailable; defaulting to a neutral stance based on gathered data.",
		KeyDrivers: []string{fmt.Sprintf("Price trend: %s", in.Trend)},
		Risks:      []string{"Analysis generated without LLM synthesis"},
	}
}

func joinLevels(levels []float64) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = fmt.Sprintf("%.2f", l)
	}
	return strings.Join(parts, ", ")
}

package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"stock-research-agent/internal/types"
)

type stubMarket struct {
	info       types.StockInfo
	infoErr    error
	history    types.PriceHistory
	historyErr error
	metrics    types.FinancialMetrics
	metricsErr error
}

func (m *stubMarket) StockInfo(_ context.Context, _ string) (types.StockInfo, error) {
	return m.info, m.infoErr
}

func (m *stubMarket) PriceHistory(_ context.Context, _ string, _ int) (types.PriceHistory, error) {
	return m.history, m.historyErr
}

func (m *stubMarket) FinancialMetrics(_ context.Context, _ string) (types.FinancialMetrics, error) {
	return m.metrics, m.metricsErr
}

type stubNews struct {
	articles []types.NewsArticle
	err      error
}

func (n *stubNews) RecentNews(_ context.Context, _ string, limit int) ([]types.NewsArticle, error) {
	if n.err != nil {
		return nil, n.err
	}
	if len(n.articles) > limit {
		return n.articles[:limit], nil
	}
	return n.articles, nil
}

// scriptedCompleter answers synthesis prompts with synthResponse and
// everything else with plainResponse.
type scriptedCompleter struct {
	plainResponse string
	synthResponse string
	err           error
}

func (c *scriptedCompleter) Complete(_ context.Context, _ string, prompt string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	if strings.Contains(prompt, "single JSON object") {
		return c.synthResponse, nil
	}
	return c.plainResponse, nil
}

func fptr(v float64) *float64 { return &v }

func risingCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)*2
	}
	return closes
}

func testArticles(n int) []types.NewsArticle {
	out := make([]types.NewsArticle, n)
	for i := range out {
		out[i] = types.NewsArticle{
			Title:  fmt.Sprintf("Headline %d", i+1),
			URL:    fmt.Sprintf("https://example.com/%d", i+1),
			Source: "Example Wire",
			Ticker: "AAPL",
		}
	}
	return out
}

func healthyMarket() *stubMarket {
	return &stubMarket{
		info: types.StockInfo{
			Ticker:       "AAPL",
			CompanyName:  "Apple Inc.",
			CurrentPrice: fptr(187.5),
			PERatio:      fptr(29.4),
		},
		history: types.PriceHistory{Ticker: "AAPL", Closes: risingCloses(60)},
		metrics: types.FinancialMetrics{Ticker: "AAPL", EPS: fptr(6.42)},
	}
}

func TestRunProducesFullInsight(t *testing.T) {
	completer := &scriptedCompleter{
		plainResponse: "Coverage is constructive.",
		synthResponse: `{"stance":"buy","confidence":"high","summary":"Strong setup.","rationale":"Uptrend with positive coverage.","key_drivers":["momentum"],"risks":["valuation"],"catalysts":["earnings"]}`,
	}
	p := New(healthyMarket(), &stubNews{articles: testArticles(8)}, completer, DefaultConfig())

	insight, err := p.Run(context.Background(), "AAPL", "analyze AAPL", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if insight.Stance != types.StanceBuy {
		t.Errorf("stance: got %s, want BUY", insight.Stance)
	}
	if insight.Confidence != types.ConfidenceHigh {
		t.Errorf("confidence: got %s, want HIGH", insight.Confidence)
	}
	if insight.Trend != types.TrendBullish {
		t.Errorf("trend: got %s, want bullish for rising closes", insight.Trend)
	}
	if len(insight.SupportLevels) != 3 || len(insight.ResistanceLevels) != 3 {
		t.Errorf("levels: got %d support / %d resistance, want 3 each",
			len(insight.SupportLevels), len(insight.ResistanceLevels))
	}
	if len(insight.Sources) != 5 {
		t.Errorf("sources: got %d, want cap of 5", len(insight.Sources))
	}
	if len(insight.AgentTraces) != 3 {
		t.Fatalf("traces: got %d, want 3", len(insight.AgentTraces))
	}
	wantAgents := []string{types.AgentNews, types.AgentPrice, types.AgentSynthesis}
	for i, tr := range insight.AgentTraces {
		if tr.AgentType != wantAgents[i] {
			t.Errorf("trace %d: got agent %q, want %q", i, tr.AgentType, wantAgents[i])
		}
		if !tr.Success {
			t.Errorf("trace %s: expected success", tr.AgentType)
		}
		if len(tr.Steps) == 0 {
			t.Errorf("trace %s: no steps recorded", tr.AgentType)
		}
	}
	if insight.Summary != "Strong setup." {
		t.Errorf("summary: got %q", insight.Summary)
	}
}

func TestRunDegradesWhenStockInfoFails(t *testing.T) {
	market := &stubMarket{infoErr: errors.New("quote lookup failed")}
	p := New(market, &stubNews{}, &scriptedCompleter{}, DefaultConfig())

	insight, err := p.Run(context.Background(), "XXXX", "analyze XXXX", 3)
	if err != nil {
		t.Fatalf("degraded path must not error: %v", err)
	}
	if insight.Stance != types.StanceHold || insight.Confidence != types.ConfidenceLow {
		t.Errorf("got %s/%s, want HOLD/LOW", insight.Stance, insight.Confidence)
	}
	if !strings.Contains(insight.Summary, "Unable to fetch data for XXXX") {
		t.Errorf("summary does not explain the failure: %q", insight.Summary)
	}
	if len(insight.AgentTraces) != 0 {
		t.Errorf("degraded insight must not carry traces, got %d", len(insight.AgentTraces))
	}
}

func TestRunFallsBackWhenLLMFails(t *testing.T) {
	completer := &scriptedCompleter{err: errors.New("provider unavailable")}
	p := New(healthyMarket(), &stubNews{articles: testArticles(2)}, completer, DefaultConfig())

	insight, err := p.Run(context.Background(), "AAPL", "analyze AAPL", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insight.Stance != types.StanceHold || insight.Confidence != types.ConfidenceMedium {
		t.Errorf("fallback stance: got %s/%s, want HOLD/MEDIUM", insight.Stance, insight.Confidence)
	}
	if insight.Rationale == "" {
		t.Error("fallback must still carry a rationale")
	}
	var synthTrace *types.AgentTrace
	for i := range insight.AgentTraces {
		if insight.AgentTraces[i].AgentType == types.AgentSynthesis {
			synthTrace = &insight.AgentTraces[i]
		}
	}
	if synthTrace == nil {
		t.Fatal("synthesis trace missing")
	}
	if synthTrace.Success {
		t.Error("synthesis trace must record the LLM failure")
	}
}

func TestRunDefaultsUnknownEnums(t *testing.T) {
	completer := &scriptedCompleter{
		plainResponse: "ok",
		synthResponse: `{"stance":"accumulate aggressively","confidence":"certain","summary":"s","rationale":"r"}`,
	}
	p := New(healthyMarket(), &stubNews{articles: testArticles(1)}, completer, DefaultConfig())

	insight, err := p.Run(context.Background(), "AAPL", "", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insight.Stance != types.StanceHold {
		t.Errorf("unknown stance must map to HOLD, got %s", insight.Stance)
	}
	if insight.Confidence != types.ConfidenceMedium {
		t.Errorf("unknown confidence must map to MEDIUM, got %s", insight.Confidence)
	}
}

func TestRunSurvivesNewsAndHistoryFailure(t *testing.T) {
	market := healthyMarket()
	market.historyErr = errors.New("chart unavailable")
	completer := &scriptedCompleter{
		plainResponse: "ok",
		synthResponse: `{"stance":"hold","confidence":"low","summary":"thin data","rationale":"partial inputs"}`,
	}
	p := New(market, &stubNews{err: errors.New("scrape blocked")}, completer, DefaultConfig())

	insight, err := p.Run(context.Background(), "AAPL", "analyze AAPL", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insight.Trend != types.TrendNeutral {
		t.Errorf("no history must yield neutral trend, got %s", insight.Trend)
	}
	if len(insight.Sources) != 0 {
		t.Errorf("no articles must yield no sources, got %d", len(insight.Sources))
	}
	var priceTrace *types.AgentTrace
	for i := range insight.AgentTraces {
		if insight.AgentTraces[i].AgentType == types.AgentPrice {
			priceTrace = &insight.AgentTraces[i]
		}
	}
	if priceTrace == nil {
		t.Fatal("price trace missing")
	}
	if priceTrace.Success {
		t.Error("price trace must record the history failure")
	}
}

package research

import (
	"context"
	"fmt"
	"time"

	"stock-research-agent/internal/interfaces"
	"stock-research-agent/internal/llm"
	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/ta"
	"stock-research-agent/internal/trace"
	"stock-research-agent/internal/types"
)

// Config bounds the pipeline's data gathering.
type Config struct {
	HistoryDays    int // price history window
	NewsFetched    int // articles fetched per ticker
	NewsTopSources int // articles retained as citable sources
}

func DefaultConfig() Config {
	return Config{HistoryDays: 30, NewsFetched: 10, NewsTopSources: 5}
}

// Pipeline runs the sequential research steps for one ticker: stock info,
// news + summary, price history + technicals, financial metrics, synthesis.
type Pipeline struct {
	market    interfaces.MarketData
	news      interfaces.NewsProvider
	completer interfaces.Completer
	cfg       Config
}

var _ interfaces.Pipeline = (*Pipeline)(nil)

func New(market interfaces.MarketData, news interfaces.NewsProvider, completer interfaces.Completer, cfg Config) *Pipeline {
	if cfg.HistoryDays == 0 {
		cfg = DefaultConfig()
	}
	return &Pipeline{market: market, news: news, completer: completer, cfg: cfg}
}

// Run executes all stages in sequence. A stock-info failure short-circuits
// into a degraded insight (HOLD/LOW); failures in later stages degrade that
// stage only. Run never returns an error for collaborator failures.
func (p *Pipeline) Run(ctx context.Context, ticker, query string, maxIterations int) (types.TickerInsight, error) {
	ctx, span := trace.StartSpan(ctx, "research.Run")
	defer span.End()

	if maxIterations <= 0 {
		maxIterations = 3
	}

	// Step 1: stock info. Failure here is a valid degraded result.
	info, err := p.market.StockInfo(ctx, ticker)
	if err != nil {
		logger.Warn(ctx, "Stock info unavailable, returning degraded insight", "ticker", ticker, "error", err)
		return degradedInsight(ticker), nil
	}

	// Step 2: news fetch + LLM summary.
	newsTrace, newsSummary, sources, articleCount := p.newsStage(ctx, ticker)

	// Step 3: price history + technical levels.
	priceTrace, tech := p.priceStage(ctx, ticker, info)

	// Step 4: financial metrics. No LLM call, no trace.
	metrics, err := p.market.FinancialMetrics(ctx, ticker)
	if err != nil {
		logger.Warn(ctx, "Financial metrics unavailable", "ticker", ticker, "error", err)
		metrics = types.FinancialMetrics{Ticker: ticker}
	}

	// Step 5: synthesis.
	synthTrace, synth := p.synthesisStage(ctx, synthesisInput{
		Ticker:       ticker,
		Query:        query,
		Info:         info,
		NewsSummary:  newsSummary,
		TechSummary:  tech.summary,
		Trend:        tech.trend,
		Support:      tech.support,
		Resistance:   tech.resistance,
		Metrics:      metrics,
		ArticleCount: articleCount,
	})

	insight := types.TickerInsight{
		Ticker:           ticker,
		CompanyName:      info.CompanyName,
		CurrentPrice:     info.CurrentPrice,
		MarketCap:        info.MarketCap,
		PERatio:          info.PERatio,
		FiftyTwoWeekHigh: info.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  info.FiftyTwoWeekLow,
		SupportLevels:    tech.support,
		ResistanceLevels: tech.resistance,
		Trend:            tech.trend,
		Stance:           types.ParseStance(synth.Stance),
		Confidence:       types.ParseConfidence(synth.Confidence),
		Summary:          synth.Summary,
		Rationale:        synth.Rationale,
		KeyDrivers:       synth.KeyDrivers,
		Risks:            synth.Risks,
		Catalysts:        synth.Catalysts,
		Sources:          sources,
		AgentTraces:      []types.AgentTrace{newsTrace, priceTrace, synthTrace},
		AnalyzedAt:       time.Now(),
	}

	logger.Recommendation(ctx, ticker, string(insight.Stance), string(insight.Confidence), insight.Summary)
	return insight, nil
}

func (p *Pipeline) newsStage(ctx context.Context, ticker string) (types.AgentTrace, string, []types.SourceInfo, int) {
	start := time.Now()

	articles, err := p.news.RecentNews(ctx, ticker, p.cfg.NewsFetched)
	if err != nil {
		logger.Warn(ctx, "News fetch failed", "ticker", ticker, "error", err)
		articles = nil
	}

	sources := make([]types.SourceInfo, 0, p.cfg.NewsTopSources)
	for _, a := range articles {
		sources = append(sources, types.SourceInfo{
			URL:         a.URL,
			Title:       a.Title,
			PublishedAt: a.PublishedAt,
			Snippet:     a.Content,
		})
		if len(sources) == p.cfg.NewsTopSources {
			break
		}
	}

	summary := newsFallback(ticker, articles)
	llmOK := false
	if len(articles) > 0 {
		if out, err := p.completer.Complete(ctx, analystSystem, newsPrompt(ticker, articles)); err == nil && out != "" {
			summary = out
			llmOK = true
		} else if err != nil {
			logger.Warn(ctx, "News summarization failed, using fallback", "ticker", ticker, "error", err)
		}
	}

	latency := msSince(start)
	step := types.AgentStep{
		StepNumber:  1,
		Thought:     fmt.Sprintf("Gather recent news for %s and distill sentiment", ticker),
		Action:      fmt.Sprintf("Fetched up to %d articles, summarized via LLM=%t", p.cfg.NewsFetched, llmOK),
		Observation: summary,
		Sources:     sources,
		LatencyMS:   latency,
	}
	return types.AgentTrace{
		AgentType:      types.AgentNews,
		Ticker:         ticker,
		Steps:          []types.AgentStep{step},
		Success:        true,
		TotalLatencyMS: latency,
	}, summary, sources, len(articles)
}

type technicals struct {
	trend      types.Trend
	support    []float64
	resistance []float64
	summary    string
}

func (p *Pipeline) priceStage(ctx context.Context, ticker string, info types.StockInfo) (types.AgentTrace, technicals) {
	start := time.Now()

	tech := technicals{trend: types.TrendNeutral}
	hist, err := p.market.PriceHistory(ctx, ticker, p.cfg.HistoryDays)
	if err != nil {
		logger.Warn(ctx, "Price history failed", "ticker", ticker, "error", err)
		latency := msSince(start)
		tech.summary = fmt.Sprintf("Price history unavailable for %s.", ticker)
		return types.AgentTrace{
			AgentType: types.AgentPrice,
			Ticker:    ticker,
			Steps: []types.AgentStep{{
				StepNumber:  1,
				Thought:     fmt.Sprintf("Derive trend and key levels for %s", ticker),
				Action:      fmt.Sprintf("Fetch %d days of price history", p.cfg.HistoryDays),
				Observation: tech.summary,
				LatencyMS:   latency,
			}},
			Success:        false,
			TotalLatencyMS: latency,
		}, tech
	}

	ma20 := ta.SMA(hist.Closes, 20)
	ma50 := ta.SMA(hist.Closes, 50)
	tech.trend = types.Trend(ta.ClassifyTrend(ma20, ma50))
	tech.support = ta.SupportLevels(hist.Closes, 3)
	tech.resistance = ta.ResistanceLevels(hist.Closes, 3)
	rsi := ta.RSI(hist.Closes, 14)

	var price float64
	if info.CurrentPrice != nil {
		price = *info.CurrentPrice
	}

	tech.summary = technicalFallback(ticker, tech.trend, tech.support, tech.resistance)
	llmOK := false
	if out, err := p.completer.Complete(ctx, analystSystem, technicalPrompt(ticker, tech.trend, price, tech.support, tech.resistance, rsi)); err == nil && out != "" {
		tech.summary = out
		llmOK = true
	} else if err != nil {
		logger.Warn(ctx, "Technical summary failed, using fallback", "ticker", ticker, "error", err)
	}

	latency := msSince(start)
	step := types.AgentStep{
		StepNumber:  1,
		Thought:     fmt.Sprintf("Derive trend and key levels for %s", ticker),
		Action:      fmt.Sprintf("Computed MA20/MA50 trend over %d bars, summarized via LLM=%t", len(hist.Closes), llmOK),
		Observation: tech.summary,
		LatencyMS:   latency,
	}
	return types.AgentTrace{
		AgentType:      types.AgentPrice,
		Ticker:         ticker,
		Steps:          []types.AgentStep{step},
		Success:        true,
		TotalLatencyMS: latency,
	}, tech
}

func (p *Pipeline) synthesisStage(ctx context.Context, in synthesisInput) (types.AgentTrace, synthesisResult) {
	start := time.Now()

	synth := synthesisFallback(in)
	llmOK := false
	if out, err := p.completer.Complete(ctx, analystSystem, synthesisPrompt(in)); err != nil {
		logger.Warn(ctx, "Synthesis call failed, using fallback", "ticker", in.Ticker, "error", err)
	} else {
		var parsed synthesisResult
		if llm.UnmarshalLoose(out, &parsed) {
			synth = parsed
			llmOK = true
		} else {
			logger.Warn(ctx, "Unparseable synthesis response, using fallback", "ticker", in.Ticker, "response_length", len(out))
		}
	}

	latency := msSince(start)
	step := types.AgentStep{
		StepNumber:  1,
		Thought:     fmt.Sprintf("Synthesize all findings for %s into a recommendation", in.Ticker),
		Action:      fmt.Sprintf("Combined news, technicals and fundamentals, synthesized via LLM=%t", llmOK),
		Observation: synth.Summary,
		LatencyMS:   latency,
	}
	return types.AgentTrace{
		AgentType:      types.AgentSynthesis,
		Ticker:         in.Ticker,
		Steps:          []types.AgentStep{step},
		Success:        llmOK,
		TotalLatencyMS: latency,
	}, synth
}

// DegradedRationale marks insights produced without market data. Callers key
// degraded-result handling off this value.
const DegradedRationale = "Data unavailable"

// degradedInsight is the minimal valid result when stock info cannot be
// fetched: HOLD with low confidence.
func degradedInsight(ticker string) types.TickerInsight {
	return types.TickerInsight{
		Ticker:      ticker,
		CompanyName: ticker,
		Trend:       types.TrendNeutral,
		Stance:      types.StanceHold,
		Confidence:  types.ConfidenceLow,
		Summary:     fmt.Sprintf("Unable to fetch data for %s. The ticker may be invalid or data is temporarily unavailable.", ticker),
		Rationale:   DegradedRationale,
		AnalyzedAt:  time.Now(),
	}
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

package types

import (
	"strings"
	"time"
)

// Stance is the recommendation produced for a ticker.
type Stance string

const (
	StanceBuy  Stance = "BUY"
	StanceHold Stance = "HOLD"
	StanceSell Stance = "SELL"
)

// ParseStance maps free-form LLM output to a Stance, defaulting to HOLD.
func ParseStance(s string) Stance {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return StanceBuy
	case "SELL":
		return StanceSell
	default:
		return StanceHold
	}
}

// Confidence is the qualitative certainty attached to a stance.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// ParseConfidence maps free-form LLM output to a Confidence, defaulting to MEDIUM.
func ParseConfidence(s string) Confidence {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH":
		return ConfidenceHigh
	case "LOW":
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

// Trend classifies recent price action.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// StockInfo is a point-in-time quote snapshot. Nil fields were unavailable.
type StockInfo struct {
	Ticker           string   `json:"ticker"`
	CompanyName      string   `json:"company_name"`
	CurrentPrice     *float64 `json:"current_price"`
	MarketCap        *float64 `json:"market_cap"`
	PERatio          *float64 `json:"pe_ratio"`
	FiftyTwoWeekHigh *float64 `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  *float64 `json:"fifty_two_week_low"`
}

// PriceHistory is a bounded window of daily closes, oldest first.
type PriceHistory struct {
	Ticker string    `json:"ticker"`
	Closes []float64 `json:"closes"`
	Highs  []float64 `json:"highs"`
	Lows   []float64 `json:"lows"`
}

// FinancialMetrics holds fundamentals beyond the quote snapshot.
type FinancialMetrics struct {
	Ticker        string   `json:"ticker"`
	EPS           *float64 `json:"eps"`
	PERatio       *float64 `json:"pe_ratio"`
	ProfitMargin  *float64 `json:"profit_margin"`
	RevenueGrowth *float64 `json:"revenue_growth"`
}

// NewsArticle is one scraped headline, optionally with body text.
type NewsArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Content     string `json:"content,omitempty"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at,omitempty"`
	Ticker      string `json:"ticker"`
}

// SourceInfo is a citation attached to an insight or a trace step.
type SourceInfo struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	PublishedAt string `json:"published_at,omitempty"`
	Snippet     string `json:"snippet,omitempty"`
}

// AgentStep is one reasoning step inside an AgentTrace.
type AgentStep struct {
	StepNumber  int          `json:"step_number"`
	Thought     string       `json:"thought"`
	Action      string       `json:"action"`
	Observation string       `json:"observation"`
	Sources     []SourceInfo `json:"sources,omitempty"`
	LatencyMS   float64      `json:"latency_ms"`
}

// AgentTrace records what one pipeline stage did for one ticker.
type AgentTrace struct {
	AgentType      string      `json:"agent_type"`
	Ticker         string      `json:"ticker"`
	Steps          []AgentStep `json:"steps"`
	Success        bool        `json:"success"`
	TotalLatencyMS float64     `json:"total_latency_ms"`
}

// Agent type tags used in traces and the /agents listing.
const (
	AgentNews      = "news"
	AgentPrice     = "price"
	AgentSynthesis = "synthesis"
)

// TickerInsight is the completed analysis for one ticker.
type TickerInsight struct {
	Ticker           string       `json:"ticker"`
	CompanyName      string       `json:"company_name"`
	CurrentPrice     *float64     `json:"current_price"`
	MarketCap        *float64     `json:"market_cap"`
	PERatio          *float64     `json:"pe_ratio"`
	FiftyTwoWeekHigh *float64     `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  *float64     `json:"fifty_two_week_low"`
	SupportLevels    []float64    `json:"support_levels"`
	ResistanceLevels []float64    `json:"resistance_levels"`
	Trend            Trend        `json:"trend"`
	Stance           Stance       `json:"stance"`
	Confidence       Confidence   `json:"confidence"`
	Summary          string       `json:"summary"`
	Rationale        string       `json:"rationale"`
	KeyDrivers       []string     `json:"key_drivers"`
	Risks            []string     `json:"risks"`
	Catalysts        []string     `json:"catalysts"`
	Sources          []SourceInfo `json:"sources"`
	AgentTraces      []AgentTrace `json:"agent_traces"`
	AnalyzedAt       time.Time    `json:"analyzed_at"`
}

// CorrectionResult is the strict JSON contract returned by the corrector.
type CorrectionResult struct {
	IsMisspelled  bool   `json:"is_misspelled"`
	OriginalInput string `json:"original_input"`
	CorrectedName string `json:"corrected_name,omitempty"`
	Ticker        string `json:"ticker,omitempty"`
	Confidence    string `json:"confidence"`
	Explanation   string `json:"explanation,omitempty"`
}

// Suggestion is one company/ticker candidate surfaced to the user.
type Suggestion struct {
	CompanyName string `json:"company_name"`
	Ticker      string `json:"ticker"`
}

// ConfirmationPrompt asks the caller to confirm a correction before research runs.
type ConfirmationPrompt struct {
	Type           string       `json:"type"`
	Message        string       `json:"message"`
	Suggestion     *Suggestion  `json:"suggestion,omitempty"`
	Suggestions    []Suggestion `json:"suggestions,omitempty"`
	ConversationID string       `json:"conversation_id"`
}

// AnalysisRequest is the inbound analyze call.
type AnalysisRequest struct {
	Query                string   `json:"query"`
	MaxIterations        int      `json:"max_iterations,omitempty"`
	TimeoutSeconds       int      `json:"timeout_seconds,omitempty"`
	ConversationID       string   `json:"conversation_id,omitempty"`
	ConfirmationResponse string   `json:"confirmation_response,omitempty"`
	Tickers              []string `json:"tickers,omitempty"`
}

// AnalysisResponse is the aggregate returned to the caller.
type AnalysisResponse struct {
	RequestID          string              `json:"request_id"`
	Query              string              `json:"query"`
	Insights           []TickerInsight     `json:"insights"`
	TotalLatencyMS     float64             `json:"total_latency_ms"`
	TickersAnalyzed    []string            `json:"tickers_analyzed"`
	AgentsUsed         []string            `json:"agents_used"`
	Success            bool                `json:"success"`
	NeedsConfirmation  bool                `json:"needs_confirmation"`
	ConfirmationPrompt *ConfirmationPrompt `json:"confirmation_prompt,omitempty"`
	Message            string              `json:"message,omitempty"`
	Warnings           []string            `json:"warnings,omitempty"`
	Errors             []string            `json:"errors,omitempty"`
	StartedAt          time.Time           `json:"started_at"`
	CompletedAt        time.Time           `json:"completed_at"`
}

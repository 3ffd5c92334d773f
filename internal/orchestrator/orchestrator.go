package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"stock-research-agent/internal/conversation"
	"stock-research-agent/internal/corrector"
	"stock-research-agent/internal/format"
	"stock-research-agent/internal/interfaces"
	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/research"
	"stock-research-agent/internal/resolver"
	"stock-research-agent/internal/status"
	"stock-research-agent/internal/trace"
	"stock-research-agent/internal/types"
)

var (
	ErrNoTickers  = errors.New("no tickers could be resolved from the query")
	ErrTimeout    = errors.New("analysis timed out")
	ErrNoInsights = errors.New("no insights could be produced")
)

const maxSuggestions = 3

// Config bounds a single analyze call.
type Config struct {
	MaxIterations  int
	TimeoutSeconds int
}

func DefaultConfig() Config {
	return Config{MaxIterations: 3, TimeoutSeconds: 60}
}

// Orchestrator turns a natural-language query into an aggregated analysis.
// It owns ticker resolution, the confirmation flow and the per-ticker
// research fan-out.
type Orchestrator struct {
	pipeline      interfaces.Pipeline
	corrector     *corrector.Corrector
	resolver      *resolver.Resolver
	conversations conversation.Store
	statuses      *status.Store
	cfg           Config
}

var _ interfaces.Analyzer = (*Orchestrator)(nil)

func New(pipeline interfaces.Pipeline, c *corrector.Corrector, r *resolver.Resolver, conversations conversation.Store, statuses *status.Store, cfg Config) *Orchestrator {
	if cfg.TimeoutSeconds == 0 {
		cfg = DefaultConfig()
	}
	return &Orchestrator{
		pipeline:      pipeline,
		corrector:     c,
		resolver:      r,
		conversations: conversations,
		statuses:      statuses,
		cfg:           cfg,
	}
}

// Analyze handles one analyze request end to end. Confirmation turns return
// early with NeedsConfirmation set and no insights.
func (o *Orchestrator) Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResponse, error) {
	ctx, span := trace.StartSpan(ctx, "orchestrator.Analyze")
	defer span.End()

	requestID := uuid.NewString()
	started := time.Now()
	o.statuses.Begin(requestID)

	resp := &types.AnalysisResponse{
		RequestID: requestID,
		Query:     req.Query,
		StartedAt: started,
	}

	o.statuses.Step(requestID, "resolving_tickers")
	tickers, earlyResp, err := o.resolveTickers(ctx, req, resp)
	if err != nil {
		o.statuses.Fail(requestID, err.Error())
		return nil, err
	}
	if earlyResp != nil {
		o.finish(earlyResp, started)
		o.statuses.Complete(requestID)
		return format.Response(earlyResp), nil
	}

	o.statuses.Step(requestID, "running_research")
	insights, warnings, researchErrs, err := o.research(ctx, req, tickers)
	if err != nil {
		o.statuses.Fail(requestID, err.Error())
		return nil, err
	}

	resp.Insights = insights
	resp.TickersAnalyzed = tickers
	resp.AgentsUsed = []string{types.AgentNews, types.AgentPrice, types.AgentSynthesis}
	resp.Success = true
	resp.Warnings = warnings
	resp.Errors = researchErrs
	o.finish(resp, started)

	o.statuses.Complete(requestID)
	logger.Info(ctx, "Analysis complete",
		"request_id", requestID,
		"tickers", tickers,
		"insights", len(insights),
		"latency_ms", resp.TotalLatencyMS,
	)
	return format.Response(resp), nil
}

// resolveTickers picks the tickers to research. A non-nil earlyResp means the
// turn ends without research: a confirmation prompt or a clarification.
func (o *Orchestrator) resolveTickers(ctx context.Context, req types.AnalysisRequest, resp *types.AnalysisResponse) (tickers []string, earlyResp *types.AnalysisResponse, err error) {
	// Explicit tickers bypass resolution and the confirmation flow.
	if len(req.Tickers) > 0 {
		return normalizeTickers(req.Tickers), nil, nil
	}

	// A conversation ID means this turn answers a pending confirmation.
	if req.ConversationID != "" {
		return o.resumeConversation(ctx, req, resp)
	}

	// Fresh query: misspelling detection first, then direct resolution.
	corrections := usableCorrections(o.corrector.DetectAndCorrectMultiple(ctx, req.Query))
	if len(corrections) > 0 {
		early, err := o.confirmationTurn(ctx, req.Query, resp, corrections)
		return nil, early, err
	}

	resolved, unresolved := o.resolver.Resolve(ctx, req.Query)

	// Unresolved names pause the turn for confirmation before any research
	// runs, even when other tickers resolved alongside them.
	for _, name := range unresolved {
		suggestions := o.resolver.FindSuggestions(name, maxSuggestions)
		if len(suggestions) == 0 {
			continue
		}
		early, err := o.suggestionTurn(ctx, req.Query, resp, name, suggestions)
		return nil, early, err
	}

	if len(resolved) > 0 {
		return resolved, nil, nil
	}
	return nil, nil, ErrNoTickers
}

func (o *Orchestrator) resumeConversation(ctx context.Context, req types.AnalysisRequest, resp *types.AnalysisResponse) ([]string, *types.AnalysisResponse, error) {
	res, err := o.conversations.Resolve(ctx, req.ConversationID, req.ConfirmationResponse)
	if err != nil {
		return nil, nil, fmt.Errorf("conversation %s: %w", req.ConversationID, err)
	}

	if res.Status == conversation.StateConfirmed {
		return res.Tickers, nil, nil
	}

	// Rejected: ask the user to restate the company or ticker.
	resp.Success = false
	resp.Message = res.Message
	return nil, resp, nil
}

func (o *Orchestrator) confirmationTurn(ctx context.Context, query string, resp *types.AnalysisResponse, corrections []types.CorrectionResult) (*types.AnalysisResponse, error) {
	pending := make([]types.Suggestion, 0, len(corrections))
	for _, c := range corrections {
		pending = append(pending, types.Suggestion{CompanyName: c.CorrectedName, Ticker: c.Ticker})
	}

	conv, err := o.conversations.Create(ctx, query, pending)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	prompt := &types.ConfirmationPrompt{
		Type:           "misspelling",
		Message:        corrector.ConfirmationMessage(corrections[0]),
		ConversationID: conv.ID,
	}
	if len(pending) == 1 {
		prompt.Suggestion = &pending[0]
	} else {
		prompt.Suggestions = pending
		prompt.Message = multiCorrectionMessage(corrections)
	}

	resp.Success = true
	resp.NeedsConfirmation = true
	resp.ConfirmationPrompt = prompt
	resp.Message = prompt.Message
	return resp, nil
}

func (o *Orchestrator) suggestionTurn(ctx context.Context, query string, resp *types.AnalysisResponse, name string, suggestions []types.Suggestion) (*types.AnalysisResponse, error) {
	conv, err := o.conversations.Create(ctx, query, suggestions[:1])
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	prompt := &types.ConfirmationPrompt{
		Type: "suggestion",
		Message: fmt.Sprintf("I couldn't find %q. Did you mean **%s** (%s)? Reply Yes to analyze it, or No to try again.",
			name, suggestions[0].CompanyName, suggestions[0].Ticker),
		Suggestion:     &suggestions[0],
		Suggestions:    suggestions,
		ConversationID: conv.ID,
	}

	resp.Success = true
	resp.NeedsConfirmation = true
	resp.ConfirmationPrompt = prompt
	resp.Message = prompt.Message
	return resp, nil
}

// research fans out one pipeline run per ticker and waits for all of them or
// the deadline, whichever comes first. Partial results are never returned on
// timeout.
func (o *Orchestrator) research(ctx context.Context, req types.AnalysisRequest, tickers []string) (insights []types.TickerInsight, warnings, errs []string, err error) {
	timeout := o.cfg.TimeoutSeconds
	if req.TimeoutSeconds > 0 {
		timeout = req.TimeoutSeconds
	}
	maxIterations := o.cfg.MaxIterations
	if req.MaxIterations > 0 {
		maxIterations = req.MaxIterations
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	results := make([]types.TickerInsight, len(tickers))
	runErrs := make([]error, len(tickers))

	var wg sync.WaitGroup
	for i, ticker := range tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			results[i], runErrs[i] = o.pipeline.Run(runCtx, ticker, req.Query, maxIterations)
		}(i, ticker)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-runCtx.Done():
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, nil, nil, ErrTimeout
		}
		return nil, nil, nil, runCtx.Err()
	}

	for i, ticker := range tickers {
		if runErrs[i] != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", ticker, runErrs[i]))
			continue
		}
		if results[i].Confidence == types.ConfidenceLow && results[i].Rationale == research.DegradedRationale {
			warnings = append(warnings, fmt.Sprintf("%s: data unavailable, degraded analysis", ticker))
		}
		insights = append(insights, results[i])
	}
	if len(insights) == 0 {
		return nil, nil, nil, ErrNoInsights
	}
	return insights, warnings, errs, nil
}

func (o *Orchestrator) finish(resp *types.AnalysisResponse, started time.Time) {
	resp.CompletedAt = time.Now()
	resp.TotalLatencyMS = float64(resp.CompletedAt.Sub(started).Microseconds()) / 1000.0
}

func normalizeTickers(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// usableCorrections drops corrections that lack the fields needed to build a
// confirmation prompt.
func usableCorrections(in []types.CorrectionResult) []types.CorrectionResult {
	var out []types.CorrectionResult
	for _, c := range in {
		if c.IsMisspelled && c.CorrectedName != "" && c.Ticker != "" {
			out = append(out, c)
		}
	}
	return out
}

func multiCorrectionMessage(corrections []types.CorrectionResult) string {
	var parts []string
	for _, c := range corrections {
		parts = append(parts, fmt.Sprintf("**%s** (%s)", c.CorrectedName, c.Ticker))
	}
	return fmt.Sprintf("I found possible misspellings. Did you mean %s? Reply Yes to analyze them, or No to try again.",
		strings.Join(parts, " and "))
}

package corrector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"stock-research-agent/internal/interfaces"
	"stock-research-agent/internal/llm"
	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/trace"
	"stock-research-agent/internal/types"
)

const systemPrompt = "You are a financial assistant that detects misspelled company names in stock research queries. Respond ONLY with strict JSON, no prose."

const promptTemplate = `Analyze this stock query for misspelled company names: "%s"

Rules:
- Valid ticker symbols (AAPL, MSFT, META) are NOT misspellings.
- Correctly spelled company names are NOT misspellings.
- Only flag words that are plausibly a misspelled public company name.

Examples:
Query: "matae" -> {"is_misspelled": true, "original_input": "matae", "corrected_name": "Meta Platforms Inc.", "ticker": "META", "confidence": "high", "explanation": "Likely misspelling of Meta"}
Query: "analyze AAPL" -> {"is_misspelled": false, "original_input": "analyze AAPL", "confidence": "high", "explanation": "AAPL is a valid ticker"}
Query: "mikrosoft stock" -> {"is_misspelled": true, "original_input": "mikrosoft", "corrected_name": "Microsoft Corporation", "ticker": "MSFT", "confidence": "high", "explanation": "Likely misspelling of Microsoft"}
Query: "tesla outlook" -> {"is_misspelled": false, "original_input": "tesla outlook", "confidence": "high", "explanation": "Tesla is correctly spelled"}

Respond with a single JSON object:
{"is_misspelled": bool, "original_input": string, "corrected_name": string or omitted, "ticker": string or omitted, "confidence": "high"|"medium"|"low", "explanation": string}`

const multiPromptTemplate = `Analyze this stock query for ALL misspelled company names: "%s"

Rules:
- Valid ticker symbols (AAPL, MSFT, META) are NOT misspellings.
- Correctly spelled company names are NOT misspellings.
- Report every suspected misspelling independently.

Respond with a single JSON object:
{"corrections": [{"is_misspelled": bool, "original_input": string, "corrected_name": string, "ticker": string, "confidence": "high"|"medium"|"low", "explanation": string}]}
Return {"corrections": []} when nothing is misspelled.`

// Corrector detects misspelled company names via a single LLM round-trip.
// It never errors: any transport or parse failure degrades to "no
// misspelling detected, low confidence". Retries are a caller concern.
type Corrector struct {
	completer interfaces.Completer
}

func New(completer interfaces.Completer) *Corrector {
	return &Corrector{completer: completer}
}

// DetectAndCorrect checks a query for a single suspected misspelling.
func (c *Corrector) DetectAndCorrect(ctx context.Context, query string) types.CorrectionResult {
	ctx, span := trace.StartSpan(ctx, "corrector.DetectAndCorrect")
	defer span.End()

	fallback := fallbackResult(query)

	out, err := c.completer.Complete(ctx, systemPrompt, fmt.Sprintf(promptTemplate, query))
	if err != nil {
		logger.Warn(ctx, "Correction call failed, assuming no misspelling", "error", err)
		return fallback
	}

	var result types.CorrectionResult
	if !llm.UnmarshalLoose(out, &result) {
		logger.Warn(ctx, "Unparseable correction response, assuming no misspelling", "response_length", len(out))
		return fallback
	}

	normalizeResult(&result, query)
	logger.Debug(ctx, "Correction result",
		"is_misspelled", result.IsMisspelled,
		"ticker", result.Ticker,
		"confidence", result.Confidence,
	)
	return result
}

// DetectAndCorrectMultiple reports every suspected misspelling in the query
// so all corrections can be confirmed in one turn.
func (c *Corrector) DetectAndCorrectMultiple(ctx context.Context, query string) []types.CorrectionResult {
	ctx, span := trace.StartSpan(ctx, "corrector.DetectAndCorrectMultiple")
	defer span.End()

	out, err := c.completer.Complete(ctx, systemPrompt, fmt.Sprintf(multiPromptTemplate, query))
	if err != nil {
		logger.Warn(ctx, "Multi-correction call failed, assuming no misspellings", "error", err)
		return nil
	}

	var wrapper struct {
		Corrections []types.CorrectionResult `json:"corrections"`
	}
	if !llm.UnmarshalLoose(out, &wrapper) {
		// Some models return a bare array.
		var list []types.CorrectionResult
		if err := json.Unmarshal([]byte(llm.StripFences(out)), &list); err != nil {
			logger.Warn(ctx, "Unparseable multi-correction response", "response_length", len(out))
			return nil
		}
		wrapper.Corrections = list
	}

	var results []types.CorrectionResult
	for i := range wrapper.Corrections {
		r := wrapper.Corrections[i]
		normalizeResult(&r, query)
		if r.IsMisspelled {
			results = append(results, r)
		}
	}
	return results
}

// ConfirmationMessage renders a user-facing prompt for one correction.
// Returns empty when the correction lacks a name or ticker: there is nothing
// meaningful to confirm.
func ConfirmationMessage(result types.CorrectionResult) string {
	if !result.IsMisspelled || result.CorrectedName == "" || result.Ticker == "" {
		return ""
	}

	switch strings.ToLower(result.Confidence) {
	case "high":
		return fmt.Sprintf("Did you mean **%s** (%s)? Reply Yes to analyze it, or No to try again.", result.CorrectedName, result.Ticker)
	case "medium":
		return fmt.Sprintf("I think you might mean **%s** (%s). Is that right? (Yes/No)", result.CorrectedName, result.Ticker)
	default:
		return fmt.Sprintf("I'm not sure, but did you possibly mean **%s** (%s)? (Yes/No)", result.CorrectedName, result.Ticker)
	}
}

func fallbackResult(query string) types.CorrectionResult {
	return types.CorrectionResult{
		IsMisspelled:  false,
		OriginalInput: query,
		Confidence:    "low",
		Explanation:   "correction unavailable",
	}
}

func normalizeResult(r *types.CorrectionResult, query string) {
	if r.OriginalInput == "" {
		r.OriginalInput = query
	}
	r.Ticker = strings.ToUpper(strings.TrimSpace(r.Ticker))
	r.Confidence = strings.ToLower(strings.TrimSpace(r.Confidence))
	switch r.Confidence {
	case "high", "medium", "low":
	default:
		r.Confidence = "low"
	}
}

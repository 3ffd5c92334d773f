package corrector

import (
	"context"
	"errors"
	"testing"

	"stock-research-agent/internal/types"
)

// stubCompleter returns a canned response or error.
type stubCompleter struct {
	response string
	err      error
}

func (s *stubCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	return s.response, s.err
}

func TestDetectAndCorrectMisspelling(t *testing.T) {
	stub := &stubCompleter{response: `{"is_misspelled": true, "original_input": "matae", "corrected_name": "Meta Platforms Inc.", "ticker": "meta", "confidence": "HIGH", "explanation": "Likely misspelling of Meta"}`}
	c := New(stub)

	result := c.DetectAndCorrect(context.Background(), "matae")
	if !result.IsMisspelled {
		t.Fatal("expected misspelling to be detected")
	}
	if result.Ticker != "META" {
		t.Errorf("expected ticker normalized to META, got %q", result.Ticker)
	}
	if result.Confidence != "high" {
		t.Errorf("expected confidence normalized to high, got %q", result.Confidence)
	}
}

func TestDetectAndCorrectFencedResponse(t *testing.T) {
	stub := &stubCompleter{response: "```json\n{\"is_misspelled\": true, \"original_input\": \"mikrosoft\", \"corrected_name\": \"Microsoft Corporation\", \"ticker\": \"MSFT\", \"confidence\": \"high\"}\n```"}
	c := New(stub)

	result := c.DetectAndCorrect(context.Background(), "mikrosoft stock")
	if !result.IsMisspelled || result.Ticker != "MSFT" {
		t.Fatalf("expected MSFT correction, got %+v", result)
	}
}

func TestDetectAndCorrectTransportFailure(t *testing.T) {
	stub := &stubCompleter{err: errors.New("connection refused")}
	c := New(stub)

	result := c.DetectAndCorrect(context.Background(), "analyze AAPL")
	if result.IsMisspelled {
		t.Error("transport failure must not report a misspelling")
	}
	if result.Confidence != "low" {
		t.Errorf("expected low confidence fallback, got %q", result.Confidence)
	}
	if result.OriginalInput != "analyze AAPL" {
		t.Errorf("fallback must echo the query, got %q", result.OriginalInput)
	}
}

func TestDetectAndCorrectGarbageResponse(t *testing.T) {
	stub := &stubCompleter{response: "I could not find any JSON to give you, sorry!"}
	c := New(stub)

	result := c.DetectAndCorrect(context.Background(), "matae")
	if result.IsMisspelled {
		t.Error("unparseable response must not report a misspelling")
	}
}

func TestDetectAndCorrectMultiple(t *testing.T) {
	stub := &stubCompleter{response: `{"corrections": [
		{"is_misspelled": true, "original_input": "aple", "corrected_name": "Apple Inc.", "ticker": "AAPL", "confidence": "high"},
		{"is_misspelled": false, "original_input": "tesla", "confidence": "high"},
		{"is_misspelled": true, "original_input": "mikrosoft", "corrected_name": "Microsoft Corporation", "ticker": "MSFT", "confidence": "medium"}
	]}`}
	c := New(stub)

	results := c.DetectAndCorrectMultiple(context.Background(), "aple tesla mikrosoft")
	if len(results) != 2 {
		t.Fatalf("expected 2 misspellings, got %d", len(results))
	}
	if results[0].Ticker != "AAPL" || results[1].Ticker != "MSFT" {
		t.Errorf("unexpected tickers: %+v", results)
	}
}

func TestConfirmationMessageMissingFields(t *testing.T) {
	result := types.CorrectionResult{
		IsMisspelled:  true,
		OriginalInput: "matae",
		Confidence:    "high",
	}
	if msg := ConfirmationMessage(result); msg != "" {
		t.Errorf("expected empty message when corrected_name/ticker missing, got %q", msg)
	}
}

func TestConfirmationMessageVariesByConfidence(t *testing.T) {
	base := types.CorrectionResult{
		IsMisspelled:  true,
		OriginalInput: "matae",
		CorrectedName: "Meta Platforms Inc.",
		Ticker:        "META",
	}

	seen := map[string]bool{}
	for _, conf := range []string{"high", "medium", "low"} {
		r := base
		r.Confidence = conf
		msg := ConfirmationMessage(r)
		if msg == "" {
			t.Fatalf("expected message for confidence %s", conf)
		}
		if seen[msg] {
			t.Errorf("expected distinct wording for confidence %s", conf)
		}
		seen[msg] = true
	}
}

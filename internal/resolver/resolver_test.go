package resolver

import (
	"context"
	"testing"
)

func TestResolveUppercaseTickers(t *testing.T) {
	r := New()
	ctx := context.Background()

	tickers, _ := r.Resolve(ctx, "Analyze AAPL and MSFT")
	if len(tickers) != 2 || tickers[0] != "AAPL" || tickers[1] != "MSFT" {
		t.Fatalf("expected [AAPL MSFT], got %v", tickers)
	}
}

func TestResolveDeduplicates(t *testing.T) {
	r := New()
	ctx := context.Background()

	tickers, _ := r.Resolve(ctx, "AAPL versus AAPL and apple")
	if len(tickers) != 1 || tickers[0] != "AAPL" {
		t.Fatalf("expected [AAPL] exactly once, got %v", tickers)
	}
}

func TestResolveStopWordsOnly(t *testing.T) {
	r := New()
	ctx := context.Background()

	for _, q := range []string{
		"WHAT SHOULD I BUY NOW",
		"tell me a good stock to buy",
		"IS IT TIME TO SELL",
	} {
		tickers, _ := r.Resolve(ctx, q)
		if len(tickers) != 0 {
			t.Errorf("query %q: expected no tickers, got %v", q, tickers)
		}
	}
}

func TestResolveCompanyNames(t *testing.T) {
	r := New()
	ctx := context.Background()

	cases := []struct {
		query  string
		expect []string
	}{
		{"analyze apple stock", []string{"AAPL"}},
		{"compare microsoft and google", []string{"MSFT", "GOOGL"}},
		{"what about bank of america today", []string{"BAC"}},
		{"research Meta Platforms Inc.", []string{"META"}},
	}

	for _, c := range cases {
		tickers, _ := r.Resolve(ctx, c.query)
		if len(tickers) != len(c.expect) {
			t.Errorf("query %q: expected %v, got %v", c.query, c.expect, tickers)
			continue
		}
		for i := range c.expect {
			if tickers[i] != c.expect[i] {
				t.Errorf("query %q: expected %v, got %v", c.query, c.expect, tickers)
				break
			}
		}
	}
}

func TestResolveNearExactMisspelling(t *testing.T) {
	r := New()
	ctx := context.Background()

	// One edit away resolves directly without a confirmation round-trip.
	tickers, _ := r.Resolve(ctx, "analyze microsofy stock")
	if len(tickers) != 1 || tickers[0] != "MSFT" {
		t.Fatalf("expected [MSFT], got %v", tickers)
	}
}

func TestResolveUnresolvedNames(t *testing.T) {
	r := New()
	ctx := context.Background()

	tickers, unresolved := r.Resolve(ctx, "analyze Tesslaa stock")
	if len(tickers) != 0 {
		t.Fatalf("expected no tickers, got %v", tickers)
	}
	if len(unresolved) != 1 || unresolved[0] != "Tesslaa" {
		t.Fatalf("expected unresolved [Tesslaa], got %v", unresolved)
	}
}

func TestResolveKeepsUnresolvedNamesAlongsideTickers(t *testing.T) {
	r := New()
	ctx := context.Background()

	tickers, unresolved := r.Resolve(ctx, "analyze AAPL and Tesslaa")
	if len(tickers) != 1 || tickers[0] != "AAPL" {
		t.Fatalf("expected [AAPL], got %v", tickers)
	}
	if len(unresolved) != 1 || unresolved[0] != "Tesslaa" {
		t.Fatalf("expected unresolved [Tesslaa], got %v", unresolved)
	}
}

func TestResolveIgnoresLowercaseLeftovers(t *testing.T) {
	r := New()
	ctx := context.Background()

	// Ordinary lowercase prose must not trigger a confirmation round-trip.
	_, unresolved := r.Resolve(ctx, "analyze AAPL momentum going into earnings")
	if len(unresolved) != 0 {
		t.Fatalf("expected no unresolved names, got %v", unresolved)
	}
}

func TestFindSuggestions(t *testing.T) {
	r := New()

	suggestions := r.FindSuggestions("tessla", 3)
	if len(suggestions) == 0 {
		t.Fatal("expected at least one suggestion")
	}
	if suggestions[0].Ticker != "TSLA" {
		t.Errorf("expected top suggestion TSLA, got %s", suggestions[0].Ticker)
	}
}

func TestFindSuggestionsNoMatch(t *testing.T) {
	r := New()

	if got := r.FindSuggestions("zzzzzqqq", 3); len(got) != 0 {
		t.Errorf("expected no suggestions, got %v", got)
	}
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Apple Inc.":          "apple",
		"Meta Platforms Inc.": "meta platforms",
		"Walmart":             "walmart",
		"Coca-Cola Co":        "cocacola",
	}
	for in, want := range cases {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

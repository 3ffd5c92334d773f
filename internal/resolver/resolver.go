package resolver

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/types"
)

var tickerPattern = regexp.MustCompile(`\b[A-Z]{1,5}\b`)

// Thresholds for fuzzy name matching. Resolution requires a near-exact hit;
// suggestions accept looser matches.
const (
	resolveSimilarity    = 0.8
	suggestionSimilarity = 0.6
)

var nameSuffixes = map[string]bool{
	"inc": true, "corp": true, "corporation": true, "company": true,
	"co": true, "ltd": true, "limited": true, "plc": true,
}

// Resolver maps free-text queries to canonical ticker symbols.
type Resolver struct{}

func New() *Resolver {
	return &Resolver{}
}

// Resolve extracts tickers from a query. It returns resolved tickers in
// first-seen order plus the company-name-like tokens it could not resolve.
// Never fails; empty results are valid.
func (r *Resolver) Resolve(ctx context.Context, query string) (tickers []string, unresolved []string) {
	seen := map[string]bool{}

	// Pass 1: uppercase tokens shaped like tickers.
	for _, tok := range tickerPattern.FindAllString(query, -1) {
		if tickerShapeStopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		tickers = append(tickers, tok)
	}

	// Pass 2: company-name phrases, greedy longest-window first.
	words, raw := splitWords(query)
	consumed := make([]bool, len(words))
	for size := 3; size >= 1; size-- {
		for i := 0; i+size <= len(words); i++ {
			if anyConsumed(consumed, i, size) {
				continue
			}
			phrase := strings.Join(words[i:i+size], " ")
			ticker, ok := r.lookupName(phrase)
			if !ok {
				continue
			}
			for j := i; j < i+size; j++ {
				consumed[j] = true
			}
			if !seen[ticker] {
				seen[ticker] = true
				tickers = append(tickers, ticker)
			}
		}
	}

	// Pass 3: leftover capitalized words that look like company names.
	// Lowercase leftovers are ordinary prose, not candidates.
	for i, w := range words {
		if consumed[i] || len(w) < 3 {
			continue
		}
		if !startsUpper(raw[i]) {
			continue
		}
		if queryStopWords[w] || tickerShapeStopWords[strings.ToUpper(w)] {
			continue
		}
		if seen[strings.ToUpper(w)] {
			continue
		}
		unresolved = append(unresolved, raw[i])
	}

	logger.Debug(ctx, "Query resolved", "query", query, "tickers", tickers, "unresolved", unresolved)
	return tickers, unresolved
}

// FindSuggestions fuzzy-matches a name against the known company table and
// returns the top n candidates by similarity. Empty when nothing clears the
// minimum similarity threshold.
func (r *Resolver) FindSuggestions(name string, n int) []types.Suggestion {
	norm := NormalizeName(name)
	if norm == "" || n <= 0 {
		return nil
	}

	type scored struct {
		name  string
		score float64
	}
	var candidates []scored
	for key := range companyToTicker {
		if s := similarity(norm, key); s >= suggestionSimilarity {
			candidates = append(candidates, scored{key, s})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].name < candidates[j].name
	})

	var out []types.Suggestion
	seen := map[string]bool{}
	for _, c := range candidates {
		ticker := companyToTicker[c.name]
		if seen[ticker] {
			continue
		}
		seen[ticker] = true
		out = append(out, types.Suggestion{CompanyName: titleCase(c.name), Ticker: ticker})
		if len(out) == n {
			break
		}
	}
	return out
}

// lookupName resolves a normalized name phrase to a ticker, exact first,
// then near-exact fuzzy.
func (r *Resolver) lookupName(phrase string) (string, bool) {
	norm := NormalizeName(phrase)
	if norm == "" {
		return "", false
	}
	if t, ok := companyToTicker[norm]; ok {
		return t, true
	}

	best, bestScore := "", 0.0
	for key := range companyToTicker {
		if s := similarity(norm, key); s > bestScore {
			best, bestScore = key, s
		}
	}
	if bestScore >= resolveSimilarity {
		return companyToTicker[best], true
	}
	return "", false
}

// NormalizeName lowercases a company name, strips punctuation and drops
// corporate suffixes ("inc", "ltd", ...).
func NormalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	words := strings.Fields(b.String())
	for len(words) > 1 && nameSuffixes[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}
	dist := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

// splitWords tokenizes a query. words carries the lowercased tokens used for
// matching; raw keeps the original casing for the name-likeness check.
func splitWords(query string) (words, raw []string) {
	for _, w := range strings.Fields(query) {
		w = strings.Trim(w, ".,!?;:'\"()[]")
		if w == "" {
			continue
		}
		raw = append(raw, w)
		words = append(words, strings.ToLower(w))
	}
	return words, raw
}

func startsUpper(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsUpper(r)
}

func anyConsumed(consumed []bool, start, size int) bool {
	for j := start; j < start+size; j++ {
		if consumed[j] {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

package news

import (
	"testing"
	"time"

	"stock-research-agent/internal/types"
)

func TestArticleCacheSetGet(t *testing.T) {
	cache := &articleCache{
		data: make(map[string]*cacheEntry),
		ttl:  1 * time.Minute,
	}

	articles := []types.NewsArticle{
		{Title: "Apple beats earnings", Ticker: "AAPL", Source: "YahooFinance"},
		{Title: "Apple guidance raised", Ticker: "AAPL", Source: "YahooFinance"},
	}
	cache.set("AAPL", articles)

	got, ok := cache.get("AAPL")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(got))
	}
	if got[0].Title != "Apple beats earnings" {
		t.Errorf("unexpected first article: %q", got[0].Title)
	}
}

func TestArticleCacheMiss(t *testing.T) {
	cache := &articleCache{
		data: make(map[string]*cacheEntry),
		ttl:  1 * time.Minute,
	}

	if _, ok := cache.get("MSFT"); ok {
		t.Error("expected cache miss for unknown ticker")
	}
}

func TestArticleCacheExpiry(t *testing.T) {
	cache := &articleCache{
		data: make(map[string]*cacheEntry),
		ttl:  10 * time.Millisecond,
	}

	cache.set("TSLA", []types.NewsArticle{{Title: "Tesla news", Ticker: "TSLA"}})
	time.Sleep(20 * time.Millisecond)

	if _, ok := cache.get("TSLA"); ok {
		t.Error("expected expired entry to miss")
	}

	cache.cleanup()
	if len(cache.data) != 0 {
		t.Errorf("expected cleanup to remove expired entries, %d remain", len(cache.data))
	}
}

func TestCapArticles(t *testing.T) {
	articles := []types.NewsArticle{
		{Title: "a"}, {Title: "b"}, {Title: "c"},
	}

	if got := capArticles(articles, 2); len(got) != 2 {
		t.Errorf("expected 2 articles, got %d", len(got))
	}
	if got := capArticles(articles, 5); len(got) != 3 {
		t.Errorf("expected all 3 articles, got %d", len(got))
	}
}

func TestDefaultServiceConfig(t *testing.T) {
	cfg := DefaultServiceConfig()

	if cfg.MaxArticles != 10 {
		t.Errorf("expected MaxArticles 10, got %d", cfg.MaxArticles)
	}
	if cfg.CacheDuration != 5*time.Minute {
		t.Errorf("unexpected cache duration %v", cfg.CacheDuration)
	}
}

package news

import (
	"context"
	"sync"
	"time"

	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/types"
)

// Service provides recent-news retrieval with caching
type Service struct {
	scraper *Scraper
	cache   *articleCache
	cfg     *ServiceConfig
}

// ServiceConfig configures the news service
type ServiceConfig struct {
	MaxArticles    int           // Maximum articles to scrape per ticker
	CacheDuration  time.Duration // How long to cache articles
	ScraperTimeout time.Duration // Timeout for scraping operations
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxArticles:    10,
		CacheDuration:  5 * time.Minute,
		ScraperTimeout: 15 * time.Second,
	}
}

// articleCache stores scraped articles temporarily
type articleCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
}

type cacheEntry struct {
	articles  []types.NewsArticle
	timestamp time.Time
}

// newArticleCache creates a new cache
func newArticleCache(ttl time.Duration) *articleCache {
	cache := &articleCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
	}

	// Start cleanup goroutine
	go cache.cleanupLoop()

	return cache
}

// get retrieves cached articles if still valid
func (c *articleCache) get(ticker string) ([]types.NewsArticle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[ticker]
	if !exists {
		return nil, false
	}

	if time.Since(entry.timestamp) > c.ttl {
		return nil, false
	}

	return entry.articles, true
}

// set stores articles in cache
func (c *articleCache) set(ticker string, articles []types.NewsArticle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[ticker] = &cacheEntry{
		articles:  articles,
		timestamp: time.Now(),
	}
}

// cleanupLoop periodically removes expired entries
func (c *articleCache) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

// cleanup removes expired entries
func (c *articleCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for ticker, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, ticker)
		}
	}
}

// NewService creates a new news service
func NewService(cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}

	return &Service{
		scraper: NewScraper(cfg.ScraperTimeout),
		cache:   newArticleCache(cfg.CacheDuration),
		cfg:     cfg,
	}
}

// RecentNews returns recent articles for a ticker (cached or fresh).
// Scrape failures produce an empty slice, not an error: missing news is a
// degraded state the caller can work with.
func (s *Service) RecentNews(ctx context.Context, ticker string, limit int) ([]types.NewsArticle, error) {
	if limit <= 0 || limit > s.cfg.MaxArticles {
		limit = s.cfg.MaxArticles
	}

	if cached, ok := s.cache.get(ticker); ok {
		logger.Info(ctx, "Using cached news", "ticker", ticker, "articles", len(cached))
		return capArticles(cached, limit), nil
	}

	logger.Info(ctx, "Fetching fresh news", "ticker", ticker)
	articles, err := s.scraper.ScrapeNews(ctx, ticker, s.cfg.MaxArticles)
	if err != nil {
		logger.ErrorWithErr(ctx, "Primary news scrape failed", err, "ticker", ticker)
	}

	// If no articles found, try Google News as fallback
	if len(articles) == 0 {
		logger.Info(ctx, "No articles from primary sources, trying Google News", "ticker", ticker)
		articles, err = s.scraper.ScrapeGoogleNews(ctx, ticker, s.cfg.MaxArticles)
		if err != nil {
			logger.ErrorWithErr(ctx, "Google News fallback failed", err, "ticker", ticker)
			return []types.NewsArticle{}, nil
		}
	}

	s.cache.set(ticker, articles)

	return capArticles(articles, limit), nil
}

// RefreshNews forces a refresh for a ticker (bypasses cache)
func (s *Service) RefreshNews(ctx context.Context, ticker string) ([]types.NewsArticle, error) {
	articles, err := s.scraper.ScrapeNews(ctx, ticker, s.cfg.MaxArticles)
	if err != nil {
		return nil, err
	}

	s.cache.set(ticker, articles)
	return articles, nil
}

// ClearCache removes all cached articles
func (s *Service) ClearCache() {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	s.cache.data = make(map[string]*cacheEntry)
}

// CachedTickers returns tickers with cached articles
func (s *Service) CachedTickers() []string {
	s.cache.mu.RLock()
	defer s.cache.mu.RUnlock()

	tickers := make([]string, 0, len(s.cache.data))
	for t := range s.cache.data {
		tickers = append(tickers, t)
	}
	return tickers
}

func capArticles(articles []types.NewsArticle, limit int) []types.NewsArticle {
	if len(articles) > limit {
		return articles[:limit]
	}
	return articles
}

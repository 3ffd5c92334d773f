package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/types"
)

// Scraper handles scraping news from multiple sources
type Scraper struct {
	sources []NewsSource
	timeout time.Duration
}

// NewsSource defines a news source configuration
type NewsSource struct {
	Name       string
	BaseURL    string
	SearchPath string // e.g., "/quote/{ticker}/news"
	Selectors  ArticleSelectors
	RateLimit  time.Duration
}

// ArticleSelectors defines CSS selectors for extracting article data
type ArticleSelectors struct {
	ArticleContainer string
	Title            string
	URL              string
	Content          string
	PublishedAt      string
}

// NewScraper creates a new news scraper with default sources
func NewScraper(timeout time.Duration) *Scraper {
	return &Scraper{
		sources: getDefaultSources(),
		timeout: timeout,
	}
}

// getDefaultSources returns a list of financial news sources to scrape
func getDefaultSources() []NewsSource {
	return []NewsSource{
		{
			Name:       "YahooFinance",
			BaseURL:    "https://finance.yahoo.com",
			SearchPath: "/quote/{ticker}/news",
			Selectors: ArticleSelectors{
				ArticleContainer: "li.stream-item, li.js-stream-content",
				Title:            "h3",
				URL:              "a",
				Content:          "p",
				PublishedAt:      "div.publishing, span.C(#959595)",
			},
			RateLimit: 1 * time.Second,
		},
		{
			Name:       "Finviz",
			BaseURL:    "https://finviz.com",
			SearchPath: "/quote.ashx?t={ticker}",
			Selectors: ArticleSelectors{
				ArticleContainer: "tr.news-table-row, #news-table tr",
				Title:            "a.tab-link-news",
				URL:              "a.tab-link-news",
				Content:          "",
				PublishedAt:      "td[align=right]",
			},
			RateLimit: 1 * time.Second,
		},
	}
}

// ScrapeNews fetches news articles for a ticker from all configured sources
func (s *Scraper) ScrapeNews(ctx context.Context, ticker string, maxArticles int) ([]types.NewsArticle, error) {
	logger.Info(ctx, "Starting news scraping", "ticker", ticker, "sources", len(s.sources))

	allArticles := []types.NewsArticle{}
	articlesPerSource := maxArticles / len(s.sources)
	if articlesPerSource < 1 {
		articlesPerSource = 1
	}

	for _, source := range s.sources {
		if len(allArticles) >= maxArticles {
			break
		}
		articles, err := s.scrapeSource(ctx, source, ticker, articlesPerSource)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to scrape source", err, "source", source.Name, "ticker", ticker)
			continue
		}
		allArticles = append(allArticles, articles...)

		// Rate limiting between sources
		time.Sleep(source.RateLimit)
	}

	if len(allArticles) > maxArticles {
		allArticles = allArticles[:maxArticles]
	}

	logger.Info(ctx, "News scraping completed", "ticker", ticker, "articles", len(allArticles))
	return allArticles, nil
}

// scrapeSource scrapes articles from a single news source
func (s *Scraper) scrapeSource(ctx context.Context, source NewsSource, ticker string, maxArticles int) ([]types.NewsArticle, error) {
	articles := []types.NewsArticle{}

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(source.BaseURL)),
		colly.MaxDepth(1),
		colly.Async(false),
	)

	c.SetRequestTimeout(s.timeout)

	// Set user agent to avoid being blocked
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	c.OnHTML(source.Selectors.ArticleContainer, func(e *colly.HTMLElement) {
		if len(articles) >= maxArticles {
			return
		}

		title := strings.TrimSpace(e.ChildText(source.Selectors.Title))
		if title == "" {
			return
		}

		articleURL := e.ChildAttr(source.Selectors.URL, "href")
		if articleURL == "" {
			return
		}

		// Make URL absolute
		if !strings.HasPrefix(articleURL, "http") {
			articleURL = source.BaseURL + articleURL
		}

		var content string
		if source.Selectors.Content != "" {
			content = strings.TrimSpace(e.ChildText(source.Selectors.Content))
		}
		publishedAt := strings.TrimSpace(e.ChildText(source.Selectors.PublishedAt))

		articles = append(articles, types.NewsArticle{
			Title:       title,
			URL:         articleURL,
			Content:     content,
			Source:      source.Name,
			PublishedAt: publishedAt,
			Ticker:      ticker,
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Scraping error", err, "source", source.Name, "url", r.Request.URL.String())
	})

	searchURL := source.BaseURL + strings.ReplaceAll(source.SearchPath, "{ticker}", strings.ToUpper(ticker))

	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", searchURL, err)
	}

	c.Wait()

	return articles, nil
}

// getDomain extracts domain from URL
func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// ScrapeGoogleNews searches Google News for ticker headlines (fallback method)
func (s *Scraper) ScrapeGoogleNews(ctx context.Context, ticker string, maxArticles int) ([]types.NewsArticle, error) {
	articles := []types.NewsArticle{}

	c := colly.NewCollector(
		colly.AllowedDomains("news.google.com", "www.google.com"),
	)

	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	})

	c.OnHTML("article", func(e *colly.HTMLElement) {
		if len(articles) >= maxArticles {
			return
		}

		title := e.ChildText("h3, h4")
		link := e.ChildAttr("a", "href")

		if title != "" && link != "" {
			// Clean up Google News redirect URL
			if strings.HasPrefix(link, "./articles/") {
				link = "https://news.google.com" + link[1:]
			}

			articles = append(articles, types.NewsArticle{
				Title:  title,
				URL:    link,
				Source: "GoogleNews",
				Ticker: ticker,
			})
		}
	})

	searchQuery := url.QueryEscape(ticker + " stock news")
	searchURL := fmt.Sprintf("https://news.google.com/search?q=%s&hl=en-US&gl=US&ceid=US:en", searchQuery)

	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to scrape Google News: %w", err)
	}

	c.Wait()

	logger.Info(ctx, "Google News scraping completed", "ticker", ticker, "articles", len(articles))
	return articles, nil
}

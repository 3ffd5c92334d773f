package interfaces

import (
	"context"

	"stock-research-agent/internal/types"
)

// NewsProvider returns recent articles for a ticker, most recent first.
type NewsProvider interface {
	RecentNews(ctx context.Context, ticker string, limit int) ([]types.NewsArticle, error)
}

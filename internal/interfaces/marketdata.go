package interfaces

import (
	"context"

	"stock-research-agent/internal/types"
)

// MarketData fetches quote, history and fundamentals for a ticker.
type MarketData interface {
	StockInfo(ctx context.Context, ticker string) (types.StockInfo, error)
	PriceHistory(ctx context.Context, ticker string, days int) (types.PriceHistory, error)
	FinancialMetrics(ctx context.Context, ticker string) (types.FinancialMetrics, error)
}

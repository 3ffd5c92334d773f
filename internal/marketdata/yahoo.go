package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"

	"stock-research-agent/internal/api"
	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/trace"
	"stock-research-agent/internal/types"
)

// Service fetches quotes, history and fundamentals from Yahoo Finance.
type Service struct {
	client *api.Client
}

func NewService() *Service {
	return &Service{
		client: api.NewClient(api.WithTimeout(20 * time.Second)),
	}
}

// StockInfo returns a quote snapshot. Zero-valued quote fields are reported
// as nil so callers can tell "unavailable" from a real zero.
func (s *Service) StockInfo(ctx context.Context, ticker string) (types.StockInfo, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.StockInfo")
	defer span.End()

	q, err := equity.Get(ticker)
	if err != nil {
		logger.ErrorWithErr(ctx, "Quote fetch failed", err, "ticker", ticker)
		return types.StockInfo{}, fmt.Errorf("quote fetch for %s: %w", ticker, err)
	}
	if q == nil {
		return types.StockInfo{}, fmt.Errorf("quote fetch for %s: empty result", ticker)
	}

	name := q.ShortName
	if name == "" {
		name = ticker
	}

	info := types.StockInfo{
		Ticker:           ticker,
		CompanyName:      name,
		CurrentPrice:     nonZero(q.RegularMarketPrice),
		MarketCap:        nonZero(float64(q.MarketCap)),
		PERatio:          nonZero(q.TrailingPE),
		FiftyTwoWeekHigh: nonZero(q.FiftyTwoWeekHigh),
		FiftyTwoWeekLow:  nonZero(q.FiftyTwoWeekLow),
	}

	logger.Debug(ctx, "Stock info fetched", "ticker", ticker, "company", info.CompanyName)
	return info, nil
}

// PriceHistory returns up to `days` calendar days of daily bars, oldest first.
func (s *Service) PriceHistory(ctx context.Context, ticker string, days int) (types.PriceHistory, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.PriceHistory")
	defer span.End()

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	params := &chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	hist := types.PriceHistory{Ticker: ticker}
	iter := chart.Get(params)
	for iter.Next() {
		bar := iter.Bar()
		c, _ := bar.Close.Float64()
		h, _ := bar.High.Float64()
		l, _ := bar.Low.Float64()
		hist.Closes = append(hist.Closes, c)
		hist.Highs = append(hist.Highs, h)
		hist.Lows = append(hist.Lows, l)
	}
	if err := iter.Err(); err != nil {
		logger.ErrorWithErr(ctx, "Price history fetch failed", err, "ticker", ticker, "days", days)
		return types.PriceHistory{}, fmt.Errorf("price history for %s: %w", ticker, err)
	}
	if len(hist.Closes) == 0 {
		return types.PriceHistory{}, fmt.Errorf("price history for %s: no bars returned", ticker)
	}

	logger.Debug(ctx, "Price history fetched", "ticker", ticker, "bars", len(hist.Closes))
	return hist, nil
}

// FinancialMetrics combines quote fundamentals with scraped statistics.
// The scrape is best-effort; quote-derived fields survive its failure.
func (s *Service) FinancialMetrics(ctx context.Context, ticker string) (types.FinancialMetrics, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.FinancialMetrics")
	defer span.End()

	q, err := equity.Get(ticker)
	if err != nil {
		return types.FinancialMetrics{}, fmt.Errorf("metrics fetch for %s: %w", ticker, err)
	}

	metrics := types.FinancialMetrics{
		Ticker:  ticker,
		EPS:     nonZero(q.EpsTrailingTwelveMonths),
		PERatio: nonZero(q.TrailingPE),
	}

	if scraped, err := s.scrapeStatistics(ctx, ticker); err != nil {
		logger.Warn(ctx, "Statistics scrape failed, using quote metrics only", "ticker", ticker, "error", err)
	} else {
		metrics.ProfitMargin = scraped.ProfitMargin
		metrics.RevenueGrowth = scraped.RevenueGrowth
	}

	return metrics, nil
}

func nonZero(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

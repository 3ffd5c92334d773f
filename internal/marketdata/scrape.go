package marketdata

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"stock-research-agent/internal/api"
	"stock-research-agent/internal/types"
)

// scrapeStatistics pulls margin and growth figures from the Yahoo Finance
// statistics page, which the quote API does not expose.
func (s *Service) scrapeStatistics(ctx context.Context, ticker string) (types.FinancialMetrics, error) {
	url := fmt.Sprintf("https://finance.yahoo.com/quote/%s/key-statistics", ticker)

	resp, err := s.client.GET(ctx, url, api.YahooFinanceHeaders())
	if err != nil {
		return types.FinancialMetrics{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return types.FinancialMetrics{}, fmt.Errorf("parse statistics page: %w", err)
	}

	metrics := types.FinancialMetrics{Ticker: ticker}
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.TrimSpace(cells.First().Text())
		value := strings.TrimSpace(cells.Eq(1).Text())

		switch {
		case strings.HasPrefix(label, "Profit Margin"):
			if v, ok := parsePercent(value); ok {
				metrics.ProfitMargin = &v
			}
		case strings.HasPrefix(label, "Quarterly Revenue Growth"):
			if v, ok := parsePercent(value); ok {
				metrics.RevenueGrowth = &v
			}
		}
	})

	return metrics, nil
}

// parsePercent converts "12.34%" to 0.1234.
func parsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "N/A" || s == "--" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v / 100, true
}

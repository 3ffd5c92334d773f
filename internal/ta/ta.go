package ta

import (
	"math"
	"sort"
)

func SMA(closes []float64, n int) float64 {
	if len(closes) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(n)
}

func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		return 100.0
	}
	rs := (gain / float64(period)) / (loss / float64(period))
	return 100.0 - (100.0 / (1.0 + rs))
}

// ClassifyTrend compares short and long moving averages with a 2% band.
func ClassifyTrend(maShort, maLong float64) string {
	if math.IsNaN(maShort) || math.IsNaN(maLong) || maLong == 0 {
		return "neutral"
	}
	switch {
	case maShort > maLong*1.02:
		return "bullish"
	case maShort < maLong*0.98:
		return "bearish"
	default:
		return "neutral"
	}
}

// SupportLevels returns the n lowest closes of the window, ascending.
func SupportLevels(closes []float64, n int) []float64 {
	if len(closes) == 0 || n <= 0 {
		return nil
	}
	sorted := append([]float64(nil), closes...)
	sort.Float64s(sorted)
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// ResistanceLevels returns the n highest closes of the window, descending.
func ResistanceLevels(closes []float64, n int) []float64 {
	if len(closes) == 0 || n <= 0 {
		return nil
	}
	sorted := append([]float64(nil), closes...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

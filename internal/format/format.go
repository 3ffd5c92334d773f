package format

import (
	"math"

	"github.com/shopspring/decimal"

	"stock-research-agent/internal/types"
)

// Round2 rounds to exactly 2 decimal places, half away from zero. NaN and
// infinities pass through unchanged; decimal.NewFromFloat panics on them.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Round2Ptr rounds through a nullable field. Nil stays nil, never zero.
func Round2Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Round2(*v)
	return &r
}

func round2Slice(vs []float64) []float64 {
	for i, v := range vs {
		vs[i] = Round2(v)
	}
	return vs
}

// Insight normalizes every numeric financial field of a TickerInsight to 2
// decimal places. Idempotent.
func Insight(in types.TickerInsight) types.TickerInsight {
	in.CurrentPrice = Round2Ptr(in.CurrentPrice)
	in.MarketCap = Round2Ptr(in.MarketCap)
	in.PERatio = Round2Ptr(in.PERatio)
	in.FiftyTwoWeekHigh = Round2Ptr(in.FiftyTwoWeekHigh)
	in.FiftyTwoWeekLow = Round2Ptr(in.FiftyTwoWeekLow)
	in.SupportLevels = round2Slice(in.SupportLevels)
	in.ResistanceLevels = round2Slice(in.ResistanceLevels)

	for i := range in.AgentTraces {
		in.AgentTraces[i].TotalLatencyMS = Round2(in.AgentTraces[i].TotalLatencyMS)
		for j := range in.AgentTraces[i].Steps {
			in.AgentTraces[i].Steps[j].LatencyMS = Round2(in.AgentTraces[i].Steps[j].LatencyMS)
		}
	}
	return in
}

// Response normalizes an AnalysisResponse before it leaves the core.
// Formatting an already-formatted response is a no-op.
func Response(resp *types.AnalysisResponse) *types.AnalysisResponse {
	if resp == nil {
		return nil
	}
	resp.TotalLatencyMS = Round2(resp.TotalLatencyMS)
	for i := range resp.Insights {
		resp.Insights[i] = Insight(resp.Insights[i])
	}
	return resp
}

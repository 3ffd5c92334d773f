package format

import (
	"math"
	"reflect"
	"testing"

	"stock-research-agent/internal/types"
)

func fptr(v float64) *float64 { return &v }

func TestRound2HalfUp(t *testing.T) {
	cases := map[float64]float64{
		123.456:  123.46,
		123.455:  123.46,
		123.454:  123.45,
		0.005:    0.01,
		99.999:   100.00,
		-1.005:   -1.01,
		42:       42,
		2847.391: 2847.39,
	}
	for in, want := range cases {
		if got := Round2(in); got != want {
			t.Errorf("Round2(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestRound2NonFinitePassthrough(t *testing.T) {
	if got := Round2(math.NaN()); !math.IsNaN(got) {
		t.Errorf("NaN: got %v", got)
	}
	if got := Round2(math.Inf(1)); !math.IsInf(got, 1) {
		t.Errorf("+Inf: got %v", got)
	}
	if got := Round2(math.Inf(-1)); !math.IsInf(got, -1) {
		t.Errorf("-Inf: got %v", got)
	}
}

func TestRound2PtrNil(t *testing.T) {
	if got := Round2Ptr(nil); got != nil {
		t.Fatalf("nil must stay nil, got %v", *got)
	}
	if got := Round2Ptr(fptr(123.456)); *got != 123.46 {
		t.Fatalf("expected 123.46, got %v", *got)
	}
}

func TestInsightRoundsAllNumericFields(t *testing.T) {
	in := types.TickerInsight{
		Ticker:           "AAPL",
		CurrentPrice:     fptr(187.123456),
		MarketCap:        fptr(2.987654e12),
		PERatio:          fptr(29.8765),
		FiftyTwoWeekHigh: fptr(199.999),
		SupportLevels:    []float64{180.1234, 181.5678},
		ResistanceLevels: []float64{190.9999},
		AgentTraces: []types.AgentTrace{{
			AgentType:      types.AgentNews,
			TotalLatencyMS: 1234.5678,
			Steps:          []types.AgentStep{{StepNumber: 1, LatencyMS: 456.789}},
		}},
	}

	out := Insight(in)

	if *out.CurrentPrice != 187.12 {
		t.Errorf("price: got %v", *out.CurrentPrice)
	}
	if *out.PERatio != 29.88 {
		t.Errorf("pe: got %v", *out.PERatio)
	}
	if out.SupportLevels[0] != 180.12 || out.SupportLevels[1] != 181.57 {
		t.Errorf("supports: got %v", out.SupportLevels)
	}
	if out.AgentTraces[0].TotalLatencyMS != 1234.57 {
		t.Errorf("trace latency: got %v", out.AgentTraces[0].TotalLatencyMS)
	}
	if out.AgentTraces[0].Steps[0].LatencyMS != 456.79 {
		t.Errorf("step latency: got %v", out.AgentTraces[0].Steps[0].LatencyMS)
	}
	if out.FiftyTwoWeekLow != nil {
		t.Error("absent field must stay nil")
	}
}

func TestResponseIdempotent(t *testing.T) {
	resp := &types.AnalysisResponse{
		TotalLatencyMS: 1532.4567,
		Insights: []types.TickerInsight{{
			Ticker:        "MSFT",
			CurrentPrice:  fptr(415.12345),
			SupportLevels: []float64{400.005},
		}},
	}

	once := Response(resp)
	snapshot := *once
	snapshotInsights := append([]types.TickerInsight(nil), once.Insights...)

	twice := Response(once)
	if twice.TotalLatencyMS != snapshot.TotalLatencyMS {
		t.Errorf("latency changed on second format: %v vs %v", twice.TotalLatencyMS, snapshot.TotalLatencyMS)
	}
	if !reflect.DeepEqual(twice.Insights, snapshotInsights) {
		t.Error("insights changed on second format")
	}
}

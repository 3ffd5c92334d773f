package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stock-research-agent/internal/conversation"
	"stock-research-agent/internal/orchestrator"
	"stock-research-agent/internal/status"
	"stock-research-agent/internal/types"
)

type stubAnalyzer struct {
	resp *types.AnalysisResponse
	err  error
}

func (a *stubAnalyzer) Analyze(_ context.Context, _ types.AnalysisRequest) (*types.AnalysisResponse, error) {
	return a.resp, a.err
}

func newTestServer(t *testing.T, analyzer *stubAnalyzer) (*Server, *status.Store) {
	t.Helper()
	statuses := status.NewStore(time.Minute)
	t.Cleanup(statuses.Close)
	return New(analyzer, statuses), statuses
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, &stubAnalyzer{})
	w := doRequest(s, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
}

func TestAnalyzeSuccess(t *testing.T) {
	s, _ := newTestServer(t, &stubAnalyzer{resp: &types.AnalysisResponse{
		RequestID: "req-1",
		Success:   true,
		Insights:  []types.TickerInsight{{Ticker: "AAPL", Stance: types.StanceBuy}},
	}})

	w := doRequest(s, http.MethodPost, "/api/v1/analyze", `{"query": "analyze AAPL"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}

	var resp types.AnalysisResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RequestID != "req-1" || len(resp.Insights) != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestAnalyzeRejectsEmptyRequest(t *testing.T) {
	s, _ := newTestServer(t, &stubAnalyzer{})
	w := doRequest(s, http.MethodPost, "/api/v1/analyze", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", w.Code)
	}
}

func TestAnalyzeErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{orchestrator.ErrNoTickers, http.StatusUnprocessableEntity},
		{orchestrator.ErrTimeout, http.StatusGatewayTimeout},
		{conversation.ErrNotFound, http.StatusNotFound},
		{conversation.ErrAlreadyResolved, http.StatusConflict},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		s, _ := newTestServer(t, &stubAnalyzer{err: tc.err})
		w := doRequest(s, http.MethodPost, "/api/v1/analyze", `{"query": "x"}`)
		if w.Code != tc.want {
			t.Errorf("%v: got %d, want %d", tc.err, w.Code, tc.want)
		}
	}
}

func TestStatusEndpoint(t *testing.T) {
	s, statuses := newTestServer(t, &stubAnalyzer{})
	statuses.Begin("req-42")
	statuses.Step("req-42", "running_research")

	w := doRequest(s, http.MethodGet, "/api/v1/status/req-42", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var rec status.Record
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.State != status.StateProcessing || rec.CurrentStep != "running_research" {
		t.Errorf("record: %+v", rec)
	}

	w = doRequest(s, http.MethodGet, "/api/v1/status/unknown", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id: got %d, want 404", w.Code)
	}
}

func TestCancelEndpoint(t *testing.T) {
	s, statuses := newTestServer(t, &stubAnalyzer{})
	statuses.Begin("req-9")

	w := doRequest(s, http.MethodDelete, "/api/v1/analyze/req-9", "")
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: got %d", w.Code)
	}
	rec, _ := statuses.Get("req-9")
	if rec.State != status.StateCancelled {
		t.Errorf("state: got %s", rec.State)
	}

	// A second cancel and an unknown ID both 404.
	if w := doRequest(s, http.MethodDelete, "/api/v1/analyze/req-9", ""); w.Code != http.StatusNotFound {
		t.Errorf("repeat cancel: got %d", w.Code)
	}
	if w := doRequest(s, http.MethodDelete, "/api/v1/analyze/nope", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown cancel: got %d", w.Code)
	}
}

func TestAgentsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, &stubAnalyzer{})
	w := doRequest(s, http.MethodGet, "/api/v1/agents", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var body struct {
		Agents []struct {
			Name string `json:"name"`
		} `json:"agents"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Agents) != 3 {
		t.Errorf("agents: got %d, want 3", len(body.Agents))
	}
}

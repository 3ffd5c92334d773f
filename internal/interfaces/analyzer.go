package interfaces

import (
	"context"

	"stock-research-agent/internal/types"
)

// Analyzer is the orchestrator surface consumed by the HTTP server.
type Analyzer interface {
	Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResponse, error)
}

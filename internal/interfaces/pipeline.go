package interfaces

import (
	"context"

	"stock-research-agent/internal/types"
)

// Pipeline runs the full research sequence for one ticker. Collaborator
// failures surface as a degraded insight, not an error; a returned error
// means the pipeline itself could not run.
type Pipeline interface {
	Run(ctx context.Context, ticker, query string, maxIterations int) (types.TickerInsight, error)
}

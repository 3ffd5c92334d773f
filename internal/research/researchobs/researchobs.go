package researchobs

import (
	"context"

	"stock-research-agent/internal/interfaces"
	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/trace"
	"stock-research-agent/internal/types"
)

// observablePipeline wraps a Pipeline with observability (logging & tracing)
type observablePipeline struct {
	pipeline interfaces.Pipeline
}

// Compile-time interface check
var _ interfaces.Pipeline = (*observablePipeline)(nil)

// Wrap wraps a research pipeline with observability middleware
func Wrap(pipeline interfaces.Pipeline) interfaces.Pipeline {
	return &observablePipeline{
		pipeline: pipeline,
	}
}

// Run executes the pipeline with observability
func (op *observablePipeline) Run(ctx context.Context, ticker, query string, maxIterations int) (types.TickerInsight, error) {
	ctx, span := trace.StartSpan(ctx, "pipeline.Run")
	defer span.End()

	timer := logger.StartOperation(ctx, "research_pipeline",
		"ticker", ticker,
		"max_iterations", maxIterations,
	)
	ctx = timer.GetContext()

	insight, err := op.pipeline.Run(ctx, ticker, query, maxIterations)
	if err != nil {
		timer.EndWithError(err)
		logger.ErrorWithErrSkip(ctx, 1, "Research pipeline failed", err,
			"ticker", ticker,
		)
		return insight, err
	}

	timer.End()
	logger.InfoSkip(ctx, 1, "Research pipeline finished",
		"ticker", ticker,
		"stance", string(insight.Stance),
		"confidence", string(insight.Confidence),
		"trend", string(insight.Trend),
		"sources", len(insight.Sources),
	)

	return insight, nil
}

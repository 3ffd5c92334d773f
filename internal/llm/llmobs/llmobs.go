package llmobs

import (
	"context"

	"stock-research-agent/internal/interfaces"
	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/trace"
)

// observableCompleter wraps a Completer with observability (logging & tracing)
type observableCompleter struct {
	completer interfaces.Completer
}

// Compile-time interface check
var _ interfaces.Completer = (*observableCompleter)(nil)

// Wrap wraps a completer with observability middleware
func Wrap(completer interfaces.Completer) interfaces.Completer {
	return &observableCompleter{
		completer: completer,
	}
}

// Complete requests a completion with observability
func (oc *observableCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Complete")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting completion",
		"prompt_length", len(prompt),
		"system_length", len(system),
	)

	out, err := oc.completer.Complete(ctx, system, prompt)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Completion failed", err,
			"prompt_length", len(prompt),
		)
		return "", err
	}

	logger.DebugSkip(ctx, 1, "Completion received",
		"response_length", len(out),
	)

	return out, nil
}

package noop

import (
	"context"
	"errors"

	"stock-research-agent/internal/logger"
)

// ErrNotConfigured signals callers to use their deterministic fallbacks.
var ErrNotConfigured = errors.New("no LLM provider configured")

// Completer is the fallback completer used when no LLM is configured
type Completer struct{}

// NewCompleter returns a completer that always fails with ErrNotConfigured
func NewCompleter() *Completer {
	return &Completer{}
}

// Complete implements the Completer interface
func (c *Completer) Complete(ctx context.Context, system, prompt string) (string, error) {
	logger.Debug(ctx, "Noop completer called", "prompt_length", len(prompt))
	return "", ErrNotConfigured
}

package llm

import (
	"stock-research-agent/internal/interfaces"
	"stock-research-agent/internal/llm/gemini"
	"stock-research-agent/internal/llm/noop"
	"stock-research-agent/internal/llm/openai"
	"stock-research-agent/internal/store"
)

// NewGeminiCompleter returns a Completer backed by the Gemini REST API.
func NewGeminiCompleter(cfg *store.Config) interfaces.Completer {
	return gemini.NewCompleter(cfg)
}

// NewOpenAICompleter returns a Completer backed by OpenAI chat completions.
func NewOpenAICompleter(cfg *store.Config) interfaces.Completer {
	return openai.NewCompleter(cfg)
}

// NewNoopCompleter returns a Completer that always errors, forcing callers
// onto their deterministic fallbacks.
func NewNoopCompleter() interfaces.Completer {
	return noop.NewCompleter()
}

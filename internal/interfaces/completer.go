package interfaces

import "context"

// Completer is a text-completion LLM client. Implementations must return the
// raw model text; callers own prompt construction and output parsing.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

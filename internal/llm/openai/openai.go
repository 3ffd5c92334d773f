package openai

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"stock-research-agent/internal/api"
	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/store"
	"stock-research-agent/internal/trace"
)

const endpoint = "https://api.openai.com/v1/chat/completions"

// Completer calls the OpenAI chat completions API.
type Completer struct {
	cfg    *store.Config
	client *api.Client
}

func NewCompleter(cfg *store.Config) *Completer {
	return &Completer{
		cfg:    cfg,
		client: api.NewClient(api.WithTimeout(45 * time.Second)),
	}
}

func (c *Completer) Complete(ctx context.Context, system, prompt string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", errors.New("OPENAI_API_KEY missing")
	}

	messages := []map[string]string{}
	if system != "" {
		messages = append(messages, map[string]string{"role": "system", "content": system})
	}
	messages = append(messages, map[string]string{"role": "user", "content": prompt})

	body := map[string]any{
		"model":       c.cfg.LLM.Model,
		"messages":    messages,
		"temperature": c.cfg.LLM.Temperature,
		"max_tokens":  c.cfg.LLM.MaxTokens,
	}

	start := time.Now()
	resp, err := c.client.POST(ctx, endpoint, body, map[string]string{
		"Authorization": "Bearer " + apiKey,
	})
	latency := time.Since(start)
	if err != nil {
		logger.ErrorWithErr(ctx, "OpenAI API request failed", err, "model", c.cfg.LLM.Model, "latency_ms", latency.Milliseconds())
		return "", err
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return "", err
	}
	if len(r.Choices) == 0 {
		return "", errors.New("openai: no choices in response")
	}

	out := strings.TrimSpace(r.Choices[0].Message.Content)
	logger.Debug(ctx, "OpenAI completion received",
		"model", c.cfg.LLM.Model,
		"latency_ms", latency.Milliseconds(),
		"response_length", len(out),
	)
	return out, nil
}

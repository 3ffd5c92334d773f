package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"stock-research-agent/internal/api"
	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/store"
	"stock-research-agent/internal/trace"
)

const defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

// Completer calls the Gemini generateContent REST API.
type Completer struct {
	cfg      *store.Config
	client   *api.Client
	endpoint string
}

func NewCompleter(cfg *store.Config) *Completer {
	endpoint := defaultEndpoint
	if ep := os.Getenv("GEMINI_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return &Completer{
		cfg:      cfg,
		client:   api.NewClient(api.WithTimeout(45 * time.Second)),
		endpoint: endpoint,
	}
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Completer) Complete(ctx context.Context, system, prompt string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "gemini-api-call")
	defer span.End()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		err := errors.New("GEMINI_API_KEY missing")
		logger.ErrorWithErr(ctx, "Gemini API key not configured", err)
		return "", err
	}

	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:     c.cfg.LLM.Temperature,
			MaxOutputTokens: c.cfg.LLM.MaxTokens,
		},
	}
	if system != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.endpoint, c.cfg.LLM.Model, apiKey)

	start := time.Now()
	resp, err := c.client.POST(ctx, url, body)
	latency := time.Since(start)
	if err != nil {
		logger.ErrorWithErr(ctx, "Gemini API request failed", err, "model", c.cfg.LLM.Model, "latency_ms", latency.Milliseconds())
		return "", err
	}

	var r generateResponse
	if err := resp.ParseJSON(&r); err != nil {
		logger.ErrorWithErr(ctx, "Failed to parse Gemini response", err, "model", c.cfg.LLM.Model)
		return "", err
	}
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: no candidates in response")
	}

	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	out := strings.TrimSpace(sb.String())

	logger.Debug(ctx, "Gemini completion received",
		"model", c.cfg.LLM.Model,
		"latency_ms", latency.Milliseconds(),
		"response_length", len(out),
	)
	return out, nil
}

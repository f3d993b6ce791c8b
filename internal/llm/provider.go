package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rahul/campaigner/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewModel builds a langchaingo model from a named provider config.
func NewModel(name string, cfg config.ProviderConfig) (llms.Model, error) {
	switch name {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(opts...)
	case "anthropic":
		opts := []anthropic.Option{
			anthropic.WithToken(cfg.APIKey),
			anthropic.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		return anthropic.New(opts...)
	default:
		return nil, fmt.Errorf("provider %s not supported", name)
	}
}

// Provider wraps a model with plain-text and JSON query helpers.
type Provider struct {
	Model llms.Model
}

func NewProvider(model llms.Model) *Provider {
	return &Provider{Model: model}
}

// Query sends a system+user prompt and returns the raw text response.
func (p *Provider) Query(ctx context.Context, system, prompt string) (string, error) {
	var messages []llms.MessageContent
	if system != "" {
		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		})
	}
	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(prompt)},
	})

	resp, err := p.Model.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return resp.Choices[0].Content, nil
}

// QueryJSON sends a prompt expecting a JSON response and decodes it into out.
// Models routinely wrap JSON in markdown fences or prose, so the response is
// trimmed down to its outermost JSON value before decoding.
func (p *Provider) QueryJSON(ctx context.Context, system, prompt string, out any) error {
	full := prompt + "\n\nReturn ONLY valid JSON. No prose, no markdown fences."
	raw, err := p.Query(ctx, system, full)
	if err != nil {
		return err
	}

	payload := ExtractJSON(raw)
	if payload == "" {
		return fmt.Errorf("no JSON object found in model response")
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("failed to parse model JSON: %w", err)
	}
	return nil
}

// ExtractJSON pulls the outermost JSON value out of a model response,
// stripping markdown fences and surrounding prose.
func ExtractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			s = strings.TrimSpace(rest[:end])
		} else {
			s = strings.TrimSpace(rest)
		}
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	var closer byte
	if s[start] == '{' {
		closer = '}'
	} else {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}

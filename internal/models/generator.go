package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/Little-pure-light/language-Model/internal/utils"
)

// ErrEmptyCompletion is returned when the model answers without any text.
var ErrEmptyCompletion = errors.New("empty completion")

// CompletionOptions tunes a single completion call.
type CompletionOptions struct {
	Model     string
	MaxTokens int
	// Temperature is left to the provider default when nil. Zero is a valid setting.
	Temperature *float64
}

// Generator turns role-tagged contents into a single completion string.
type Generator struct {
	llm model.LLM
}

// NewGenerator wraps an ADK model.
func NewGenerator(llm model.LLM) *Generator {
	return &Generator{llm: llm}
}

// NewLLM builds the chat model for a provider name.
func NewLLM(ctx context.Context, provider, modelName, apiKey string) (model.LLM, error) {
	cfg := &genai.ClientConfig{APIKey: apiKey}
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "openai":
		return NewOpenAIModel(ctx, modelName, cfg)
	case "grok", "xai":
		return NewGrokModel(ctx, modelName, cfg)
	case "openrouter":
		return NewOpenRouterModel(ctx, modelName, cfg)
	case "gemini", "google":
		return NewGeminiModel(ctx, modelName, cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", provider)
	}
}

// Name reports the underlying model name.
func (g *Generator) Name() string {
	if g == nil || g.llm == nil {
		return ""
	}
	return g.llm.Name()
}

// Complete sends contents to the model. Contents with the "system" role are
// folded into the system instruction in order.
func (g *Generator) Complete(ctx context.Context, contents []*genai.Content, opts CompletionOptions) (string, error) {
	if g == nil || g.llm == nil {
		return "", fmt.Errorf("generator not configured")
	}

	config := &genai.GenerateContentConfig{}
	if opts.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}

	var system []string
	var turns []*genai.Content
	for _, content := range contents {
		if content == nil {
			continue
		}
		if content.Role == "system" {
			system = append(system, utils.ExtractContentText(content))
			continue
		}
		turns = append(turns, content)
	}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), "system")
	}

	req := &model.LLMRequest{
		Model:    opts.Model,
		Contents: turns,
		Config:   config,
	}

	var sb strings.Builder
	for resp, err := range g.llm.GenerateContent(ctx, req, false) {
		if err != nil {
			return "", fmt.Errorf("failed to generate completion: %w", err)
		}
		if resp == nil || resp.Partial {
			continue
		}
		sb.WriteString(utils.ExtractContentText(resp.Content))
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

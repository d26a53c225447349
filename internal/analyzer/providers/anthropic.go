package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"

	"github.com/adscope/adscope/internal/ads"
	"github.com/adscope/adscope/internal/config"
	"github.com/adscope/adscope/internal/store"
)

// AnthropicProvider implements the Provider interface using Anthropic's Claude API
type AnthropicProvider struct {
	client   *anthropic.Client
	provider string
	model    string
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &AnthropicProvider{
		client:   &client,
		provider: config.ProviderAnthropic,
		model:    model,
	}
}

// Analyze sends ads to Claude for creative analysis
func (c *AnthropicProvider) Analyze(ctx context.Context, records []ads.Record) ([]ads.Analysis, error) {
	prompt := buildAnalysisPrompt(records)

	// Use prefilling to ensure Claude continues with valid JSON (starting after the "[")
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			anthropic.NewAssistantMessage(anthropic.NewTextBlock("[")),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call Claude API: %w", err)
	}

	responseText := firstTextBlock(message)
	c.cacheExchange(prompt, responseText)

	if responseText == "" {
		return nil, fmt.Errorf("Claude returned empty response")
	}

	// Prepend "[" since we used prefilling - the response continues from after the "["
	fullJSON := "[" + responseText
	return ParseAnalysisResponse([]byte(fullJSON))
}

// Complete answers a free-form prompt and returns the raw response text.
func (c *AnthropicProvider) Complete(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call Claude API: %w", err)
	}

	responseText := firstTextBlock(message)
	c.cacheExchange(prompt, responseText)

	if responseText == "" {
		return "", fmt.Errorf("Claude returned empty response")
	}
	return responseText, nil
}

func (c *AnthropicProvider) cacheExchange(prompt, responseText string) {
	if cachePath, err := store.SaveLLMExchange(store.LLMExchange{
		Timestamp: time.Now(),
		Provider:  c.provider,
		Model:     c.model,
		Prompt:    prompt,
		Response:  responseText,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to cache LLM exchange")
	} else {
		log.Debug().Str("path", cachePath).Msg("cached LLM exchange")
	}
}

func firstTextBlock(message *anthropic.Message) string {
	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}

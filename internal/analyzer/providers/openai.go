package providers

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/rs/zerolog/log"

	"github.com/adscope/adscope/internal/ads"
	"github.com/adscope/adscope/internal/config"
	"github.com/adscope/adscope/internal/store"
)

// OpenAIProvider implements the Provider interface using OpenAI's chat API
type OpenAIProvider struct {
	client   *openai.Client
	provider string
	model    string
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{
		client:   openai.NewClient(apiKey),
		provider: config.ProviderOpenAI,
		model:    model,
	}
}

// Analyze sends ads to the model for creative analysis
func (p *OpenAIProvider) Analyze(ctx context.Context, records []ads.Record) ([]ads.Analysis, error) {
	prompt := buildAnalysisPrompt(records)

	responseText, err := p.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return ParseAnalysisResponse([]byte(ExtractJSON(responseText)))
}

// Complete answers a free-form prompt and returns the raw response text.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: 4096,
	})
	if err != nil {
		return "", fmt.Errorf("failed to call OpenAI API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned empty response")
	}
	responseText := resp.Choices[0].Message.Content

	// Cache the prompt/response for debugging
	if cachePath, err := store.SaveLLMExchange(store.LLMExchange{
		Timestamp: time.Now(),
		Provider:  p.provider,
		Model:     p.model,
		Prompt:    prompt,
		Response:  responseText,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to cache LLM exchange")
	} else {
		log.Debug().Str("path", cachePath).Msg("cached LLM exchange")
	}

	return responseText, nil
}

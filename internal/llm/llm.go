// Package llm narrows the chat-completion surface the extractor needs so any
// OpenAI-compatible endpoint, hosted or local, can back the AI strategy.
package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the minimal interface needed to call a chat model. It mirrors the
// single method the AI strategy uses so tests can substitute a stub.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIProvider adapts *openai.Client to the Client interface.
type OpenAIProvider struct {
	Inner *openai.Client
}

func (p *OpenAIProvider) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return p.Inner.CreateChatCompletion(ctx, request)
}

// New builds a provider for an OpenAI-compatible server. An empty baseURL
// uses the default endpoint.
func New(baseURL, apiKey string) *OpenAIProvider {
	if baseURL == "" {
		return &OpenAIProvider{Inner: openai.NewClient(apiKey)}
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAIProvider{Inner: openai.NewClientWithConfig(cfg)}
}

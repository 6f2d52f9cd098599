package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to any endpoint that speaks the OpenAI chat completion API.
type OpenAIProvider struct {
	client *openai.Client
	name   string
	model  string
}

func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return newCompatibleProvider("OpenAI", apiKey, model, baseURL)
}

func newCompatibleProvider(name, apiKey, model, baseURL string) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		name:   name,
		model:  model,
	}
}

func (p *OpenAIProvider) GetProviderName() string {
	return p.name
}

func (p *OpenAIProvider) Model() string {
	return p.model
}

func (p *OpenAIProvider) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if req.Model == "" {
		req.Model = p.model
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return resp, fmt.Errorf("%s error: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return resp, fmt.Errorf("no response from %s", p.name)
	}
	return resp, nil
}

package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// LLMProvider interface untuk multiple OpenAI-compatible providers
type LLMProvider interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	GetProviderName() string
	Model() string
}

// ProviderType untuk factory
type ProviderType string

const (
	ProviderOpenAI   ProviderType = "openai"
	ProviderGroq     ProviderType = "groq"
	ProviderDeepSeek ProviderType = "deepseek"
)

// ProviderConfig untuk create provider
type ProviderConfig struct {
	Type ProviderType

	APIKey string
	// BaseURL overrides the provider's default endpoint (proxies, tests).
	BaseURL string

	Model string
}

// NewProvider factory untuk create LLM provider
func NewProvider(cfg *ProviderConfig) (LLMProvider, error) {
	switch cfg.Type {
	case ProviderOpenAI, "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required")
		}
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case ProviderGroq:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY is required")
		}
		return NewGroqProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case ProviderDeepSeek:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY is required")
		}
		return NewDeepSeekProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider type: %s", cfg.Type)
	}
}

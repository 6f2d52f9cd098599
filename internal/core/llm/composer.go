package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
)

// HistoryTurns is how many prior messages are sent to the model.
const HistoryTurns = 10

const genericActionReply = "I can help you with that."

// ErrNotConfigured is attached to responses generated without a provider.
var ErrNotConfigured = errors.New("AI provider not configured")

type ComposerConfig struct {
	Temperature float32
	MaxTokens   int
	// Timeout bounds a single completion call. Zero leaves it to the caller's context.
	Timeout time.Duration
	// TraderSearch declares search_traders to the model. Leave it off unless a
	// trader directory will answer the call.
	TraderSearch bool
}

// Composer turns a user message plus context into an AIResponse with one model round trip.
type Composer struct {
	provider LLMProvider
	cfg      ComposerConfig
	now      func() time.Time
	calls    atomic.Int64
}

// NewComposer accepts a nil provider; Generate then always returns the fallback.
func NewComposer(provider LLMProvider, cfg ComposerConfig) *Composer {
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1000
	}
	return &Composer{provider: provider, cfg: cfg, now: time.Now}
}

// Available reports whether a provider is configured.
func (c *Composer) Available() bool {
	return c != nil && c.provider != nil
}

// Calls returns the number of completion requests sent so far.
func (c *Composer) Calls() int64 {
	return c.calls.Load()
}

func (c *Composer) ProviderName() string {
	if !c.Available() {
		return "none"
	}
	return c.provider.GetProviderName()
}

// Generate never returns an error: transport failures become a fallback response
// with intent "error" and the cause in Error.
func (c *Composer) Generate(ctx context.Context, message string, cc ConversationContext, hits []business.KnowledgeItem) AIResponse {
	if !c.Available() {
		return fallbackResponse(cc.Business, ErrNotConfigured)
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:       c.provider.Model(),
		Messages:    c.buildMessages(message, cc, hits),
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Tools:       Tools(c.cfg.TraderSearch),
		ToolChoice:  "auto",
	}

	c.calls.Add(1)
	resp, err := c.provider.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("session_id", cc.SessionID).Str("provider", c.provider.GetProviderName()).Msg("AI completion failed")
		return fallbackResponse(cc.Business, err)
	}
	if len(resp.Choices) == 0 {
		return fallbackResponse(cc.Business, errors.New("no response from model"))
	}

	msg := resp.Choices[0].Message
	for _, tc := range msg.ToolCalls {
		if tc.Type == "" || tc.Type == openai.ToolTypeFunction {
			return c.functionResponse(tc.Function.Name, tc.Function.Arguments)
		}
	}
	if msg.FunctionCall != nil {
		return c.functionResponse(msg.FunctionCall.Name, msg.FunctionCall.Arguments)
	}

	return textResponse(msg.Content)
}

func (c *Composer) buildMessages(message string, cc ConversationContext, hits []business.KnowledgeItem) []openai.ChatCompletionMessage {
	system := BuildSystemPrompt(cc.Business, hits, c.now())
	if c.cfg.TraderSearch {
		system += "\n\nUse the search_traders function only for B2B trading partner inquiries."
	}
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
	}

	history := cc.Messages
	if len(history) > HistoryTurns {
		history = history[len(history)-HistoryTurns:]
	}
	for _, t := range history {
		switch t.Role {
		case openai.ChatMessageRoleUser, openai.ChatMessageRoleAssistant:
			messages = append(messages, openai.ChatCompletionMessage{Role: t.Role, Content: t.Content})
		}
	}

	return append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})
}

func (c *Composer) functionResponse(name, arguments string) AIResponse {
	action, err := ParseFunctionCall(name, arguments)
	if err != nil {
		log.Warn().Err(err).Msg("discarding malformed function call")
		return textResponse(genericActionReply)
	}

	switch a := action.(type) {
	case SuggestContent:
		return AIResponse{
			Message:          "Let me help you with that information.",
			SuggestedContent: a.ContentIDs,
			Intent:           a.Intent,
			Confidence:       a.Confidence,
			Action:           a,
		}
	case SearchTraders:
		if !c.cfg.TraderSearch {
			log.Warn().Str("function", name).Msg("model called an undeclared function")
			return textResponse(genericActionReply)
		}
		// the caller runs the search and replaces this response
		args, _ := json.Marshal(a)
		return AIResponse{
			Message:          "Let me look for matching trading partners.",
			SuggestedContent: []string{},
			Intent:           IntentTraderDiscovery,
			Confidence:       0.9,
			FunctionCall:     &FunctionCall{Name: FuncSearchTraders, Arguments: args},
			Action:           a,
		}
	default:
		return textResponse(genericActionReply)
	}
}

// GenericActionReply is the text answer used when a function call cannot be served.
func GenericActionReply() AIResponse {
	return textResponse(genericActionReply)
}

func textResponse(content string) AIResponse {
	if content == "" {
		content = genericActionReply
	}
	intent := AnalyzeIntent(content)
	return AIResponse{
		Message:          content,
		SuggestedContent: ContentForIntent(intent),
		Intent:           intent,
		Confidence:       0.8,
	}
}

func fallbackResponse(b *business.Config, err error) AIResponse {
	name := b.DisplayName("our team")
	return AIResponse{
		Message:          "I'm currently having trouble processing your request. Please contact " + name + " directly for assistance, or try again in a moment.",
		SuggestedContent: []string{},
		Intent:           IntentError,
		Confidence:       0.1,
		Error:            err.Error(),
	}
}

// Tools declares the functions the model may call; search_traders only with traderSearch.
func Tools(traderSearch bool) []openai.Tool {
	tools := []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        FuncSuggestContent,
				Description: "Suggest relevant content to show the user",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"contentIds": {
							Type:        jsonschema.Array,
							Items:       &jsonschema.Definition{Type: jsonschema.String},
							Description: "Array of content IDs to suggest",
						},
						"intent": {
							Type:        jsonschema.String,
							Description: "The user intent (contact_inquiry, meeting_request, product_inquiry, etc.)",
						},
						"confidence": {
							Type:        jsonschema.Number,
							Description: "Confidence score between 0 and 1",
						},
					},
					Required: []string{"contentIds", "intent", "confidence"},
				},
			},
		},
	}
	if !traderSearch {
		return tools
	}
	return append(tools, openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        FuncSearchTraders,
			Description: "Search for business trading partners",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"query":   {Type: jsonschema.String, Description: "Search query for traders"},
					"country": {Type: jsonschema.String, Description: "Country filter"},
					"products": {
						Type:        jsonschema.Array,
						Items:       &jsonschema.Definition{Type: jsonschema.String},
						Description: "Product categories",
					},
					"type": {
						Type:        jsonschema.String,
						Enum:        []string{"Importer", "Exporter", "Both"},
						Description: "Trader type",
					},
				},
				Required: []string{"query"},
			},
		},
	})
}

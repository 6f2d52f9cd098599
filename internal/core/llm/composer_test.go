package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
)

type fakeProvider struct {
	resp openai.ChatCompletionResponse
	err  error
	reqs []openai.ChatCompletionRequest
}

func (f *fakeProvider) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.reqs = append(f.reqs, req)
	return f.resp, f.err
}

func (f *fakeProvider) GetProviderName() string { return "fake" }
func (f *fakeProvider) Model() string           { return "fake-model" }

func textReply(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{
		Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
	}}}
}

func toolReply(name, args string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{
		Message: openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleAssistant,
			ToolCalls: []openai.ToolCall{{
				ID:       "call_1",
				Type:     openai.ToolTypeFunction,
				Function: openai.FunctionCall{Name: name, Arguments: args},
			}},
		},
	}}}
}

func testBusiness() *business.Config {
	return &business.Config{ID: "acme", Name: "Acme Plumbing", Industry: "Home services", Description: "Plumbing repairs"}
}

func TestGenerate_TextReplyAnalyzesIntent(t *testing.T) {
	fp := &fakeProvider{resp: textReply("Our pricing depends on the job, the cost starts at $80.")}
	c := NewComposer(fp, ComposerConfig{})

	resp := c.Generate(context.Background(), "how much?", ConversationContext{Business: testBusiness()}, nil)

	assert.Equal(t, IntentPricingInquiry, resp.Intent)
	assert.Equal(t, []string{"contact-form", "schedule-meeting"}, resp.SuggestedContent)
	assert.InDelta(t, 0.8, resp.Confidence, 0.0001)
	assert.Empty(t, resp.Error)
	assert.Equal(t, int64(1), c.Calls())
}

func TestGenerate_SendsHistoryAndTools(t *testing.T) {
	fp := &fakeProvider{resp: textReply("ok")}
	c := NewComposer(fp, ComposerConfig{Temperature: 0.3, MaxTokens: 200})

	var history []Turn
	for i := 0; i < 14; i++ {
		role := openai.ChatMessageRoleUser
		if i%2 == 1 {
			role = openai.ChatMessageRoleAssistant
		}
		history = append(history, Turn{Role: role, Content: string(rune('a' + i))})
	}
	history = append(history, Turn{Role: "system", Content: "ignored"})

	c.Generate(context.Background(), "current", ConversationContext{Business: testBusiness(), Messages: history}, nil)

	require.Len(t, fp.reqs, 1)
	req := fp.reqs[0]
	assert.Equal(t, "fake-model", req.Model)
	assert.Equal(t, float32(0.3), req.Temperature)
	assert.Equal(t, 200, req.MaxTokens)
	require.Len(t, req.Tools, 1, "search_traders needs a trader directory")
	assert.Equal(t, FuncSuggestContent, req.Tools[0].Function.Name)
	assert.NotContains(t, req.Messages[0].Content, "search_traders")

	// system + 9 of the last 10 turns (the system turn is dropped) + current
	require.Len(t, req.Messages, 11)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Equal(t, "f", req.Messages[1].Content)
	assert.Equal(t, "current", req.Messages[10].Content)
}

func TestGenerate_SuggestContentToolCall(t *testing.T) {
	fp := &fakeProvider{resp: toolReply(FuncSuggestContent, `{"contentIds":["contact-form"],"intent":"contact_inquiry","confidence":0.95}`)}
	c := NewComposer(fp, ComposerConfig{})

	resp := c.Generate(context.Background(), "call me", ConversationContext{Business: testBusiness()}, nil)

	assert.Equal(t, "Let me help you with that information.", resp.Message)
	assert.Equal(t, []string{"contact-form"}, resp.SuggestedContent)
	assert.Equal(t, IntentContact, resp.Intent)
	assert.InDelta(t, 0.95, resp.Confidence, 0.0001)
	assert.IsType(t, SuggestContent{}, resp.Action)
}

func TestGenerate_SearchTradersToolCall(t *testing.T) {
	fp := &fakeProvider{resp: toolReply(FuncSearchTraders, `{"query":"coffee exporters","country":"Brazil","type":"Exporter"}`)}
	c := NewComposer(fp, ComposerConfig{TraderSearch: true})

	resp := c.Generate(context.Background(), "find coffee exporters in brazil", ConversationContext{}, nil)

	require.Len(t, fp.reqs[0].Tools, 2)
	assert.Equal(t, FuncSearchTraders, fp.reqs[0].Tools[1].Function.Name)
	assert.Contains(t, fp.reqs[0].Messages[0].Content, "search_traders")

	assert.Equal(t, IntentTraderDiscovery, resp.Intent)
	assert.Empty(t, resp.SuggestedContent, "results are shown only after the search ran")
	assert.IsType(t, SearchTraders{}, resp.Action)
	require.NotNil(t, resp.FunctionCall)
	assert.Equal(t, FuncSearchTraders, resp.FunctionCall.Name)

	var args SearchTraders
	require.NoError(t, json.Unmarshal(resp.FunctionCall.Arguments, &args))
	assert.Equal(t, "Brazil", args.Country)
}

func TestGenerate_UndeclaredTraderSearchDowngradesToText(t *testing.T) {
	fp := &fakeProvider{resp: toolReply(FuncSearchTraders, `{"query":"coffee exporters","country":"Brazil"}`)}
	c := NewComposer(fp, ComposerConfig{})

	resp := c.Generate(context.Background(), "find coffee exporters in brazil", ConversationContext{}, nil)

	assert.Equal(t, "I can help you with that.", resp.Message)
	assert.NotEqual(t, IntentTraderDiscovery, resp.Intent)
	assert.NotContains(t, resp.SuggestedContent, "trader-search-results")
	assert.Nil(t, resp.Action)
	assert.Nil(t, resp.FunctionCall)
}

func TestGenerate_MalformedToolCallDowngradesToText(t *testing.T) {
	fp := &fakeProvider{resp: toolReply(FuncSuggestContent, `{"contentIds": "nope"`)}
	c := NewComposer(fp, ComposerConfig{})

	resp := c.Generate(context.Background(), "hm", ConversationContext{}, nil)

	assert.Equal(t, "I can help you with that.", resp.Message)
	assert.Equal(t, IntentGeneralInquiry, resp.Intent)
	assert.Nil(t, resp.Action)
	assert.Empty(t, resp.Error)
}

func TestGenerate_TransportErrorFallsBack(t *testing.T) {
	fp := &fakeProvider{err: errors.New("connection reset")}
	c := NewComposer(fp, ComposerConfig{})

	resp := c.Generate(context.Background(), "hi", ConversationContext{Business: testBusiness()}, nil)

	assert.Equal(t, IntentError, resp.Intent)
	assert.InDelta(t, 0.1, resp.Confidence, 0.0001)
	assert.Contains(t, resp.Message, "Please contact Acme Plumbing directly")
	assert.Equal(t, "connection reset", resp.Error)
}

func TestGenerate_WithoutProvider(t *testing.T) {
	c := NewComposer(nil, ComposerConfig{})
	assert.False(t, c.Available())

	resp := c.Generate(context.Background(), "hi", ConversationContext{}, nil)
	assert.Equal(t, IntentError, resp.Intent)
	assert.Contains(t, resp.Message, "Please contact our team directly")
	assert.Equal(t, int64(0), c.Calls())
}

func TestParseFunctionCall(t *testing.T) {
	a, err := ParseFunctionCall(FuncSuggestContent, `{"contentIds":["x"]}`)
	require.NoError(t, err)
	sc := a.(SuggestContent)
	assert.Equal(t, IntentGeneralInquiry, sc.Intent)
	assert.InDelta(t, 0.8, sc.Confidence, 0.0001)

	_, err = ParseFunctionCall(FuncSuggestContent, `{"confidence": 4}`)
	var ae *ActionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, FuncSuggestContent, ae.Function)

	_, err = ParseFunctionCall(FuncSearchTraders, `{"query":""}`)
	require.ErrorAs(t, err, &ae)

	_, err = ParseFunctionCall(FuncSearchTraders, `{"query":"tea","type":"Wholesaler"}`)
	require.ErrorAs(t, err, &ae)

	_, err = ParseFunctionCall("book_flight", `{}`)
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "unknown function", ae.Reason)
}

func TestBuildSystemPrompt(t *testing.T) {
	b := testBusiness()
	b.Industry = "Software consultancy"
	b.Settings.OperatingHours = &business.OperatingHours{
		Enabled: true,
		Hours: map[string]business.DayHours{
			"tuesday": {Open: "08:00", Close: "16:00"},
			"sunday":  {Open: "closed"},
		},
	}
	hits := make([]business.KnowledgeItem, 7)
	for i := range hits {
		hits[i] = business.KnowledgeItem{Question: "Q" + string(rune('0'+i)), Answer: "A"}
	}

	tuesday := time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC)
	prompt := BuildSystemPrompt(b, hits, tuesday)

	assert.Contains(t, prompt, "You are an AI assistant for Acme Plumbing")
	assert.Contains(t, prompt, "• Tuesday: 08:00 - 16:00 (today)")
	assert.Contains(t, prompt, "• Sunday: Closed")
	assert.Contains(t, prompt, "• Phone: Contact via form")
	assert.Contains(t, prompt, "Q: Q4")
	assert.NotContains(t, prompt, "Q: Q5")
	assert.Contains(t, prompt, "INDUSTRY FOCUS:\nFocus on technical solutions, demos, support, and implementation services.")

	assert.Equal(t, "You are a helpful AI assistant. Provide clear and useful responses to user inquiries.", BuildSystemPrompt(nil, nil, tuesday))
}

func TestAnalyzeIntent(t *testing.T) {
	cases := map[string]string{
		"Feel free to contact us":       IntentContact,
		"Book an appointment any time":  IntentMeetingRequest,
		"Our services include drains":   IntentServiceInquiry,
		"The price is fair":             IntentPricingInquiry,
		"Sure thing":                    IntentGeneralInquiry,
		"Reach us to discuss the price": IntentContact,
	}
	for in, want := range cases {
		assert.Equal(t, want, AnalyzeIntent(in), in)
	}
}

func TestOpenAIProvider_AgainstHTTPServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer test-key"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "tool_calls", "message": {
				"role": "assistant",
				"tool_calls": [{"id": "call_1", "type": "function", "function": {
					"name": "suggest_content",
					"arguments": "{\"contentIds\":[\"schedule-meeting\"],\"intent\":\"meeting_request\",\"confidence\":0.9}"
				}}]
			}}]
		}`))
	}))
	defer srv.Close()

	provider, err := NewProvider(&ProviderConfig{Type: ProviderOpenAI, APIKey: "test-key", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	c := NewComposer(provider, ComposerConfig{Timeout: 5 * time.Second})
	resp := c.Generate(context.Background(), "can we meet?", ConversationContext{Business: testBusiness()}, nil)

	assert.Equal(t, IntentMeetingRequest, resp.Intent)
	assert.Equal(t, []string{"schedule-meeting"}, resp.SuggestedContent)
}

func TestNewProvider_RequiresKey(t *testing.T) {
	_, err := NewProvider(&ProviderConfig{Type: ProviderGroq})
	assert.EqualError(t, err, "GROQ_API_KEY is required")

	_, err = NewProvider(&ProviderConfig{Type: "claude", APIKey: "x"})
	assert.Error(t, err)

	p, err := NewProvider(&ProviderConfig{Type: ProviderDeepSeek, APIKey: "x"})
	require.NoError(t, err)
	assert.Equal(t, "DeepSeek", p.GetProviderName())
	assert.Equal(t, "deepseek-chat", p.Model())
}

package llm

import (
	"encoding/json"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
)

// Intent labels shared by every responder.
const (
	IntentGreeting        = "greeting"
	IntentThanks          = "thanks"
	IntentHours           = "hours_inquiry"
	IntentContact         = "contact_inquiry"
	IntentMeetingRequest  = "meeting_request"
	IntentMeetingInquiry  = "meeting_inquiry"
	IntentServiceInquiry  = "service_inquiry"
	IntentPricingInquiry  = "pricing_inquiry"
	IntentGeneralInquiry  = "general_inquiry"
	IntentGeneralHelp     = "general_help"
	IntentTraderDiscovery = "trader_discovery"
	IntentKnowledgeAnswer = "knowledge_base"
	IntentError           = "error"
)

// AIResponse is what every route in the chat pipeline produces.
type AIResponse struct {
	Message          string        `json:"message"`
	SuggestedContent []string      `json:"suggestedContent"`
	Intent           string        `json:"intent"`
	Confidence       float64       `json:"confidence"`
	FunctionCall     *FunctionCall `json:"functionCall,omitempty"`
	Error            string        `json:"error,omitempty"`

	// Action is the parsed tool call, nil for plain text replies.
	Action Action `json:"-"`
}

type FunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Turn is one prior chat message sent to the model as history.
type Turn struct {
	Role    string
	Content string
}

// ConversationContext is handed to Generate by value and not retained.
type ConversationContext struct {
	SessionID string
	Business  *business.Config
	Messages  []Turn
}

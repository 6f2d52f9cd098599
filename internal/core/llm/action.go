package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	FuncSuggestContent = "suggest_content"
	FuncSearchTraders  = "search_traders"
)

// Action is a validated tool call from the model.
type Action interface {
	ActionName() string
}

type SuggestContent struct {
	ContentIDs []string `json:"contentIds"`
	Intent     string   `json:"intent"`
	Confidence float64  `json:"confidence"`
}

func (SuggestContent) ActionName() string { return FuncSuggestContent }

type SearchTraders struct {
	Query    string   `json:"query"`
	Country  string   `json:"country,omitempty"`
	Products []string `json:"products,omitempty"`
	Type     string   `json:"type,omitempty"`
}

func (SearchTraders) ActionName() string { return FuncSearchTraders }

// ActionError reports a tool call that could not be turned into an Action.
type ActionError struct {
	Function string
	Reason   string
	Err      error
}

func (e *ActionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("function %s: %s: %v", e.Function, e.Reason, e.Err)
	}
	return fmt.Sprintf("function %s: %s", e.Function, e.Reason)
}

func (e *ActionError) Unwrap() error { return e.Err }

var traderTypes = map[string]bool{"Importer": true, "Exporter": true, "Both": true}

// ParseFunctionCall decodes and validates tool-call arguments.
func ParseFunctionCall(name, arguments string) (Action, error) {
	if strings.TrimSpace(arguments) == "" {
		arguments = "{}"
	}

	switch name {
	case FuncSuggestContent:
		var a SuggestContent
		if err := json.Unmarshal([]byte(arguments), &a); err != nil {
			return nil, &ActionError{Function: name, Reason: "malformed arguments", Err: err}
		}
		if a.Confidence < 0 || a.Confidence > 1 {
			return nil, &ActionError{Function: name, Reason: fmt.Sprintf("confidence %.2f out of range", a.Confidence)}
		}
		if a.Intent == "" {
			a.Intent = IntentGeneralInquiry
		}
		if a.Confidence == 0 {
			a.Confidence = 0.8
		}
		if a.ContentIDs == nil {
			a.ContentIDs = []string{}
		}
		return a, nil

	case FuncSearchTraders:
		var a SearchTraders
		if err := json.Unmarshal([]byte(arguments), &a); err != nil {
			return nil, &ActionError{Function: name, Reason: "malformed arguments", Err: err}
		}
		if strings.TrimSpace(a.Query) == "" {
			return nil, &ActionError{Function: name, Reason: "query is required"}
		}
		if a.Type != "" && !traderTypes[a.Type] {
			return nil, &ActionError{Function: name, Reason: fmt.Sprintf("unknown trader type %q", a.Type)}
		}
		return a, nil

	default:
		return nil, &ActionError{Function: name, Reason: "unknown function"}
	}
}

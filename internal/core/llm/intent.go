package llm

import "strings"

// AnalyzeIntent classifies a model reply by the first keyword family it contains.
func AnalyzeIntent(content string) string {
	lower := strings.ToLower(content)

	switch {
	case containsAny(lower, "contact", "reach"):
		return IntentContact
	case containsAny(lower, "meeting", "appointment"):
		return IntentMeetingRequest
	case containsAny(lower, "service", "product"):
		return IntentServiceInquiry
	case containsAny(lower, "price", "cost"):
		return IntentPricingInquiry
	default:
		return IntentGeneralInquiry
	}
}

// ContentForIntent maps an intent to the widget content panels worth suggesting.
func ContentForIntent(intent string) []string {
	switch intent {
	case IntentContact:
		return []string{"contact-form"}
	case IntentMeetingRequest:
		return []string{"schedule-meeting"}
	case IntentServiceInquiry:
		return []string{"services-overview"}
	case IntentPricingInquiry:
		return []string{"contact-form", "schedule-meeting"}
	default:
		return []string{}
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

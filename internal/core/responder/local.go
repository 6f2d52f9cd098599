package responder

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/llm"
)

var (
	greetingPhrases = []string{"good morning", "good afternoon", "good evening", "hello", "hi", "hey", "greetings", "howdy", "hola"}
	thanksWords     = []string{"thank", "thanks", "thx", "appreciate", "cheers"}
	hoursWords      = []string{"hour", "hours", "open", "opening", "close", "closing", "closed"}
	contactWords    = []string{"contact", "phone", "email", "reach", "address", "call", "location"}
)

// maxGreetingWords keeps "hi, what services do you offer?" away from the canned greeting.
const maxGreetingWords = 5

var greetingTemplates = []string{
	"Hello! Welcome to %s. How can I help you today?",
	"Hi there! Thanks for reaching out to %s. What can I do for you?",
	"Hey! I'm the %s assistant. Ask me anything about our services, hours or how to get in touch.",
}

var thanksTemplates = []string{
	"You're welcome! Is there anything else I can help you with?",
	"Happy to help! Let me know if you have any other questions.",
	"My pleasure! Feel free to ask if anything else comes up.",
}

// Local answers trivial messages without calling the model.
type Local struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// New uses rng for picking canned replies; nil seeds from the clock.
func New(rng *rand.Rand) *Local {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Local{rng: rng, now: time.Now}
}

// TryLocal returns nil when the message should go further down the pipeline.
func (l *Local) TryLocal(message string, b *business.Config) *llm.AIResponse {
	lower := strings.ToLower(strings.TrimSpace(message))
	if lower == "" {
		return nil
	}
	toks := words(lower)
	name := b.DisplayName("our business")

	switch {
	case isGreeting(toks):
		return &llm.AIResponse{
			Message:          fmt.Sprintf(l.pick(greetingTemplates), name),
			SuggestedContent: []string{},
			Intent:           llm.IntentGreeting,
			Confidence:       0.9,
		}
	case hasWord(toks, thanksWords):
		return &llm.AIResponse{
			Message:          l.pick(thanksTemplates),
			SuggestedContent: []string{},
			Intent:           llm.IntentThanks,
			Confidence:       0.9,
		}
	case hasWord(toks, hoursWords):
		return l.hoursResponse(lower, b, name)
	case hasWord(toks, contactWords):
		return contactResponse(b, name)
	}
	return nil
}

func (l *Local) hoursResponse(lower string, b *business.Config, name string) *llm.AIResponse {
	if b == nil || !b.HasHours() {
		return &llm.AIResponse{
			Message:          fmt.Sprintf("Our hours can vary. Please contact %s directly to confirm when we're open.", name),
			SuggestedContent: []string{"contact-form"},
			Intent:           llm.IntentHours,
			Confidence:       0.7,
		}
	}

	oh := b.Settings.OperatingHours
	var sb strings.Builder
	if day := business.MentionedDay(lower); day != "" {
		if h, ok := oh.Hours[day]; ok {
			if h.Closed() {
				sb.WriteString(fmt.Sprintf("On %s we're Closed.\n\n", business.Capitalize(day)))
			} else {
				sb.WriteString(fmt.Sprintf("On %s we're open %s.\n\n", business.Capitalize(day), h))
			}
		}
	}
	sb.WriteString(fmt.Sprintf("%s operating hours:\n", name))
	sb.WriteString(strings.Join(oh.Lines(l.now()), "\n"))

	return &llm.AIResponse{
		Message:          sb.String(),
		SuggestedContent: []string{},
		Intent:           llm.IntentHours,
		Confidence:       0.85,
	}
}

func contactResponse(b *business.Config, name string) *llm.AIResponse {
	var phone, email, address string
	if b != nil {
		phone, email, address = b.ContactPhone(), b.ContactEmail(), b.ContactAddress()
	}

	if phone == "" && email == "" && address == "" {
		return &llm.AIResponse{
			Message:          fmt.Sprintf("You can get in touch with %s through the contact form and we'll get back to you shortly.", name),
			SuggestedContent: []string{"contact-form"},
			Intent:           llm.IntentContact,
			Confidence:       0.7,
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You can reach %s through:\n", name))
	if phone != "" {
		sb.WriteString(fmt.Sprintf("📞 Phone: %s\n", phone))
	}
	if email != "" {
		sb.WriteString(fmt.Sprintf("📧 Email: %s\n", email))
	}
	if address != "" {
		sb.WriteString(fmt.Sprintf("📍 Address: %s\n", address))
	}

	return &llm.AIResponse{
		Message:          strings.TrimSpace(sb.String()),
		SuggestedContent: []string{"contact-form"},
		Intent:           llm.IntentContact,
		Confidence:       0.85,
	}
}

func (l *Local) pick(options []string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return options[l.rng.Intn(len(options))]
}

func isGreeting(toks []string) bool {
	if len(toks) == 0 || len(toks) > maxGreetingWords {
		return false
	}
	joined := strings.Join(toks, " ")
	for _, phrase := range greetingPhrases {
		if joined == phrase || strings.HasPrefix(joined, phrase+" ") {
			return true
		}
	}
	return false
}

func words(lower string) []string {
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '\''
	})
}

func hasWord(toks []string, set []string) bool {
	for _, w := range toks {
		for _, s := range set {
			if w == s {
				return true
			}
		}
	}
	return false
}

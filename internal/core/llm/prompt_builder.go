package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
)

// MaxPromptHits caps how many knowledge entries are embedded in the system prompt.
const MaxPromptHits = 5

var industryGuidance = []struct {
	keywords []string
	guidance string
}{
	{[]string{"restaurant", "food"}, "Focus on menu items, dietary restrictions, reservations, takeout/delivery, and dining experience."},
	{[]string{"healthcare", "medical"}, "Emphasize appointments, insurance acceptance, services offered, and professional expertise. Never provide medical advice."},
	{[]string{"retail", "shop"}, "Highlight products, pricing, availability, store hours, and purchasing options."},
	{[]string{"professional", "consultant"}, "Focus on expertise, consultation booking, case studies, and professional qualifications."},
	{[]string{"education", "training"}, "Emphasize courses, schedules, enrollment, certifications, and learning outcomes."},
	{[]string{"automotive", "car"}, "Focus on services, appointments, pricing, vehicle types, and maintenance schedules."},
	{[]string{"real estate", "property"}, "Highlight available properties, market expertise, consultation booking, and local knowledge."},
	{[]string{"technology", "software"}, "Focus on technical solutions, demos, support, and implementation services."},
}

// IndustryGuidance returns the guidance line of the first matching industry, or "".
func IndustryGuidance(industry string) string {
	lower := strings.ToLower(industry)
	for _, g := range industryGuidance {
		if containsAny(lower, g.keywords...) {
			return g.guidance
		}
	}
	return ""
}

// BuildSystemPrompt membuat system prompt dari business profile dan knowledge hits
func BuildSystemPrompt(b *business.Config, hits []business.KnowledgeItem, now time.Time) string {
	if b == nil {
		return "You are a helpful AI assistant. Provide clear and useful responses to user inquiries."
	}

	name := orDefault(b.Name, "this business")
	industry := orDefault(b.Industry, "service industry")
	personality := orDefault(b.Settings.AIPersonality, "friendly and professional")

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are an AI assistant for %s, representing a %s business.\n\n", name, industry))
	sb.WriteString("BUSINESS PROFILE:\n")
	sb.WriteString(orDefault(b.Description, "a professional service provider"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("PERSONALITY: Be %s in all interactions.\n\n", personality))

	sb.WriteString("CORE RESPONSIBILITIES:\n")
	sb.WriteString("1. Answer questions about the business accurately\n")
	sb.WriteString("2. Help customers find what they need\n")
	sb.WriteString("3. Guide users to take appropriate actions\n")
	sb.WriteString("4. Suggest relevant resources when helpful\n")
	sb.WriteString("5. Qualify potential leads professionally\n\n")

	sb.WriteString("BUSINESS DETAILS:\n")
	sb.WriteString(fmt.Sprintf("• Phone: %s\n", orDefault(b.ContactPhone(), "Contact via form")))
	sb.WriteString(fmt.Sprintf("• Email: %s\n", orDefault(b.ContactEmail(), "Available via contact form")))
	if addr := b.ContactAddress(); addr != "" {
		sb.WriteString(fmt.Sprintf("• Address: %s\n", addr))
	}
	if b.Website != "" {
		sb.WriteString(fmt.Sprintf("• Website: %s\n", b.Website))
	}
	if len(b.Services) > 0 {
		names := make([]string, 0, len(b.Services))
		for _, s := range b.Services {
			names = append(names, s.Name)
		}
		sb.WriteString(fmt.Sprintf("• Services: %s\n", strings.Join(names, ", ")))
	}

	if b.HasHours() {
		sb.WriteString("\nOPERATING HOURS:\n")
		for _, line := range b.Settings.OperatingHours.Lines(now) {
			sb.WriteString(line + "\n")
		}
	}

	if len(hits) > 0 {
		if len(hits) > MaxPromptHits {
			hits = hits[:MaxPromptHits]
		}
		sb.WriteString("\nRELEVANT INFORMATION:\n")
		for _, h := range hits {
			sb.WriteString(fmt.Sprintf("• Q: %s\n  A: %s\n", h.Question, h.Answer))
		}
	}

	if guidance := IndustryGuidance(industry); guidance != "" {
		sb.WriteString("\nINDUSTRY FOCUS:\n")
		sb.WriteString(guidance + "\n")
	}

	sb.WriteString("\nRESPONSE GUIDELINES:\n")
	sb.WriteString("1. Answer based on provided business context\n")
	sb.WriteString("2. If information isn't available, offer to connect them with the business\n")
	sb.WriteString("3. Suggest relevant actions (contact forms, scheduling, etc.)\n")
	sb.WriteString("4. Be helpful but don't make up information\n")
	sb.WriteString("5. Keep responses concise and actionable\n")
	sb.WriteString("6. Always maintain the specified personality tone\n\n")

	sb.WriteString("AVAILABLE ACTIONS TO SUGGEST:\n")
	sb.WriteString("• \"contact-form\" - For general inquiries and lead capture\n")
	sb.WriteString("• \"schedule-meeting\" - For booking appointments/consultations\n")
	sb.WriteString("• \"company-overview\" - For detailed business information\n")
	sb.WriteString("• \"services-overview\" - For service/product details\n\n")

	sb.WriteString("FUNCTION CALLING:\n")
	sb.WriteString("Use the suggest_content function when users need forms, booking, or specific information pages.\n\n")

	sb.WriteString(fmt.Sprintf("Remember: You represent %s. Be helpful, accurate, and always act in the business's best interest while serving the customer's needs.", name))

	return sb.String()
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

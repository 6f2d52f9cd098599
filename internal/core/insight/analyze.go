package insight

import (
	"fmt"
	"strings"
	"time"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
)

// Analysis is the derived view of a business profile used by authoring tools.
type Analysis struct {
	SuggestedKnowledge          []business.KnowledgeItem `json:"suggestedKnowledge"`
	MissingInformation          []string                 `json:"missingInformation"`
	OptimizationRecommendations []string                 `json:"optimizationRecommendations"`
	IndustryInsights            []string                 `json:"industryInsights"`
}

// industryProfile pairs the keywords of an industry with its recommendations and insights.
type industryProfile struct {
	keywords        []string
	recommendations []string
	insights        []string
}

var industryTable = []industryProfile{
	{
		keywords: []string{"restaurant", "food"},
		recommendations: []string{
			"Add menu items and dietary information to services",
			"Include delivery/takeout options in service areas",
		},
		insights: []string{
			"Consider adding online ordering and reservation capabilities",
			"Food businesses benefit from showcasing menu photos and reviews",
			"Include information about dietary restrictions and allergens",
		},
	},
	{
		keywords: []string{"healthcare", "medical"},
		recommendations: []string{
			"Add appointment booking capabilities",
			"Include insurance and payment information",
		},
		insights: []string{
			"Healthcare businesses should emphasize credentials and certifications",
			"Consider adding patient portal or appointment scheduling",
			"Include information about insurance acceptance and payment options",
		},
	},
	{
		keywords: []string{"retail", "shop"},
		recommendations: []string{
			"Add product catalog and pricing information",
			"Include shipping and return policies",
		},
		insights: []string{
			"Retail businesses benefit from product catalogs and inventory information",
			"Consider adding customer reviews and testimonials",
			"Include shipping, return, and warranty policies",
		},
	},
	{
		keywords: []string{"professional", "consultant"},
		recommendations: []string{
			"Add case studies and portfolio content",
			"Include consultation booking system",
		},
		insights: []string{
			"Professional services should highlight expertise and case studies",
			"Consider adding client testimonials and success stories",
			"Include clear consultation booking and pricing information",
		},
	},
}

var generalInsights = []string{
	"Regular website scraping keeps your AI knowledge up-to-date",
	"Lead capture forms help convert visitors into customers",
	"Voice support improves accessibility and user experience",
}

// Analyze is a pure function of the profile; calling it twice yields the same result.
func Analyze(b *business.Config) Analysis {
	if b == nil {
		return Analysis{}
	}
	return Analysis{
		SuggestedKnowledge:          SuggestKnowledge(b),
		MissingInformation:          missingInformation(b),
		OptimizationRecommendations: recommendations(b),
		IndustryInsights:            industryInsights(b),
	}
}

// SuggestKnowledge derives Q/A entries from the structured profile fields.
// Priorities count down from 100 in the order the entries are generated.
func SuggestKnowledge(b *business.Config) []business.KnowledgeItem {
	var out []business.KnowledgeItem
	priority := 100
	add := func(item business.KnowledgeItem) {
		item.Priority = priority
		priority--
		out = append(out, item)
	}

	if b.Description != "" {
		add(business.KnowledgeItem{
			ID:       "kb_overview",
			Question: fmt.Sprintf("What does %s do?", b.Name),
			Answer:   b.Description,
			Tags:     []string{"overview", "about", "business"},
		})
	}

	if len(b.Services) > 0 {
		names := make([]string, 0, len(b.Services))
		for i, svc := range b.Services {
			names = append(names, svc.Name)
			add(business.KnowledgeItem{
				ID:         fmt.Sprintf("kb_service_%d", i),
				Question:   fmt.Sprintf("Tell me about %s", svc.Name),
				Answer:     serviceAnswer(svc),
				Tags:       []string{"services", strings.Join(strings.Fields(strings.ToLower(svc.Name)), "-")},
				ContentIDs: []string{"services-overview"},
			})
		}
		add(business.KnowledgeItem{
			ID:         "kb_services_list",
			Question:   "What services do you offer?",
			Answer:     fmt.Sprintf("We offer the following services: %s. Would you like more details about any specific service?", strings.Join(names, ", ")),
			Tags:       []string{"services", "offerings"},
			ContentIDs: []string{"services-overview"},
		})
	}

	phone, email, address := b.ContactPhone(), b.ContactEmail(), b.ContactAddress()
	if phone != "" || email != "" || address != "" {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("You can reach %s through:\n", b.Name))
		if phone != "" {
			sb.WriteString(fmt.Sprintf("📞 Phone: %s\n", phone))
		}
		if email != "" {
			sb.WriteString(fmt.Sprintf("📧 Email: %s\n", email))
		}
		if address != "" {
			sb.WriteString(fmt.Sprintf("📍 Address: %s\n", address))
		}
		add(business.KnowledgeItem{
			ID:         "kb_contact",
			Question:   "How can I contact you?",
			Answer:     strings.TrimSpace(sb.String()),
			Tags:       []string{"contact", "phone", "email", "address"},
			ContentIDs: []string{"contact-form"},
		})
	}

	if b.HasHours() {
		lines := b.Settings.OperatingHours.Lines(time.Time{})
		add(business.KnowledgeItem{
			ID:       "kb_hours",
			Question: "What are your operating hours?",
			Answer:   fmt.Sprintf("%s operating hours:\n%s", b.Name, strings.Join(lines, "\n")),
			Tags:     []string{"hours", "schedule", "open", "closed"},
		})
	}

	if len(b.ServiceAreas) > 0 {
		add(business.KnowledgeItem{
			ID:       "kb_service_areas",
			Question: "What areas do you serve?",
			Answer:   fmt.Sprintf("We serve the following areas: %s.", strings.Join(b.ServiceAreas, ", ")),
			Tags:     []string{"location", "service-areas", "coverage"},
		})
	}

	if b.Mission != "" {
		add(business.KnowledgeItem{
			ID:       "kb_mission",
			Question: fmt.Sprintf("What is %s's mission?", b.Name),
			Answer:   b.Mission,
			Tags:     []string{"mission", "values", "about"},
		})
	}

	if b.Vision != "" {
		add(business.KnowledgeItem{
			ID:       "kb_vision",
			Question: fmt.Sprintf("What is %s's vision?", b.Name),
			Answer:   b.Vision,
			Tags:     []string{"vision", "future", "goals"},
		})
	}

	if b.Certification != "" {
		add(business.KnowledgeItem{
			ID:       "kb_certification",
			Question: "Do you have any certifications?",
			Answer:   fmt.Sprintf("Yes, %s is %s certified.", b.Name, b.Certification),
			Tags:     []string{"certification", "credentials", "quality"},
		})
	}

	if len(b.Specialties) > 0 {
		add(business.KnowledgeItem{
			ID:       "kb_specialties",
			Question: "What are your specialties?",
			Answer:   fmt.Sprintf("Our specialties include: %s.", strings.Join(b.Specialties, ", ")),
			Tags:     []string{"specialties", "expertise", "focus"},
		})
	}

	return out
}

func serviceAnswer(svc business.Service) string {
	if svc.Description != "" {
		return svc.Description
	}
	answer := "We offer " + svc.Name
	if svc.Price != "" {
		answer += " for " + svc.Price
	}
	if svc.Duration != "" {
		answer += " (" + svc.Duration + ")"
	}
	return answer + "."
}

func missingInformation(b *business.Config) []string {
	missing := []string{}

	if b.ContactPhone() == "" {
		missing = append(missing, "Phone number for customer contact")
	}
	if b.ContactEmail() == "" {
		missing = append(missing, "Email address for inquiries")
	}
	if b.ContactAddress() == "" {
		missing = append(missing, "Business address or location")
	}
	if len(b.Services) == 0 {
		missing = append(missing, "Services or products offered")
	}
	if oh := b.Settings.OperatingHours; oh == nil || !oh.Enabled {
		missing = append(missing, "Operating hours and schedule")
	}
	if len(b.Description) < 50 {
		missing = append(missing, "Detailed business description")
	}
	if len(b.ServiceAreas) == 0 {
		missing = append(missing, "Service areas or geographic coverage")
	}
	if b.Mission == "" && b.Vision == "" {
		missing = append(missing, "Mission statement or company vision")
	}
	for _, svc := range b.Services {
		if svc.Price == "" {
			missing = append(missing, "Pricing information for services")
			break
		}
	}

	return missing
}

func recommendations(b *business.Config) []string {
	recs := []string{}

	if len(b.KnowledgeBase) < 5 {
		recs = append(recs, "Add more knowledge base entries to handle common customer questions")
	}
	if len(b.Content) < 3 {
		recs = append(recs, "Add content items (PDFs, videos, forms) to better engage visitors")
	}
	if !b.Settings.EnableLeadCapture {
		recs = append(recs, "Enable lead capture to collect potential customer information")
	}
	if !b.Settings.EnableVoice {
		recs = append(recs, "Consider enabling voice support for better accessibility")
	}
	if b.Scraping == nil {
		recs = append(recs, "Configure website scraping to automatically update knowledge base")
	}

	if p := matchIndustry(b.Industry); p != nil {
		recs = append(recs, p.recommendations...)
	}
	return recs
}

func industryInsights(b *business.Config) []string {
	var out []string
	if p := matchIndustry(b.Industry); p != nil {
		out = append(out, p.insights...)
	}
	return append(out, generalInsights...)
}

// matchIndustry returns the first table entry whose keyword is a substring of the industry.
func matchIndustry(industry string) *industryProfile {
	lower := strings.ToLower(industry)
	for i := range industryTable {
		for _, kw := range industryTable[i].keywords {
			if strings.Contains(lower, kw) {
				return &industryTable[i]
			}
		}
	}
	return nil
}

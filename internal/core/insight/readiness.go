package insight

import "github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"

// Category caps. They sum to 100.
const (
	maxBasicInfo     = 25
	maxContactInfo   = 25
	maxServices      = 25
	maxKnowledgeBase = 15
	maxContent       = 10
)

type Breakdown struct {
	BasicInfo     int `json:"basicInfo"`
	ContactInfo   int `json:"contactInfo"`
	Services      int `json:"services"`
	KnowledgeBase int `json:"knowledgeBase"`
	Content       int `json:"content"`
}

type Readiness struct {
	Score     int       `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}

// ReadinessScore is a weighted completeness metric in [0, 100]. Filling in more
// fields never lowers it.
func ReadinessScore(b *business.Config) Readiness {
	if b == nil {
		return Readiness{}
	}

	var bd Breakdown

	if b.Name != "" {
		bd.BasicInfo += 5
	}
	if len(b.Description) >= 50 {
		bd.BasicInfo += 10
	}
	if b.Industry != "" {
		bd.BasicInfo += 5
	}
	if b.Mission != "" || b.Vision != "" {
		bd.BasicInfo += 5
	}

	if b.ContactPhone() != "" {
		bd.ContactInfo += 8
	}
	if b.ContactEmail() != "" {
		bd.ContactInfo += 8
	}
	if b.ContactAddress() != "" {
		bd.ContactInfo += 4
	}
	if oh := b.Settings.OperatingHours; oh != nil && oh.Enabled {
		bd.ContactInfo += 5
	}

	if len(b.Services) > 0 {
		detailed := 0
		for _, svc := range b.Services {
			if svc.Description != "" {
				detailed++
			}
		}
		bd.Services = 15 + min(10, detailed*2)
	}

	bd.KnowledgeBase = min(maxKnowledgeBase, len(b.KnowledgeBase)*3)
	bd.Content = min(maxContent, len(b.Content)*2)

	bd.BasicInfo = min(bd.BasicInfo, maxBasicInfo)
	bd.ContactInfo = min(bd.ContactInfo, maxContactInfo)
	bd.Services = min(bd.Services, maxServices)

	total := bd.BasicInfo + bd.ContactInfo + bd.Services + bd.KnowledgeBase + bd.Content
	return Readiness{Score: min(100, total), Breakdown: bd}
}

package business

import (
	"regexp"
	"strings"
)

// Config is the per-business profile the widget is configured with.
type Config struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Industry      string          `json:"industry"`
	Website       string          `json:"website,omitempty"`
	Tagline       string          `json:"tagline,omitempty"`
	Founded       string          `json:"founded,omitempty"`
	Mission       string          `json:"mission,omitempty"`
	Vision        string          `json:"vision,omitempty"`
	Certification string          `json:"certification,omitempty"`
	Address       string          `json:"address,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	Email         string          `json:"email,omitempty"`
	Branding      Branding        `json:"branding"`
	Services      []Service       `json:"services,omitempty"`
	Specialties   []string        `json:"specialties,omitempty"`
	Categories    []string        `json:"categories,omitempty"`
	Locations     []string        `json:"locations,omitempty"`
	ServiceAreas  []string        `json:"serviceAreas,omitempty"`
	Statistics    []Statistic     `json:"statistics,omitempty"`
	Content       []ContentItem   `json:"content"`
	KnowledgeBase []KnowledgeItem `json:"knowledgeBase"`
	Scraping      *ScrapingConfig `json:"scrapingConfig,omitempty"`
	Settings      Settings        `json:"settings"`
}

type Branding struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	Logo           string `json:"logo,omitempty"`
	Font           string `json:"font,omitempty"`
}

type Service struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price,omitempty"`
	Duration    string `json:"duration,omitempty"`
}

type Statistic struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ContentItem is something the widget's content panel can show (pdf, video, form, ...).
type ContentItem struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category"`
}

// KnowledgeItem is a question/answer pair used for keyword retrieval.
// Higher Priority wins ties.
type KnowledgeItem struct {
	ID         string   `json:"id"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Tags       []string `json:"tags"`
	ContentIDs []string `json:"contentIds,omitempty"`
	Priority   int      `json:"priority"`
}

type ScrapingConfig struct {
	Enabled          bool              `json:"enabled"`
	Website          string            `json:"website"`
	Selectors        map[string]string `json:"selectors,omitempty"`
	ContentPriority  []string          `json:"contentPriority,omitempty"`
	UpdateSchedule   string            `json:"updateSchedule"` // daily, weekly, monthly, manual
	ExcludeSelectors []string          `json:"excludeSelectors,omitempty"`
}

type Settings struct {
	WelcomeMessage    string          `json:"welcomeMessage"`
	AIPersonality     string          `json:"aiPersonality"`
	EnableVoice       bool            `json:"enableVoice"`
	EnableLeadCapture bool            `json:"enableLeadCapture"`
	OperatingHours    *OperatingHours `json:"operatingHours,omitempty"`
	ContactInfo       *ContactInfo    `json:"contactInfo,omitempty"`
}

type ContactInfo struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// ContactPhone prefers the top-level field over settings.contactInfo.
func (c *Config) ContactPhone() string {
	if c.Phone != "" {
		return c.Phone
	}
	if c.Settings.ContactInfo != nil {
		return c.Settings.ContactInfo.Phone
	}
	return ""
}

func (c *Config) ContactEmail() string {
	if c.Email != "" {
		return c.Email
	}
	if c.Settings.ContactInfo != nil {
		return c.Settings.ContactInfo.Email
	}
	return ""
}

func (c *Config) ContactAddress() string {
	if c.Address != "" {
		return c.Address
	}
	if c.Settings.ContactInfo != nil {
		return c.Settings.ContactInfo.Address
	}
	return ""
}

// HasHours reports whether operating hours are enabled and non-empty.
func (c *Config) HasHours() bool {
	oh := c.Settings.OperatingHours
	return oh != nil && oh.Enabled && len(oh.Hours) > 0
}

// DisplayName returns the business name or a neutral fallback.
func (c *Config) DisplayName(fallback string) string {
	if c == nil || strings.TrimSpace(c.Name) == "" {
		return fallback
	}
	return c.Name
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a display name into a stable identifier.
func Slug(name string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
)

var weekDays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Answers is what generate-config collects interactively.
type Answers struct {
	Name        string
	Industry    string
	Description string

	Phone   string
	Email   string
	Address string
	Website string

	// Hours maps a week day to "09:00-17:00" or "closed". Nil skips operating hours.
	Hours map[string]string

	PrimaryColor   string
	SecondaryColor string

	Services []business.Service
}

func init() {
	var force bool

	cmd := &cobra.Command{
		Use:   "generate-config",
		Short: "Create a business profile from interactive prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := getBusinessPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			answers := collectAnswers(newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()))
			if strings.TrimSpace(answers.Name) == "" {
				return fmt.Errorf("business name is required")
			}

			if err := writeConfig(path, BuildConfig(answers)); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n✅ Configuration generated successfully!\n")
			fmt.Fprintf(out, "📁 Saved to: %s\n", path)
			fmt.Fprintln(out, "💡 Run `widgetctl validate` to check your setup")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing profile")

	RootCmd.AddCommand(cmd)
}

type prompter struct {
	r *bufio.Reader
	w io.Writer
}

func newPrompter(r io.Reader, w io.Writer) *prompter {
	return &prompter{r: bufio.NewReader(r), w: w}
}

// ask returns the trimmed answer; EOF reads as an empty answer.
func (p *prompter) ask(question string) string {
	fmt.Fprint(p.w, question)
	line, _ := p.r.ReadString('\n')
	return strings.TrimSpace(line)
}

func (p *prompter) section(title string) {
	fmt.Fprintf(p.w, "\n%s\n", title)
}

func collectAnswers(p *prompter) Answers {
	var a Answers

	p.section("📋 Basic Information")
	a.Name = p.ask("Business name: ")
	a.Industry = p.ask("Industry (e.g., Restaurant, Healthcare, Retail): ")
	a.Description = p.ask("Brief description: ")

	p.section("📞 Contact Information")
	a.Phone = p.ask("Phone number: ")
	a.Email = p.ask("Email address: ")
	a.Address = p.ask("Address (optional): ")
	a.Website = p.ask("Website URL (optional): ")

	p.section("🕒 Business Hours")
	if strings.EqualFold(p.ask("Do you want to set business hours? (y/n): "), "y") {
		a.Hours = make(map[string]string, len(weekDays))
		for _, day := range weekDays {
			a.Hours[day] = p.ask(fmt.Sprintf("%s (e.g., \"09:00-17:00\" or \"closed\"): ", titleCase(day)))
		}
	}

	p.section("🎨 Branding")
	a.PrimaryColor = p.ask("Primary brand color (hex code, e.g., #2563eb): ")
	a.SecondaryColor = p.ask("Secondary color (optional): ")

	p.section("💼 Services/Products")
	for {
		name := p.ask("Add a service/product (or press Enter to skip): ")
		if name == "" {
			break
		}
		a.Services = append(a.Services, business.Service{
			Name:        name,
			Description: p.ask(fmt.Sprintf("Description for %q: ", name)),
		})
		if !strings.EqualFold(p.ask("Add another? (y/n): "), "y") {
			break
		}
	}
	return a
}

// BuildConfig turns the answers into a profile with a starter knowledge base.
func BuildConfig(a Answers) *business.Config {
	primary := a.PrimaryColor
	if primary == "" {
		primary = "#2563eb"
	}
	secondary := a.SecondaryColor
	if secondary == "" {
		secondary = "#64748b"
	}

	cfg := &business.Config{
		ID:          business.Slug(a.Name),
		Name:        a.Name,
		Industry:    a.Industry,
		Description: a.Description,
		Website:     a.Website,
		Phone:       a.Phone,
		Email:       a.Email,
		Address:     a.Address,
		Branding: business.Branding{
			PrimaryColor:   primary,
			SecondaryColor: secondary,
			Logo:           "/images/company/logo.png",
		},
		Services: a.Services,
		Content:  []business.ContentItem{},
		Scraping: &business.ScrapingConfig{
			Enabled:        false,
			Website:        a.Website,
			UpdateSchedule: "manual",
		},
		Settings: business.Settings{
			WelcomeMessage: fmt.Sprintf("Hello! Welcome to %s. How can I help you today?", a.Name),
			AIPersonality:  "friendly and professional",
			ContactInfo: &business.ContactInfo{
				Phone:   a.Phone,
				Email:   a.Email,
				Address: a.Address,
			},
		},
	}

	kb := []business.KnowledgeItem{
		{
			ID:       "kb_about",
			Question: fmt.Sprintf("What is %s?", a.Name),
			Answer:   a.Description,
			Tags:     nonEmpty(strings.ToLower(a.Name), strings.ToLower(a.Industry), "about"),
			Priority: 10,
		},
		{
			ID:       "kb_contact",
			Question: "How can I contact you?",
			Answer:   contactAnswer(a),
			Tags:     []string{"contact", "phone", "email", "address", "location"},
			Priority: 9,
		},
	}

	if a.Hours != nil {
		hours := &business.OperatingHours{Enabled: true, Hours: make(map[string]business.DayHours, len(a.Hours))}
		var parts []string
		for _, day := range weekDays {
			dh := parseDayHours(a.Hours[day])
			hours.Hours[day] = dh
			parts = append(parts, fmt.Sprintf("%s: %s", titleCase(day), dh))
		}
		cfg.Settings.OperatingHours = hours
		kb = append(kb, business.KnowledgeItem{
			ID:       "kb_hours",
			Question: "What are your business hours?",
			Answer:   "Our business hours are: " + strings.Join(parts, ", "),
			Tags:     []string{"hours", "open", "closed", "schedule", "time"},
			Priority: 8,
		})
	}

	for i, svc := range a.Services {
		kb = append(kb, business.KnowledgeItem{
			ID:       fmt.Sprintf("kb_service_%d", i),
			Question: fmt.Sprintf("Tell me about %s", svc.Name),
			Answer:   svc.Description,
			Tags:     []string{strings.ToLower(svc.Name), "service", "product"},
			Priority: 5,
		})
	}
	cfg.KnowledgeBase = kb
	return cfg
}

func contactAnswer(a Answers) string {
	var b strings.Builder
	b.WriteString("You can reach us")
	switch {
	case a.Phone != "" && a.Email != "":
		fmt.Fprintf(&b, " at %s or %s.", a.Phone, a.Email)
	case a.Phone != "":
		fmt.Fprintf(&b, " at %s.", a.Phone)
	case a.Email != "":
		fmt.Fprintf(&b, " at %s.", a.Email)
	default:
		b.WriteString(" through the contact form.")
	}
	if a.Address != "" {
		fmt.Fprintf(&b, " We're located at %s.", a.Address)
	}
	return b.String()
}

// parseDayHours reads "09:00-17:00"; anything else is a closed day.
func parseDayHours(s string) business.DayHours {
	open, closing, ok := strings.Cut(s, "-")
	open, closing = strings.TrimSpace(open), strings.TrimSpace(closing)
	if !ok || open == "" || closing == "" {
		return business.DayHours{Open: "closed", Close: "closed"}
	}
	return business.DayHours{Open: open, Close: closing}
}

func writeConfig(path string, cfg *business.Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/shared/config"
)

var errValidationFailed = errors.New("some checks failed")

// CheckResult is one line of the validate report.
type CheckResult struct {
	Name string
	OK   bool
	Hint string
}

func init() {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check environment variables and the business profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg := config.LoadConfig()

			ok := report(out, "Environment Configuration", CheckEnvironment(cfg))

			path := getBusinessPath()
			data, err := os.ReadFile(path)
			if err != nil {
				ok = report(out, "Business Configuration", []CheckResult{{
					Name: path + " exists",
					Hint: "Run: widgetctl generate-config",
				}}) && ok
			} else {
				ok = report(out, "Business Configuration", CheckBusiness(data)) && ok
			}

			fmt.Fprintln(out, "\n=== Summary ===")
			if !ok {
				fmt.Fprintln(out, "✗ Some checks failed. Please fix the issues above.")
				return errValidationFailed
			}
			fmt.Fprintln(out, "✓ All checks passed! The widget is ready to run.")
			return nil
		},
	}

	RootCmd.AddCommand(cmd)
}

func report(w io.Writer, title string, results []CheckResult) bool {
	fmt.Fprintf(w, "\n=== %s ===\n", title)
	ok := true
	for _, r := range results {
		if r.OK {
			fmt.Fprintf(w, "✓ %s\n", r.Name)
			continue
		}
		ok = false
		fmt.Fprintf(w, "✗ %s\n", r.Name)
		if r.Hint != "" {
			fmt.Fprintf(w, "  %s\n", r.Hint)
		}
	}
	return ok
}

// CheckEnvironment verifies the provider key and the optional integrations.
func CheckEnvironment(cfg *config.Config) []CheckResult {
	keyVar := map[string]string{
		"groq":     "GROQ_API_KEY",
		"deepseek": "DEEPSEEK_API_KEY",
	}[cfg.LLMProvider]
	if keyVar == "" {
		keyVar = "OPENAI_API_KEY"
	}

	results := []CheckResult{{
		Name: keyVar + " is configured",
		OK:   cfg.AIEnabled(),
		Hint: fmt.Sprintf("Set %s in .env (LLM_PROVIDER=%s)", keyVar, cfg.LLMProvider),
	}}
	if cfg.CacheBackend == "redis" {
		results = append(results, CheckResult{
			Name: "REDIS_ADDR is configured",
			OK:   cfg.RedisAddr != "",
			Hint: "Set REDIS_ADDR or use CACHE_BACKEND=memory",
		})
	}
	return results
}

var requiredFields = []struct {
	name  string
	value func(b *business.Config) string
}{
	{"name", func(b *business.Config) string { return b.Name }},
	{"industry", func(b *business.Config) string { return b.Industry }},
	{"description", func(b *business.Config) string { return b.Description }},
	{"contact phone", func(b *business.Config) string { return b.ContactPhone() }},
	{"contact email", func(b *business.Config) string { return b.ContactEmail() }},
	{"branding.primaryColor", func(b *business.Config) string { return b.Branding.PrimaryColor }},
}

// CheckBusiness validates the raw profile against the schema and flags required
// fields that are empty or still hold template placeholders.
func CheckBusiness(data []byte) []CheckResult {
	if err := business.Validate(data); err != nil {
		return []CheckResult{{Name: "profile matches schema", Hint: err.Error()}}
	}

	var b business.Config
	if err := json.Unmarshal(data, &b); err != nil {
		return []CheckResult{{Name: "profile is valid JSON", Hint: err.Error()}}
	}

	results := []CheckResult{{Name: "profile matches schema", OK: true}}
	for _, f := range requiredFields {
		v := strings.TrimSpace(f.value(&b))
		configured := v != "" && !isPlaceholder(v)
		r := CheckResult{Name: f.name + " configured", OK: configured}
		if !configured {
			r.Name = f.name + " needs configuration"
		}
		results = append(results, r)
	}
	return results
}

func isPlaceholder(v string) bool {
	return strings.Contains(v, "Your ") || strings.Contains(v, "[YOUR_")
}

// Package cli implements widgetctl, the setup helper for the widget backend.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var businessPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:          "widgetctl",
	Short:        "Set up and check a business chat widget deployment",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&businessPath, "business", "b", "", "Business profile path (default: $BUSINESS_FILE or data/business.json)")
}

func getBusinessPath() string {
	if businessPath != "" {
		return businessPath
	}
	if env := os.Getenv("BUSINESS_FILE"); env != "" {
		return env
	}
	return "data/business.json"
}

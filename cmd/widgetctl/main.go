package main

import (
	"os"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notesmith/smart-notes/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "smart-notes-configure",
		Short: "Configuration tool for Smart Notes API",
		Long:  "CLI tool for configuring OAuth2 providers, CORS and rate limits",
	}

	rootCmd.AddCommand(commands.NewOAuthCmd())
	rootCmd.AddCommand(commands.NewCorsCmd())
	rootCmd.AddCommand(commands.NewRatelimitCmd())
	rootCmd.AddCommand(commands.NewUsersCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

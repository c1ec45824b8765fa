package cmd

import (
	"fmt"
	"os"

	"github.com/Vishruth-S/Project-Beaver/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	dbPath     string
	apiURL     string
	configPath string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "beaver",
	Short: "Chat with API documentation from your terminal",
	Long: `Beaver is a client for a documentation question-answering service.

It ingests API documentation into backend collections and lets you ask
questions against them, streaming answers token by token with source
references. Conversations are persisted locally, so every session survives
restarts.

Features:
  • Ingest documentation URLs into a named collection
  • Ask questions with streamed, incrementally-rendered answers
  • Conversation history sent as context for follow-up questions
  • Persistent sessions with full transcripts
  • Export transcripts (Markdown, JSON, JSONL, YAML)

Quick Start:
  beaver ingest https://docs.stripe.com/api --name Stripe
  beaver chat stripe_session_1
  beaver list

For detailed usage, see: https://github.com/Vishruth-S/Project-Beaver`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Custom database location (path to the local state database)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Backend API base URL (overrides config and BEAVER_API_URL)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.config/beaver/config.yaml)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

/*
Package main is the entry point for the engage CLI.

engage is the engagement-state sidecar for the storefront UI: it keeps the
bounded recently-viewed cache and the trending-searches ranking in a local
database, and serves them (plus debounced product suggestions) to the
client-rendered storefront over HTTP.

Usage:
  engage [command]

Available Commands:
  serve       Run the engagement HTTP facade
  recent      Show or clear the recently-viewed products
  trending    Show the top trending search terms
  search      Search the product catalog (records the term)
  suggest     Interactively exercise the suggestion pipeline
  help        Help about any command
*/
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/openshelf/engage/internal/cli"
	"github.com/openshelf/engage/internal/version"
)

func main() {
	// Load .env before anything reads the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	rootCmd := &cobra.Command{
		Use:   "engage",
		Short: "Local engagement state for the storefront UI",
		Long: `engage keeps the storefront's per-user engagement state on this machine:

  • recently viewed products — bounded, deduplicated, persisted
  • trending searches        — ranked purely from your own search history
  • live suggestions         — debounced lookups against the backend catalog

State lives in a local SQLite database; the shopping backend is only ever
consulted for read-only product search.`,
		Version: version.GetVersion(),
	}

	rootCmd.AddCommand(cli.NewServeCmd())
	rootCmd.AddCommand(cli.NewRecentCmd())
	rootCmd.AddCommand(cli.NewTrendingCmd())
	rootCmd.AddCommand(cli.NewSearchCmd())
	rootCmd.AddCommand(cli.NewSuggestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewTrendingCmd creates the 'trending' command for inspecting the local
// trending-searches ranking.
func NewTrendingCmd() *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "trending",
		Short: "Show the top trending search terms",
		Example: `  engage trending
  engage trending --limit 10
  engage trending --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrending(limit, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of terms to show (0 = configured default)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// runTrending displays the top-N trending terms.
func runTrending(limit int, jsonOutput bool) error {
	svc, err := openServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	if limit <= 0 {
		limit = svc.cfg.Suggest.TrendingSize
	}
	terms := svc.trends.TopN(limit)

	if jsonOutput {
		data, err := json.MarshalIndent(terms, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode terms: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(terms) == 0 {
		fmt.Println("No searches recorded yet.")
		return nil
	}

	fmt.Printf("Trending searches (top %d):\n\n", len(terms))
	for i, term := range terms {
		fmt.Printf("  %d. %s (%d)\n", i+1, term.Term, term.Count)
	}

	return nil
}

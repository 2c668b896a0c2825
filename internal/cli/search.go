package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/openshelf/engage/internal/catalog"
)

// NewSearchCmd creates the 'search' command: the primary search action.
//
// Unlike live suggestions, a submitted search is an acceptance, so the term
// is recorded into the trending ranking before results print.
func NewSearchCmd() *cobra.Command {
	var limit int
	var offset int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the product catalog",
		Args:  cobra.MinimumNArgs(1),
		Example: `  engage search rice
  engage search "brown rice" --limit 10 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(strings.Join(args, " "), limit, offset, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum results (0 = configured page size)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Result offset for paging")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// runSearch records the term and queries the backend search endpoint.
func runSearch(query string, limit, offset int, jsonOutput bool) error {
	svc, err := openServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	// Trending accounting happens before the search itself, matching the
	// acceptance semantics of the suggestion pipeline.
	svc.trends.RecordSearch(query)

	if limit <= 0 {
		limit = svc.cfg.Suggest.PageSize
	}

	client := catalog.NewClient(svc.cfg.SearchBaseURL)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	items, err := client.SearchProducts(ctx, query, limit, offset)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(items) == 0 {
		fmt.Printf("No products found for %q.\n", query)
		return nil
	}

	fmt.Printf("Results for %q (%d):\n\n", query, len(items))
	for _, item := range items {
		fmt.Printf("  %s  %.2f  (%s)\n", item.Name, item.Price, item.ID)
	}

	return nil
}

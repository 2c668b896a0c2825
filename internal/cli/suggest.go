package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/openshelf/engage/internal/catalog"
	"github.com/openshelf/engage/internal/suggest"
)

// NewSuggestCmd creates the 'suggest' command: an interactive loop that
// drives the suggestion pipeline end to end against the real backend.
//
// It exists for development: each entered line plays the role of the search
// box's current text, so debounce, staleness handling and the trending
// fallback can be observed without the storefront UI.
func NewSuggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Interactively exercise the suggestion pipeline",
		Long: `Start an interactive prompt wired to the suggestion pipeline.

Each entered line becomes the live query. Lines starting with "!" accept
the rest as a search term, and "/t <n>" clicks the n-th trending term.
An empty line shows the trending view. Ctrl-D exits.`,
		Example: `  engage suggest`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest()
		},
	}

	return cmd
}

// runSuggest drives the pipeline from stdin lines.
func runSuggest() error {
	svc, err := openServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	searcher := catalog.NewClient(svc.cfg.SearchBaseURL)

	pipeline := suggest.NewPipeline(searcher, svc.trends, suggest.Options{
		MinQueryLength: svc.cfg.Suggest.MinQueryLength,
		DebounceDelay:  time.Duration(svc.cfg.Suggest.DebounceMs) * time.Millisecond,
		PageSize:       svc.cfg.Suggest.PageSize,
		TrendingSize:   svc.cfg.Suggest.TrendingSize,
		OnUpdate:       printView,
		OnSubmit: func(term string, product *catalog.ProductSummary) {
			if product != nil {
				fmt.Printf("-> submitted %q with product %s\n", term, product.ID)
				return
			}
			fmt.Printf("-> submitted %q\n", term)
		},
	})
	defer pipeline.Close()

	fmt.Println("Type a query; !term accepts, /t <n> clicks a trending term, Ctrl-D exits.")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "!"):
			pipeline.OnSuggestionAccepted(strings.TrimPrefix(line, "!"), nil)

		case strings.HasPrefix(line, "/t"):
			arg := strings.TrimSpace(strings.TrimPrefix(line, "/t"))
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 {
				fmt.Println("Usage: /t <n>")
				continue
			}
			terms := svc.trends.TopN(svc.cfg.Suggest.TrendingSize)
			if n > len(terms) {
				fmt.Printf("Only %d trending terms available.\n", len(terms))
				continue
			}
			pipeline.OnTrendingTermClicked(terms[n-1].Term)

		default:
			pipeline.OnQueryChange(line)
		}
	}

	return scanner.Err()
}

// printView renders a pipeline view to stdout.
func printView(view suggest.View) {
	if view.ShowTrending {
		if len(view.Trending) == 0 {
			fmt.Println("[trending] (empty)")
			return
		}
		fmt.Print("[trending] ")
		for i, term := range view.Trending {
			if i > 0 {
				fmt.Print(", ")
			}
			fmt.Printf("%s(%d)", term.Term, term.Count)
		}
		fmt.Println()
		return
	}

	switch view.State {
	case suggest.StatePending:
		fmt.Printf("[%s] %q ...\n", view.State, view.Query)
	case suggest.StateFulfilled:
		fmt.Printf("[%s] %q -> %d suggestions\n", view.State, view.Query, len(view.Suggestions))
		for _, item := range view.Suggestions {
			fmt.Printf("    %s  %.2f  (%s)\n", item.Name, item.Price, item.ID)
		}
	case suggest.StateErrored:
		fmt.Printf("[%s] %q (suggestions unavailable)\n", view.State, view.Query)
	default:
		fmt.Printf("[%s] %q\n", view.State, view.Query)
	}
}

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewRecentCmd creates the 'recent' command for inspecting the
// recently-viewed cache.
func NewRecentCmd() *cobra.Command {
	var limit int
	var jsonOutput bool
	var clear bool

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show or clear the recently-viewed products",
		Example: `  engage recent
  engage recent --limit 3
  engage recent --json
  engage recent --clear`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecent(limit, jsonOutput, clear)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum entries to show (0 = all)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the recently-viewed list")

	return cmd
}

// runRecent displays or clears the recently-viewed list.
func runRecent(limit int, jsonOutput, clear bool) error {
	svc, err := openServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	if clear {
		svc.cache.Clear()
		fmt.Println("Recently-viewed list cleared.")
		return nil
	}

	items := svc.cache.List(limit)

	if jsonOutput {
		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode items: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(items) == 0 {
		fmt.Println("No recently viewed products.")
		return nil
	}

	fmt.Printf("Recently viewed (%d):\n\n", len(items))
	for _, item := range items {
		fmt.Printf("  %s\n", item.Snapshot.Name)
		fmt.Printf("    ID:     %s\n", item.ID)
		fmt.Printf("    Price:  %.2f\n", item.Snapshot.Price)
		fmt.Printf("    Viewed: %s\n", item.ViewedAt.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}

	return nil
}

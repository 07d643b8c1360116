package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
)

var (
	updatesDays    int
	updatesLimit   int
	updatesSources []string
	updatesJSON    bool
)

var updatesCmd = &cobra.Command{
	Use:   "updates",
	Short: "Show recent activity across sources",
	Long: `Lists documents created, modified, or commented on across the
connected sources within the lookback window, newest first.`,
	RunE: runUpdates,
}

func init() {
	updatesCmd.Flags().IntVarP(&updatesDays, "days", "d", 7, "lookback window in days")
	updatesCmd.Flags().IntVarP(&updatesLimit, "limit", "n", 20, "maximum number of updates")
	updatesCmd.Flags().StringSliceVar(&updatesSources, "sources", nil, "sources to scan (default: all connected)")
	updatesCmd.Flags().BoolVar(&updatesJSON, "json", false, "output updates as JSON")
	rootCmd.AddCommand(updatesCmd)
}

func runUpdates(cmd *cobra.Command, _ []string) error {
	if aggregatorService == nil || identityService == nil {
		return errors.New("aggregator service not configured")
	}

	ctx := context.Background()

	sources := parseSourceFlags(updatesSources)
	if onlyUnknownSources(updatesSources, sources) {
		return outputUpdatesTable(cmd, nil)
	}

	identity, err := identityService.Current(ctx)
	if err != nil {
		return fmt.Errorf("resolving identity: %w", err)
	}

	updates, err := aggregatorService.GetRecentUpdates(ctx, sources, updatesDays, updatesLimit, identity)
	if err != nil {
		return fmt.Errorf("fetching updates: %w", err)
	}

	if updatesJSON {
		return outputJSON(cmd, updates)
	}

	return outputUpdatesTable(cmd, updates)
}

func outputUpdatesTable(cmd *cobra.Command, updates []domain.RecentUpdate) error {
	if len(updates) == 0 {
		cmd.Println("No recent activity.")
		return nil
	}

	for i := range updates {
		title := updates[i].Title
		if title == "" {
			title = updates[i].ID
		}

		cmd.Printf("  %-9s %s (%s)\n", updates[i].UpdateType, title, updates[i].Source)
		if updates[i].LastModified != "" {
			line := updates[i].LastModified
			if updates[i].Author != "" {
				line += " by " + updates[i].Author
			}
			cmd.Printf("            %s\n", line)
		}
	}
	return nil
}

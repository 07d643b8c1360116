package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
	"github.com/custodia-labs/fetcha-cli/internal/logger"
)

var (
	searchLimit   int
	searchSources []string
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search across connected sources",
	Long: `Searches every connected source the caller may read and returns
the merged results, newest context first within each source.

Use --sources to restrict the scan, e.g. --sources gdrive,notion.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().StringSliceVar(&searchSources, "sources", nil, "sources to search (default: all connected)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if aggregatorService == nil || identityService == nil {
		return errors.New("aggregator service not configured")
	}

	ctx := context.Background()

	sources := parseSourceFlags(searchSources)
	if onlyUnknownSources(searchSources, sources) {
		return outputSearchTable(cmd, nil)
	}

	identity, err := identityService.Current(ctx)
	if err != nil {
		return fmt.Errorf("resolving identity: %w", err)
	}

	results, err := aggregatorService.Search(ctx, query, sources, searchLimit, identity)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

// parseSourceFlags converts --sources values to domain sources. Unknown
// names are warned and dropped; the remaining known sources are still
// queried.
func parseSourceFlags(names []string) []domain.Source {
	var sources []domain.Source
	for _, name := range names {
		src, err := domain.ParseSource(name)
		if err != nil {
			logger.Warn("Unknown source %q ignored", name)
			continue
		}
		sources = append(sources, src)
	}
	return sources
}

// onlyUnknownSources reports a non-empty filter that dropped every name.
// Such a filter matches nothing; treating it as empty would widen the
// request to all sources instead.
func onlyUnknownSources(names []string, sources []domain.Source) bool {
	return len(names) > 0 && len(sources) == 0
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		title := results[i].Title
		if title == "" {
			title = results[i].ID
		}

		cmd.Printf("  [%d] %s (%s)\n", i+1, title, results[i].Source)
		if results[i].Snippet != "" {
			cmd.Printf("      %s\n", results[i].Snippet)
		}
		if results[i].URL != "" {
			cmd.Printf("      %s\n", results[i].URL)
		}
		cmd.Println()
	}

	return nil
}

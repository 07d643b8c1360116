package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	summarizeLength int
	summarizeJSON   bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [doc-id]...",
	Short: "Summarize one or more documents",
	Long: `Fetches the given documents and produces a combined summary with
key points. Documents that cannot be fetched are skipped.

Document ids are composite ("<source>:<native-id>"), as returned by
search and updates.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().IntVarP(&summarizeLength, "length", "l", 500, "maximum summary length in characters")
	summarizeCmd.Flags().BoolVar(&summarizeJSON, "json", false, "output the summary as JSON")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	if aggregatorService == nil || identityService == nil {
		return errors.New("aggregator service not configured")
	}

	ctx := context.Background()

	identity, err := identityService.Current(ctx)
	if err != nil {
		return fmt.Errorf("resolving identity: %w", err)
	}

	summary, err := aggregatorService.Summarize(ctx, args, summarizeLength, identity)
	if err != nil {
		return fmt.Errorf("summarization failed: %w", err)
	}

	if summarizeJSON {
		return outputJSON(cmd, summary)
	}

	cmd.Println(summary.Summary)
	if len(summary.KeyPoints) > 0 {
		cmd.Println()
		cmd.Println("Key points:")
		for _, p := range summary.KeyPoints {
			cmd.Printf("  - %s\n", p)
		}
	}
	if len(summary.Documents) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, d := range summary.Documents {
			cmd.Printf("  %s (%s)\n", d.Title, d.ID)
		}
	}
	return nil
}

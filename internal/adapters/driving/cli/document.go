package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var documentJSON bool

var documentCmd = &cobra.Command{
	Use:   "document [doc-id]",
	Short: "Fetch one document by id",
	Long: `Fetches the full content of a single document from its source.

The document id is composite: "<source>:<native-id>", as returned by
search and updates, e.g. "notion:a1b2c3" or "slack:C0123:1700000000.000100".`,
	Args: cobra.ExactArgs(1),
	RunE: runDocument,
}

func init() {
	documentCmd.Flags().BoolVar(&documentJSON, "json", false, "output the document as JSON")
	rootCmd.AddCommand(documentCmd)
}

func runDocument(cmd *cobra.Command, args []string) error {
	if aggregatorService == nil || identityService == nil {
		return errors.New("aggregator service not configured")
	}

	ctx := context.Background()

	identity, err := identityService.Current(ctx)
	if err != nil {
		return fmt.Errorf("resolving identity: %w", err)
	}

	doc, err := aggregatorService.GetDocument(ctx, args[0], identity)
	if err != nil {
		return fmt.Errorf("fetching document: %w", err)
	}

	if documentJSON {
		return outputJSON(cmd, doc)
	}

	cmd.Printf("Title:    %s\n", doc.Title)
	cmd.Printf("Source:   %s\n", doc.Source)
	if doc.Author != "" {
		cmd.Printf("Author:   %s\n", doc.Author)
	}
	if doc.LastModified != "" {
		cmd.Printf("Modified: %s\n", doc.LastModified)
	}
	if doc.URL != "" {
		cmd.Printf("URL:      %s\n", doc.URL)
	}
	cmd.Println()
	cmd.Println(doc.Content)
	return nil
}

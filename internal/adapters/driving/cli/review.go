package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

var reviewCmd = &cobra.Command{
	Use:   "review [doc-id] [notions.json]",
	Short: "Commit reviewed notions from a document",
	Long: `Reads a JSON array of notions and commits them as new versions,
recording the document's contributions and indexing every notion for
retrieval. Notions without an id get a fresh one; versions are assigned
at commit time.`,
	Args: cobra.ExactArgs(2),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	if reviewService == nil {
		return errors.New("review service not configured")
	}

	id, err := domain.ParseDocID(args[0])
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[1], err)
	}

	var notions []domain.Notion
	if err := json.Unmarshal(data, &notions); err != nil {
		return fmt.Errorf("parsing %s: %w", args[1], err)
	}
	if len(notions) == 0 {
		return errors.New("no notions to commit")
	}

	committed, err := reviewService.CommitReview(context.Background(), id, notions)
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}

	cmd.Printf("Committed %d notion(s):\n", len(committed))
	for _, notion := range committed {
		cmd.Printf("  %s v%d  %s\n", notion.ID, notion.Version, notion.Title)
	}
	return nil
}

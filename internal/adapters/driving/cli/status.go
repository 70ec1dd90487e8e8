package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status [doc-id]",
	Short: "Show a document's extraction state and metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := context.Background()
	id, err := domain.ParseDocID(args[0])
	if err != nil {
		return err
	}

	state, err := ingestService.Status(ctx, id)
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}
	cmd.Printf("Document: %s\n", id)
	cmd.Printf("State: %s\n", state)

	metadata, err := ingestService.GetPrefill(ctx, id)
	if err != nil {
		return fmt.Errorf("reading metadata: %w", err)
	}
	if len(metadata) == 0 {
		return nil
	}

	fields := make([]string, 0, len(metadata))
	for field := range metadata {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	cmd.Println("Metadata:")
	for _, field := range fields {
		cmd.Printf("  %s: %s\n", field, metadata[field])
	}
	return nil
}

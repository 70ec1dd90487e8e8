package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

var metadataCmd = &cobra.Command{
	Use:   "metadata [doc-id] [field=value ...]",
	Short: "Show or override a document's metadata",
	Long: `Without field=value arguments, prints the effective metadata: inferred
prefill merged with user overrides, overrides winning. With arguments,
records the overrides and prints the new effective metadata.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMetadata,
}

func init() {
	rootCmd.AddCommand(metadataCmd)
}

func runMetadata(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := context.Background()
	id, err := domain.ParseDocID(args[0])
	if err != nil {
		return err
	}

	var metadata map[string]string
	if len(args) > 1 {
		overrides, perr := parseOverrides(args[1:])
		if perr != nil {
			return perr
		}
		metadata, err = ingestService.ApplyOverrides(ctx, id, overrides)
	} else {
		metadata, err = ingestService.GetPrefill(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("metadata failed: %w", err)
	}

	if len(metadata) == 0 {
		cmd.Println("No metadata.")
		return nil
	}

	fields := make([]string, 0, len(metadata))
	for field := range metadata {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		cmd.Printf("%s: %s\n", field, metadata[field])
	}
	return nil
}

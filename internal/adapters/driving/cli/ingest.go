package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var ingestOverrides []string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document and queue its extraction",
	Long: `Stores the file in the content-addressed store and queues text
extraction. Re-ingesting identical content converges on the same
document id and skips extraction when it already completed.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringArrayVar(&ingestOverrides, "set", nil, "metadata override as field=value (repeatable)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	overrides, err := parseOverrides(ingestOverrides)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	ctx := context.Background()
	receipt, err := ingestService.Ingest(ctx, data, filepath.Base(args[0]))
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if len(overrides) > 0 {
		if _, err := ingestService.ApplyOverrides(ctx, receipt.DocID, overrides); err != nil {
			return fmt.Errorf("applying overrides: %w", err)
		}
	}

	cmd.Printf("Document: %s\n", receipt.DocID)
	if receipt.AlreadyExtracted {
		cmd.Println("Already extracted, nothing queued.")
		return nil
	}
	cmd.Printf("State: %s\n", receipt.State)

	// Block until the queued job finishes so the command exits with the
	// extraction persisted.
	if scheduler != nil {
		scheduler.Wait()
		state, err := ingestService.Status(ctx, receipt.DocID)
		if err == nil {
			cmd.Printf("Final state: %s\n", state)
		}
	}
	return nil
}

func parseOverrides(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	overrides := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		field, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(field) == "" {
			return nil, fmt.Errorf("invalid override %q, expected field=value", pair)
		}
		overrides[strings.TrimSpace(field)] = strings.TrimSpace(value)
	}
	return overrides, nil
}

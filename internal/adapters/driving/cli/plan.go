package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

var (
	planPseudonymize bool
	planKeepPrompt   bool
	planJSON         bool
)

var planCmd = &cobra.Command{
	Use:   "plan [doc-id]",
	Short: "Generate a plan artifact for an extracted document",
	Long: `Sends the document's segments to the language model and validates the
returned plan against the schema. A plan that required repair or failed
validation still produces an artifact, tagged partial or degraded.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&planPseudonymize, "pseudonymize", false, "scrub date- and identifier-like tokens from the prompt")
	planCmd.Flags().BoolVar(&planKeepPrompt, "keep-prompt", false, "retain the clear-text prompt in the artifact")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "output the artifact as JSON")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	if planService == nil {
		return errors.New("plan service not configured, set llm.api_key in the config file")
	}

	id, err := domain.ParseDocID(args[0])
	if err != nil {
		return err
	}

	opts := domain.PlanOptions{
		Pseudonymize:    planPseudonymize,
		KeepPromptClear: planKeepPrompt,
	}

	artifact, err := planService.RequestPlan(context.Background(), id, opts)
	if err != nil {
		return fmt.Errorf("plan failed: %w", err)
	}

	if planJSON {
		data, err := json.MarshalIndent(artifact, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal artifact: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Quality: %s\n", artifact.Quality)
	if artifact.Reason != "" {
		cmd.Printf("Reason: %s\n", artifact.Reason)
	}
	for _, issue := range artifact.Issues {
		cmd.Printf("Issue: %s\n", issue)
	}
	if artifact.Parsed != nil && len(artifact.Parsed.ProposedNotions) > 0 {
		cmd.Printf("Proposed notions (%d):\n", len(artifact.Parsed.ProposedNotions))
		for _, notion := range artifact.Parsed.ProposedNotions {
			cmd.Printf("  - %s", notion.Title)
			if notion.EvidenceLevel != "" {
				cmd.Printf(" [%s]", notion.EvidenceLevel)
			}
			cmd.Println()
		}
	}
	return nil
}

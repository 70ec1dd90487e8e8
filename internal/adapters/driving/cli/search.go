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
	searchLimit    int
	searchMode     string
	searchTags     []string
	searchEvidence string
	searchYearFrom int
	searchYearTo   int
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]...",
	Short: "Search indexed segments and notions",
	Long: `Performs hybrid search over extracted segments and committed notions.
Combines keyword (BM25) and semantic (vector) signals with the
document-intrinsic priority. Multiple queries widen the candidate set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default 20, capped at 50)")
	searchCmd.Flags().StringVar(&searchMode, "mode", "", "search mode: autosuggest_plan or autosuggest_report")
	searchCmd.Flags().StringArrayVar(&searchTags, "tag", nil, "require a tag on every result (repeatable)")
	searchCmd.Flags().StringVar(&searchEvidence, "evidence", "", "require an exact evidence level (a1, a2, b, c, d)")
	searchCmd.Flags().IntVar(&searchYearFrom, "year-from", 0, "lowest publication year, inclusive")
	searchCmd.Flags().IntVar(&searchYearTo, "year-to", 0, "highest publication year, inclusive")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		Mode:  domain.SearchMode(searchMode),
		Limit: searchLimit,
		Filters: domain.SearchFilters{
			Tags:          searchTags,
			EvidenceLevel: searchEvidence,
			YearFrom:      searchYearFrom,
			YearTo:        searchYearTo,
		},
	}

	results, err := searchService.Search(context.Background(), args, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		title := results[i].Record.Title
		if title == "" {
			title = results[i].Record.ID
		}
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, title, results[i].Score)
		cmd.Printf("      %s", results[i].Record.Kind)
		if results[i].Record.DocID != "" {
			cmd.Printf(" in %s", results[i].Record.DocID)
		}
		cmd.Println()
		cmd.Printf("      lexical %.3f, vector %.3f, priority %.3f\n",
			results[i].Lexical, results[i].Vector, results[i].Priority)
		cmd.Println()
	}
	return nil
}

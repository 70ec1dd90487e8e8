package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure storage, scheduler, search and provider settings.
Settings live in a TOML file under the configuration directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default settings file",
	Long: `Writes the shipped defaults to the settings file so every available
option is visible and editable. Existing settings are preserved.`,
	RunE: runSettingsInit,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsInitCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	settings, err := configStore.Load()
	if err != nil {
		return err
	}

	cmd.Printf("Settings file: %s\n", configStore.Path())
	cmd.Println()
	cmd.Println("[storage]")
	cmd.Printf("  root: %s\n", settings.StorageRoot)
	cmd.Printf("  segment_target_tokens: %d\n", settings.SegmentTargetTokens)
	cmd.Println()
	cmd.Println("[scheduler]")
	cmd.Printf("  workers: %d\n", settings.Scheduler.Workers)
	cmd.Printf("  lock_enabled: %t\n", settings.Scheduler.LockEnabled)
	cmd.Printf("  lock_timeout: %s\n", settings.Scheduler.LockTimeout)
	cmd.Println()
	cmd.Println("[search]")
	cmd.Printf("  weight_lexical: %.2f\n", settings.Search.WeightLexical)
	cmd.Printf("  weight_vector: %.2f\n", settings.Search.WeightVector)
	cmd.Printf("  weight_priority: %.2f\n", settings.Search.WeightPriority)
	cmd.Println()
	cmd.Println("[llm]")
	cmd.Printf("  provider: %s\n", settings.LLM.Provider)
	cmd.Printf("  model: %s\n", settings.LLM.Model)
	cmd.Printf("  configured: %t\n", settings.LLM.APIKey != "")
	cmd.Println()
	cmd.Println("[embedding]")
	cmd.Printf("  provider: %s\n", settings.Embedding.Provider)
	cmd.Printf("  model: %s\n", settings.Embedding.Model)
	cmd.Printf("  dimensions: %d\n", settings.Embedding.Dimensions)
	return nil
}

func runSettingsInit(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	settings, err := configStore.Load()
	if err != nil {
		return err
	}
	if err := configStore.Save(settings); err != nil {
		return err
	}
	cmd.Printf("Wrote %s\n", configStore.Path())
	return nil
}

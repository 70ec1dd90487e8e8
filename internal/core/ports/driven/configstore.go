package driven

import "github.com/evidentia-labs/evidentia/internal/core/domain"

// ConfigStore persists application settings.
type ConfigStore interface {
	// Load returns the current settings, with defaults applied for
	// anything the file does not set.
	Load() (domain.Settings, error)

	// Save persists the settings.
	Save(settings domain.Settings) error
}

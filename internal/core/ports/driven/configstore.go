package driven

import "github.com/aiohm/assistant/internal/core/domain"

// SettingsStore loads and persists application settings.
// Backed by a TOML file in the user's config directory.
type SettingsStore interface {
	// Load reads settings, returning defaults if no file exists.
	Load() (domain.AppSettings, error)

	// Save persists settings.
	Save(settings domain.AppSettings) error

	// Watch invokes fn with fresh settings whenever the backing file
	// changes. Returns a stop function. Implementations without change
	// notification may return a no-op stop.
	Watch(fn func(domain.AppSettings)) (stop func(), err error)
}

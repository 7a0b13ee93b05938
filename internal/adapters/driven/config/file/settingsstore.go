// Package file implements the settings store on a TOML file in the
// user's config directory, with change notification via fsnotify.
package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driven"
)

const configFileName = "config.toml"

var _ driven.SettingsStore = (*SettingsStore)(nil)

// fileSettings is the TOML representation. Provider blocks are nested
// tables keyed by provider name.
type fileSettings struct {
	DefaultProvider string                       `toml:"default_provider"`
	Consent         bool                         `toml:"consent"`
	DemoMode        bool                         `toml:"demo_mode"`
	Providers       map[string]fileProviderBlock `toml:"providers"`
}

type fileProviderBlock struct {
	APIKey  string `toml:"api_key,omitempty"`
	BaseURL string `toml:"base_url,omitempty"`
	Model   string `toml:"model,omitempty"`
}

// SettingsStore reads and writes settings as TOML.
type SettingsStore struct {
	mu       sync.Mutex
	filePath string
}

// NewSettingsStore creates a store rooted at configDir. An empty
// configDir defaults to ~/.aiohm.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".aiohm")
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}
	return &SettingsStore{
		filePath: filepath.Join(configDir, configFileName),
	}, nil
}

// Load reads settings from disk, returning defaults if no file exists.
func (s *SettingsStore) Load() (domain.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *SettingsStore) load() (domain.AppSettings, error) {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return domain.DefaultAppSettings(), nil
	}
	if err != nil {
		return domain.AppSettings{}, fmt.Errorf("read config: %w", err)
	}

	var fs fileSettings
	if err := toml.Unmarshal(data, &fs); err != nil {
		return domain.AppSettings{}, fmt.Errorf("parse config: %w", err)
	}

	settings := domain.AppSettings{
		DefaultProvider: domain.AIProvider(fs.DefaultProvider),
		Consent:         fs.Consent,
		DemoMode:        fs.DemoMode,
		Providers:       make(map[domain.AIProvider]domain.ProviderSettings, len(fs.Providers)),
	}
	if settings.DefaultProvider == "" {
		settings.DefaultProvider = domain.DefaultAppSettings().DefaultProvider
	}
	for name, block := range fs.Providers {
		p := domain.AIProvider(name)
		if !p.IsValid() {
			continue
		}
		settings.Providers[p] = domain.ProviderSettings{
			APIKey:  block.APIKey,
			BaseURL: block.BaseURL,
			Model:   block.Model,
		}
	}
	return settings, nil
}

// Save persists settings. The file is written with owner-only
// permissions since it may carry API keys.
func (s *SettingsStore) Save(settings domain.AppSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fs := fileSettings{
		DefaultProvider: settings.DefaultProvider.String(),
		Consent:         settings.Consent,
		DemoMode:        settings.DemoMode,
		Providers:       make(map[string]fileProviderBlock, len(settings.Providers)),
	}
	for p, block := range settings.Providers {
		fs.Providers[p.String()] = fileProviderBlock{
			APIKey:  block.APIKey,
			BaseURL: block.BaseURL,
			Model:   block.Model,
		}
	}

	data, err := toml.Marshal(fs)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	// Write-then-rename so a concurrent reader never sees a partial file.
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// Watch invokes fn with fresh settings whenever the config file
// changes. Events for other files in the directory are ignored.
func (s *SettingsStore) Watch(fn func(domain.AppSettings)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory: editors and the atomic rename in Save
	// replace the file, which would silently drop a file-level watch.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.filePath {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				s.mu.Lock()
				settings, err := s.load()
				s.mu.Unlock()
				if err == nil {
					fn(settings)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			watcher.Close()
		})
	}
	return stop, nil
}

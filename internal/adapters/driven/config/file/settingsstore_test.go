package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiohm/assistant/internal/core/domain"
)

func newTestStore(t *testing.T) (*SettingsStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewSettingsStore(dir)
	require.NoError(t, err)
	return store, dir
}

func sampleSettings() domain.AppSettings {
	return domain.AppSettings{
		DefaultProvider: domain.AIProviderOllama,
		Consent:         true,
		Providers: map[domain.AIProvider]domain.ProviderSettings{
			domain.AIProviderOllama: {BaseURL: "http://localhost:11434", Model: "llama3.2"},
			domain.AIProviderOpenAI: {APIKey: "sk-test", Model: "gpt-4o-mini"},
		},
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		store, _ := newTestStore(t)

		settings, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultAppSettings().DefaultProvider, settings.DefaultProvider)
		assert.False(t, settings.Consent)
		assert.Empty(t, settings.Providers)
	})

	t.Run("roundtrip", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, store.Save(sampleSettings()))

		loaded, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, sampleSettings(), loaded)
	})

	t.Run("unknown provider blocks are dropped", func(t *testing.T) {
		store, dir := newTestStore(t)
		content := `
default_provider = "openai"

[providers.openai]
api_key = "sk-test"

[providers.somethingelse]
api_key = "whatever"
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0600))

		settings, err := store.Load()
		require.NoError(t, err)
		assert.Len(t, settings.Providers, 1)
		assert.True(t, settings.IsConfigured(domain.AIProviderOpenAI))
	})

	t.Run("malformed file errors", func(t *testing.T) {
		store, dir := newTestStore(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("not [valid toml"), 0600))

		_, err := store.Load()
		require.Error(t, err)
	})
}

func TestSave(t *testing.T) {
	t.Run("file has owner-only permissions", func(t *testing.T) {
		store, dir := newTestStore(t)
		require.NoError(t, store.Save(sampleSettings()))

		info, err := os.Stat(filepath.Join(dir, configFileName))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("save overwrites", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, store.Save(sampleSettings()))

		updated := sampleSettings()
		updated.Consent = false
		updated.DemoMode = true
		require.NoError(t, store.Save(updated))

		loaded, err := store.Load()
		require.NoError(t, err)
		assert.False(t, loaded.Consent)
		assert.True(t, loaded.DemoMode)
	})
}

func TestWatch(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Save(sampleSettings()))

	changed := make(chan domain.AppSettings, 1)
	stop, err := store.Watch(func(s domain.AppSettings) {
		select {
		case changed <- s:
		default:
		}
	})
	require.NoError(t, err)
	defer stop()

	updated := sampleSettings()
	updated.DemoMode = true
	require.NoError(t, store.Save(updated))

	select {
	case got := <-changed:
		assert.True(t, got.DemoMode)
	case <-time.After(2 * time.Second):
		t.Fatal("no settings change notification")
	}
}

package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiohm/assistant/internal/core/domain"
)

func settingsWith(providers map[domain.AIProvider]domain.ProviderSettings, def domain.AIProvider) domain.AppSettings {
	return domain.AppSettings{
		DefaultProvider: def,
		Providers:       providers,
	}
}

func TestProviderForModel(t *testing.T) {
	tests := []struct {
		model string
		want  domain.AIProvider
	}{
		{"gpt-4o-mini", domain.AIProviderOpenAI},
		{"gpt-4o", domain.AIProviderOpenAI},
		{"o1-preview", domain.AIProviderOpenAI},
		{"gemini-2.0-flash", domain.AIProviderGemini},
		{"claude-3-5-sonnet-latest", domain.AIProviderClaude},
		{"llama3.2", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ProviderForModel(tt.model))
		})
	}
}

func TestResolveProvider(t *testing.T) {
	t.Run("explicit provider wins", func(t *testing.T) {
		settings := settingsWith(map[domain.AIProvider]domain.ProviderSettings{
			domain.AIProviderOpenAI: {APIKey: "sk-test"},
			domain.AIProviderClaude: {APIKey: "sk-ant-test"},
		}, domain.AIProviderOpenAI)

		p, err := ResolveProvider(settings, domain.AIProviderClaude, "gpt-4o")
		require.NoError(t, err)
		assert.Equal(t, domain.AIProviderClaude, p)
	})

	t.Run("explicit but unconfigured provider errors", func(t *testing.T) {
		settings := settingsWith(map[domain.AIProvider]domain.ProviderSettings{
			domain.AIProviderOpenAI: {APIKey: "sk-test"},
		}, domain.AIProviderOpenAI)

		_, err := ResolveProvider(settings, domain.AIProviderClaude, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotConfigured)
	})

	t.Run("model prefix selects provider", func(t *testing.T) {
		settings := settingsWith(map[domain.AIProvider]domain.ProviderSettings{
			domain.AIProviderOpenAI: {APIKey: "sk-test"},
			domain.AIProviderGemini: {APIKey: "AIza-test"},
		}, domain.AIProviderOpenAI)

		p, err := ResolveProvider(settings, "", "gemini-2.0-flash")
		require.NoError(t, err)
		assert.Equal(t, domain.AIProviderGemini, p)
	})

	t.Run("unconfigured model prefix falls through to default", func(t *testing.T) {
		settings := settingsWith(map[domain.AIProvider]domain.ProviderSettings{
			domain.AIProviderOpenAI: {APIKey: "sk-test"},
		}, domain.AIProviderOpenAI)

		p, err := ResolveProvider(settings, "", "claude-3-5-sonnet-latest")
		require.NoError(t, err)
		assert.Equal(t, domain.AIProviderOpenAI, p)
	})

	t.Run("default provider when no model hint", func(t *testing.T) {
		settings := settingsWith(map[domain.AIProvider]domain.ProviderSettings{
			domain.AIProviderGemini: {APIKey: "AIza-test"},
		}, domain.AIProviderGemini)

		p, err := ResolveProvider(settings, "", "")
		require.NoError(t, err)
		assert.Equal(t, domain.AIProviderGemini, p)
	})

	t.Run("unconfigured default falls back in priority order", func(t *testing.T) {
		settings := settingsWith(map[domain.AIProvider]domain.ProviderSettings{
			domain.AIProviderOpenAI: {APIKey: "sk-test"},
			domain.AIProviderClaude: {APIKey: "sk-ant-test"},
		}, domain.AIProviderOllama)

		p, err := ResolveProvider(settings, "", "")
		require.NoError(t, err)
		// openai precedes claude in the fallback order.
		assert.Equal(t, domain.AIProviderOpenAI, p)
	})

	t.Run("local provider preferred in fallback", func(t *testing.T) {
		settings := settingsWith(map[domain.AIProvider]domain.ProviderSettings{
			domain.AIProviderOllama: {BaseURL: "http://localhost:11434"},
			domain.AIProviderOpenAI: {APIKey: "sk-test"},
		}, "")

		p, err := ResolveProvider(settings, "", "")
		require.NoError(t, err)
		assert.Equal(t, domain.AIProviderOllama, p)
	})

	t.Run("nothing configured", func(t *testing.T) {
		_, err := ResolveProvider(domain.DefaultAppSettings(), "", "")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotConfigured)
	})
}

func TestNewChatService(t *testing.T) {
	settings := settingsWith(map[domain.AIProvider]domain.ProviderSettings{
		domain.AIProviderOpenAI: {APIKey: "sk-test", Model: "gpt-4o-mini"},
		domain.AIProviderGemini: {APIKey: "AIza-test"},
		domain.AIProviderClaude: {APIKey: "sk-ant-test"},
		domain.AIProviderOllama: {BaseURL: "http://localhost:11434"},
	}, domain.AIProviderOllama)

	for _, p := range domain.AllProviders() {
		t.Run(p.String(), func(t *testing.T) {
			svc, err := NewChatService(settings, p)
			require.NoError(t, err)
			require.NotNil(t, svc)
			assert.NoError(t, svc.Close())
		})
	}

	t.Run("openai without key", func(t *testing.T) {
		_, err := NewChatService(domain.DefaultAppSettings(), domain.AIProviderOpenAI)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotConfigured)
	})

	t.Run("ollama without url", func(t *testing.T) {
		_, err := NewChatService(domain.DefaultAppSettings(), domain.AIProviderOllama)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotConfigured)
	})
}

func TestNewEmbeddingService(t *testing.T) {
	settings := settingsWith(map[domain.AIProvider]domain.ProviderSettings{
		domain.AIProviderOpenAI: {APIKey: "sk-test"},
		domain.AIProviderGemini: {APIKey: "AIza-test"},
		domain.AIProviderClaude: {APIKey: "sk-ant-test"},
		domain.AIProviderOllama: {BaseURL: "http://localhost:11434"},
	}, domain.AIProviderOllama)

	t.Run("providers without embedding endpoints get structural", func(t *testing.T) {
		for _, p := range []domain.AIProvider{domain.AIProviderClaude, domain.AIProviderDemo} {
			svc, err := NewEmbeddingService(settings, p)
			require.NoError(t, err)
			assert.Equal(t, "structural-v1", svc.ModelName())
		}
	})

	t.Run("native providers", func(t *testing.T) {
		for _, p := range []domain.AIProvider{domain.AIProviderOpenAI, domain.AIProviderGemini, domain.AIProviderOllama} {
			svc, err := NewEmbeddingService(settings, p)
			require.NoError(t, err)
			assert.NotEqual(t, "structural-v1", svc.ModelName())
		}
	})
}

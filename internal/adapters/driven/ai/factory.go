// Package ai constructs provider adapters from application settings and
// resolves which provider serves a given request.
package ai

import (
	"context"
	"fmt"
	"time"

	geminiembed "github.com/aiohm/assistant/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/aiohm/assistant/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/aiohm/assistant/internal/adapters/driven/embedding/openai"
	"github.com/aiohm/assistant/internal/adapters/driven/embedding/structural"
	claudellm "github.com/aiohm/assistant/internal/adapters/driven/llm/claude"
	demollm "github.com/aiohm/assistant/internal/adapters/driven/llm/demo"
	geminillm "github.com/aiohm/assistant/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/aiohm/assistant/internal/adapters/driven/llm/ollama"
	openaillm "github.com/aiohm/assistant/internal/adapters/driven/llm/openai"
	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driven"
)

// pingTimeout caps connectivity validation.
const pingTimeout = 5 * time.Second

// ResolveProvider picks the provider for a request. Precedence: an
// explicit provider, then the model name's convention, then the
// configured default, then the first configured provider in fallback
// order. An explicitly requested provider that is not configured is an
// error rather than a silent substitution.
func ResolveProvider(settings domain.AppSettings, explicit domain.AIProvider, model string) (domain.AIProvider, error) {
	if explicit != "" {
		if !explicit.IsValid() {
			return "", fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, explicit)
		}
		if !settings.IsConfigured(explicit) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotConfigured, explicit)
		}
		return explicit, nil
	}

	if p := domain.ProviderForModel(model); p != "" && settings.IsConfigured(p) {
		return p, nil
	}

	if settings.DefaultProvider != "" && settings.IsConfigured(settings.DefaultProvider) {
		return settings.DefaultProvider, nil
	}

	for _, p := range domain.FallbackOrder() {
		if settings.IsConfigured(p) {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: no provider configured", domain.ErrNotConfigured)
}

// NewChatService builds the chat adapter for a provider. Cloud adapters
// are wrapped with a client-side outbound throttle.
func NewChatService(settings domain.AppSettings, provider domain.AIProvider) (driven.ChatService, error) {
	ps := settings.Provider(provider)

	var (
		svc driven.ChatService
		err error
	)
	switch provider {
	case domain.AIProviderOpenAI:
		svc, err = openaillm.New(openaillm.Config{
			APIKey:  ps.APIKey,
			BaseURL: ps.BaseURL,
			Model:   ps.Model,
		})
	case domain.AIProviderGemini:
		svc, err = geminillm.New(geminillm.Config{
			APIKey:  ps.APIKey,
			BaseURL: ps.BaseURL,
			Model:   ps.Model,
		})
	case domain.AIProviderClaude:
		svc, err = claudellm.New(claudellm.Config{
			APIKey:  ps.APIKey,
			BaseURL: ps.BaseURL,
			Model:   ps.Model,
		})
	case domain.AIProviderOllama:
		if ps.BaseURL == "" {
			return nil, fmt.Errorf("%w: ollama server url missing", domain.ErrNotConfigured)
		}
		svc, err = ollamallm.New(ollamallm.Config{
			BaseURL: ps.BaseURL,
			Model:   ps.Model,
		})
	case domain.AIProviderDemo:
		svc = demollm.New()
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, provider)
	}
	if err != nil {
		return nil, err
	}
	return throttled(svc, provider), nil
}

// NewEmbeddingService builds the embedding adapter for a provider.
// Claude and demo have no embedding endpoint and get the structural
// generator.
func NewEmbeddingService(settings domain.AppSettings, provider domain.AIProvider) (driven.EmbeddingService, error) {
	ps := settings.Provider(provider)

	switch provider {
	case domain.AIProviderOpenAI:
		return openaiembed.New(openaiembed.Config{
			APIKey:  ps.APIKey,
			BaseURL: ps.BaseURL,
		})
	case domain.AIProviderGemini:
		return geminiembed.New(geminiembed.Config{
			APIKey:  ps.APIKey,
			BaseURL: ps.BaseURL,
		})
	case domain.AIProviderOllama:
		if ps.BaseURL == "" {
			return nil, fmt.Errorf("%w: ollama server url missing", domain.ErrNotConfigured)
		}
		return ollamaembed.New(ollamaembed.Config{
			BaseURL: ps.BaseURL,
		})
	case domain.AIProviderClaude, domain.AIProviderDemo:
		return structural.New(), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, provider)
	}
}

// ValidateProvider builds the chat adapter for a provider and pings it.
// Used by the settings flow to check credentials at configuration time.
func ValidateProvider(settings domain.AppSettings, provider domain.AIProvider) error {
	svc, err := NewChatService(settings, provider)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

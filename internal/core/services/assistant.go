package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driven"
	"github.com/aiohm/assistant/internal/core/ports/driving"
	"github.com/aiohm/assistant/internal/logger"
	"github.com/aiohm/assistant/internal/ratelimit"
)

// ChatFactory builds the chat adapter for a provider.
type ChatFactory func(domain.AppSettings, domain.AIProvider) (driven.ChatService, error)

// EmbeddingFactory builds the embedding adapter for a provider.
type EmbeddingFactory func(domain.AppSettings, domain.AIProvider) (driven.EmbeddingService, error)

// ResolveFunc picks the provider serving a request.
type ResolveFunc func(settings domain.AppSettings, explicit domain.AIProvider, model string) (domain.AIProvider, error)

var _ driving.AssistantService = (*AssistantService)(nil)

// AssistantConfig wires the facade's dependencies.
type AssistantConfig struct {
	Settings domain.AppSettings
	Usage    driven.UsageStore
	Limiter  *ratelimit.Limiter
	Logger   *zap.Logger

	// NewChat, NewEmbedding and Resolve come from the ai adapter
	// package in production wiring; tests substitute fakes.
	NewChat      ChatFactory
	NewEmbedding EmbeddingFactory
	Resolve      ResolveFunc
}

// AssistantService is the AI client facade: provider selection with
// fallback, consent and rate-limit policy, dispatch, and usage metering.
type AssistantService struct {
	mu       sync.RWMutex
	settings domain.AppSettings

	usage        driven.UsageStore
	limiter      *ratelimit.Limiter
	log          *zap.Logger
	newChat      ChatFactory
	newEmbedding EmbeddingFactory
	resolve      ResolveFunc
}

// NewAssistantService creates the facade.
func NewAssistantService(cfg AssistantConfig) *AssistantService {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &AssistantService{
		settings:     cfg.Settings,
		usage:        cfg.Usage,
		limiter:      cfg.Limiter,
		log:          log,
		newChat:      cfg.NewChat,
		newEmbedding: cfg.NewEmbedding,
		resolve:      cfg.Resolve,
	}
}

// UpdateSettings swaps in fresh settings. Wired to the config store's
// file watcher so credential changes apply without a restart.
func (s *AssistantService) UpdateSettings(settings domain.AppSettings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	s.log.Info("settings reloaded", zap.String("default_provider", settings.DefaultProvider.String()))
}

func (s *AssistantService) currentSettings() domain.AppSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// IsConfigured reports whether a provider has its required credential.
func (s *AssistantService) IsConfigured(provider domain.AIProvider) bool {
	return s.currentSettings().IsConfigured(provider)
}

// ResolveProvider returns the provider that would serve a call for the
// given model string, applying the fallback priority.
func (s *AssistantService) ResolveProvider(model string) (domain.AIProvider, error) {
	return s.resolve(s.currentSettings(), "", model)
}

// GetChatCompletion runs one chat completion through policy checks,
// provider dispatch, and usage recording.
func (s *AssistantService) GetChatCompletion(ctx context.Context, req driving.CompletionRequest) (*driving.CompletionResult, error) {
	settings := s.currentSettings()

	if req.Endpoint != "" && s.limiter != nil {
		if err := s.limiter.Allow(ratelimit.Endpoint(req.Endpoint), req.UserID, req.ClientIP); err != nil {
			return nil, err
		}
	}

	// Demo builds never reach a real provider.
	var provider domain.AIProvider
	var err error
	if settings.DemoMode {
		provider = domain.AIProviderDemo
	} else {
		provider, err = s.resolve(settings, req.Provider, req.Model)
		if err != nil {
			return nil, err
		}
	}

	if !provider.IsLocal() && !settings.Consent {
		return nil, fmt.Errorf("%w: provider %s", domain.ErrConsentRequired, provider)
	}

	svc, err := s.newChat(settings, provider)
	if err != nil {
		return nil, err
	}
	defer svc.Close()

	// Only pass the model through when it belongs to the provider that
	// ended up serving the call; after a fallback the adapter's default
	// is the right choice.
	model := req.Model
	if model != "" {
		if p := domain.ProviderForModel(model); p != "" && p != provider {
			model = ""
		}
	}

	result, err := svc.Chat(ctx, req.SystemMessage, req.UserMessage, driven.ChatOptions{
		Temperature: req.Temperature,
		Model:       model,
	})
	if err != nil {
		var provErr *domain.ProviderError
		if errors.As(err, &provErr) {
			s.log.Warn("chat dispatch failed",
				zap.String("provider", provider.String()),
				zap.String("kind", string(provErr.Kind)),
				logger.Detail("detail", provErr.Detail))
		}
		return nil, err
	}

	usedModel := model
	if usedModel == "" {
		usedModel = svc.ModelName()
	}

	tokens := result.TotalTokens
	if tokens == 0 {
		tokens = estimateTokens(req.SystemMessage, req.UserMessage, result.Text)
	}
	cost := float64(tokens) / 1e6 * domain.CostPerMillionTokens(provider, usedModel)

	if s.usage != nil {
		if err := s.usage.Record(ctx, provider, tokens, cost); err != nil {
			s.log.Warn("usage recording failed", zap.Error(err))
		}
	}

	return &driving.CompletionResult{
		Text:     result.Text,
		Provider: provider,
		Model:    usedModel,
		Tokens:   tokens,
		Cost:     cost,
	}, nil
}

// GenerateEmbeddings embeds text via the default provider. Unlike chat,
// embeddings never fall back: a misconfigured default is an error the
// operator should see.
func (s *AssistantService) GenerateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	settings := s.currentSettings()

	provider := settings.DefaultProvider
	if settings.DemoMode {
		provider = domain.AIProviderDemo
	}
	if !settings.IsConfigured(provider) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotConfigured, provider)
	}
	if !provider.IsLocal() && !settings.Consent {
		return nil, fmt.Errorf("%w: provider %s", domain.ErrConsentRequired, provider)
	}

	svc, err := s.newEmbedding(settings, provider)
	if err != nil {
		return nil, err
	}
	defer svc.Close()

	return svc.Embed(ctx, text)
}

// Usage returns aggregated usage since the given day.
func (s *AssistantService) Usage(ctx context.Context, sinceDay string) (*domain.UsageSummary, error) {
	return s.usage.Aggregate(ctx, sinceDay)
}

// estimateTokens approximates token usage when the provider does not
// report it: total characters divided by four.
func estimateTokens(system, user, response string) int64 {
	return int64(len(system)+len(user)+len(response)) / 4
}

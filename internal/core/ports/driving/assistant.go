package driving

import (
	"context"

	"github.com/aiohm/assistant/internal/core/domain"
)

// CompletionRequest carries one chat completion call through the facade.
type CompletionRequest struct {
	// SystemMessage is the persona/instruction block, with any retrieved
	// context already substituted by the caller.
	SystemMessage string

	// UserMessage is the end-user turn.
	UserMessage string

	// Temperature controls randomness.
	Temperature float64

	// Model selects the provider by prefix convention when set
	// (gpt-* / gemini-* / claude-*); empty uses the default provider.
	Model string

	// Provider forces a provider, bypassing model resolution. Optional.
	Provider domain.AIProvider

	// Endpoint names the call site for rate limiting ("private_chat",
	// "public_chat", "api", "upload"). Empty skips the throttle.
	Endpoint string

	// UserID identifies the caller for rate limiting. Zero for anonymous.
	UserID int64

	// ClientIP identifies the caller's network origin for rate limiting.
	ClientIP string
}

// CompletionResult is the normalized outcome of a chat completion.
type CompletionResult struct {
	// Text is the completion content.
	Text string

	// Provider is the adapter that served the call.
	Provider domain.AIProvider

	// Model is the model that served the call.
	Model string

	// Tokens is the token count used for usage accounting
	// (provider-reported when available, estimated otherwise).
	Tokens int64

	// Cost is the estimated USD cost.
	Cost float64
}

// AssistantService is the AI client facade port: provider selection with
// fallback, consent and rate-limit policy, dispatch, and usage metering.
type AssistantService interface {
	// IsConfigured reports whether a provider has its required
	// credential or URL.
	IsConfigured(provider domain.AIProvider) bool

	// ResolveProvider returns the provider that would serve a call for
	// the given model string, applying the fallback priority when the
	// nominal choice is not configured.
	ResolveProvider(model string) (domain.AIProvider, error)

	// GetChatCompletion runs one chat completion through policy checks,
	// provider dispatch, and usage recording.
	GetChatCompletion(ctx context.Context, req CompletionRequest) (*CompletionResult, error)

	// GenerateEmbeddings embeds text via the default provider's
	// embedding path.
	GenerateEmbeddings(ctx context.Context, text string) ([]float32, error)

	// Usage returns aggregated usage since the given day (UsageDayFormat).
	Usage(ctx context.Context, sinceDay string) (*domain.UsageSummary, error)
}

package driven

import "context"

// ChatService is the uniform chat completion contract every provider
// adapter implements. Adapters translate to and from the provider's wire
// protocol; they never leak credentials into errors.
//
// Implementations:
//   - OpenAI (/chat/completions)
//   - Gemini (generateContent, system and user merged into one prompt)
//   - Claude (/v1/messages)
//   - Ollama (/api/chat, self-hosted)
//   - Demo (canned responses, no network)
type ChatService interface {
	// Chat produces a completion for a system message and user message.
	// An empty model uses the adapter's configured default.
	Chat(ctx context.Context, system, user string, opts ChatOptions) (*ChatResult, error)

	// Ping validates the service is reachable with a lightweight request.
	// For Ollama it also verifies the configured model is installed.
	Ping(ctx context.Context) error

	// ModelName returns the configured default model.
	ModelName() string

	// Close releases resources.
	Close() error
}

// ChatOptions configures a chat completion.
type ChatOptions struct {
	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int

	// Model overrides the adapter's configured model for this call.
	Model string
}

// ChatResult is a normalized completion with usage accounting.
// Token counts are zero when the provider does not report usage; the
// facade falls back to a length-based estimate.
type ChatResult struct {
	// Text is the completion content.
	Text string

	// PromptTokens is the provider-reported prompt token count.
	PromptTokens int64

	// CompletionTokens is the provider-reported completion token count.
	CompletionTokens int64

	// TotalTokens is the provider-reported total, when present.
	TotalTokens int64
}

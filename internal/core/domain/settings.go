package domain

import "strings"

const unknownDescription = "Unknown"

// AIProvider identifies an AI backend for chat completions or embeddings.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOpenAI is the OpenAI cloud API (chat + embeddings).
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGemini is the Google Gemini cloud API (chat + embeddings).
	AIProviderGemini AIProvider = "gemini"

	// AIProviderClaude is the Anthropic cloud API (chat only).
	AIProviderClaude AIProvider = "claude"

	// AIProviderOllama is a self-hosted Ollama inference server.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderDemo is the offline provider for non-production demo builds.
	// Never makes network calls.
	AIProviderDemo AIProvider = "demo"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderGemini, AIProviderClaude, AIProviderOllama, AIProviderDemo:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	switch p {
	case AIProviderOpenAI, AIProviderGemini, AIProviderClaude:
		return true
	default:
		return false
	}
}

// IsLocal returns true if this provider never leaves the deployment's
// network boundary. Local providers are exempt from the consent gate.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderDemo
}

// SupportsEmbeddings returns true if this provider has a native embedding
// endpoint. Providers without one fall back to structural embeddings.
func (p AIProvider) SupportsEmbeddings() bool {
	switch p {
	case AIProviderOpenAI, AIProviderGemini, AIProviderOllama:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderClaude:
		return "Anthropic Claude (cloud, chat only)"
	case AIProviderOllama:
		return "Ollama (self-hosted)"
	case AIProviderDemo:
		return "Demo (offline, canned responses)"
	default:
		return unknownDescription
	}
}

// ProviderSettings holds the credentials and endpoint for one provider.
type ProviderSettings struct {
	// APIKey is the provider credential (cloud providers).
	APIKey string

	// BaseURL is the API endpoint. Required for Ollama, optional override
	// for cloud providers.
	BaseURL string

	// Model is the default model name for this provider.
	Model string
}

// IsConfigured reports whether this provider block has its required
// credential or URL.
func (s ProviderSettings) IsConfigured(p AIProvider) bool {
	if !p.IsValid() {
		return false
	}
	if p == AIProviderDemo {
		return true
	}
	if p.RequiresAPIKey() {
		return s.APIKey != ""
	}
	return s.BaseURL != ""
}

// AppSettings is the resolved configuration for the assistant core.
// It is constructed once by the config store and passed by parameter into
// the service constructors; there is no global accessor.
type AppSettings struct {
	// DefaultProvider is used when a call does not select one.
	DefaultProvider AIProvider

	// Providers holds per-provider credential blocks.
	Providers map[AIProvider]ProviderSettings

	// Consent gates any outbound call to a third-party provider.
	// Local providers are exempt.
	Consent bool

	// DemoMode flags a non-production demo build. The facade intercepts
	// chat calls before any provider dispatch and serves canned responses.
	DemoMode bool
}

// Provider returns the settings block for a provider, zero if absent.
func (s AppSettings) Provider(p AIProvider) ProviderSettings {
	return s.Providers[p]
}

// IsConfigured reports whether the given provider is usable.
func (s AppSettings) IsConfigured(p AIProvider) bool {
	return s.Providers[p].IsConfigured(p)
}

// FallbackOrder is the fixed provider priority used when the selected or
// default provider is not configured: self-hosted first, then the commercial
// providers cost-ascending.
func FallbackOrder() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderGemini,
		AIProviderOpenAI,
		AIProviderClaude,
	}
}

// ProviderForModel infers a provider from a model name's prefix
// convention. Returns empty when the name matches no known convention.
func ProviderForModel(model string) AIProvider {
	switch {
	case strings.HasPrefix(model, "gpt-") || strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "text-embedding-3"):
		return AIProviderOpenAI
	case strings.HasPrefix(model, "gemini-"):
		return AIProviderGemini
	case strings.HasPrefix(model, "claude-"):
		return AIProviderClaude
	default:
		return ""
	}
}

// AllProviders returns every known provider.
func AllProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderGemini,
		AIProviderClaude,
		AIProviderOllama,
		AIProviderDemo,
	}
}

// DefaultModels returns the default model for each provider.
func DefaultModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOpenAI: "gpt-4o-mini",
		AIProviderGemini: "gemini-2.0-flash",
		AIProviderClaude: "claude-3-5-sonnet-latest",
		AIProviderOllama: "llama3.2",
	}
}

// CostPerMillionTokens returns the blended per-model USD rate used for cost
// estimation. Local and demo providers cost nothing.
func CostPerMillionTokens(p AIProvider, model string) float64 {
	if p.IsLocal() {
		return 0
	}
	rates := map[string]float64{
		"gpt-4o-mini":              0.60,
		"gpt-4o":                   10.00,
		"gemini-2.0-flash":         0.40,
		"gemini-1.5-pro":           5.00,
		"claude-3-5-sonnet-latest": 9.00,
		"claude-3-5-haiku-latest":  2.40,
	}
	if rate, ok := rates[model]; ok {
		return rate
	}
	// Unknown model on a commercial provider: assume the cheap tier.
	return 1.00
}

// DefaultAppSettings returns settings with no provider configured.
// Consent is off until the operator opts in.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		DefaultProvider: AIProviderOllama,
		Providers:       map[AIProvider]ProviderSettings{},
	}
}

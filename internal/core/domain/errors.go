package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a referenced content ID or resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed caller-supplied input.
	// Always locally recoverable; surfaced verbatim to the caller.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates a required provider credential or URL is missing.
	ErrNotConfigured = errors.New("provider not configured")

	// ErrConsentRequired indicates an outbound third-party call is blocked
	// until the stored consent flag is set.
	ErrConsentRequired = errors.New("consent required for external AI calls")

	// ErrRateLimited indicates a request throttle triggered.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrStorage indicates an underlying persistence failure.
	// Surfaced to non-elevated callers as a generic message.
	ErrStorage = errors.New("storage failure")

	// ErrEmptyKnowledgeBase indicates an operation requiring at least one
	// entry found none.
	ErrEmptyKnowledgeBase = errors.New("knowledge base is empty")
)

// ProviderErrorKind is a provider-neutral classification of upstream AI
// service failures. Providers do not share an error-code scheme, so the kind
// is derived by pattern-matching the provider's error text.
type ProviderErrorKind string

const (
	// ProviderAuthFailed means the credential was rejected.
	ProviderAuthFailed ProviderErrorKind = "auth_failed"

	// ProviderQuotaExceeded means the upstream quota or rate limit was hit.
	ProviderQuotaExceeded ProviderErrorKind = "quota_exceeded"

	// ProviderTimeout means the request deadline expired.
	ProviderTimeout ProviderErrorKind = "timeout"

	// ProviderUnknown is the fallback classification.
	ProviderUnknown ProviderErrorKind = "unknown"
)

// ProviderError wraps an upstream AI service failure with a neutral
// classification. The raw provider payload stays in Detail for internal
// logging; Error and UserMessage never expose provider text or credentials.
type ProviderError struct {
	// Provider is the provider that produced the failure.
	Provider AIProvider

	// Kind is the neutral classification.
	Kind ProviderErrorKind

	// Detail is the raw provider error text. Internal use only; must pass
	// through log sanitization before being written anywhere.
	Detail string
}

// Error returns the sanitized classification message, never the raw detail.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.UserMessage())
}

// UserMessage returns the safe, generic message for end users.
func (e *ProviderError) UserMessage() string {
	switch e.Kind {
	case ProviderAuthFailed:
		return "authentication failed"
	case ProviderQuotaExceeded:
		return "rate limit exceeded"
	case ProviderTimeout:
		return "request timed out"
	default:
		return "the AI service returned an error"
	}
}

// NewProviderError classifies an upstream error message.
func NewProviderError(provider AIProvider, detail string) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Kind:     ClassifyProviderError(detail),
		Detail:   detail,
	}
}

// ClassifyProviderError maps provider error text to a neutral kind.
func ClassifyProviderError(detail string) ProviderErrorKind {
	lower := strings.ToLower(detail)
	switch {
	case strings.Contains(lower, "api key") ||
		strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "unauthenticated") ||
		strings.Contains(lower, "invalid_api_key") ||
		strings.Contains(lower, "authentication") ||
		strings.Contains(lower, "status 401") ||
		strings.Contains(lower, "status 403"):
		return ProviderAuthFailed
	case strings.Contains(lower, "quota") ||
		strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "too many requests") ||
		strings.Contains(lower, "resource_exhausted") ||
		strings.Contains(lower, "overloaded") ||
		strings.Contains(lower, "status 429"):
		return ProviderQuotaExceeded
	case strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "timed out") ||
		strings.Contains(lower, "deadline exceeded") ||
		strings.Contains(lower, "context deadline"):
		return ProviderTimeout
	default:
		return ProviderUnknown
	}
}

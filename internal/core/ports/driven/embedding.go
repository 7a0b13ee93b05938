package driven

import "context"

// EmbeddingDimensions is the fixed vector size every embedding adapter
// produces, so downstream consumers stay provider-agnostic.
const EmbeddingDimensions = 1536

// EmbeddingService generates vector embeddings for text.
//
// Implementations:
//   - OpenAI (native)
//   - Gemini (native, padded or truncated to EmbeddingDimensions)
//   - Ollama (native when the server exposes it, structural fallback otherwise)
//   - Structural (deterministic text statistics; not semantic)
type EmbeddingService interface {
	// Embed generates a vector of EmbeddingDimensions for the text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the vector size. Always EmbeddingDimensions for
	// compliant adapters.
	Dimensions() int

	// ModelName returns the embedding model identifier.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Package structural generates deterministic placeholder embeddings
// from text statistics. The vectors are repeatable for identical input
// but carry NO semantic meaning; they exist so providers without an
// embedding endpoint can still store a stable vector per entry.
package structural

import (
	"context"
	"math"

	"github.com/aiohm/assistant/internal/core/ports/driven"
)

const modelName = "structural-v1"

// Service produces structural embeddings without any network calls.
type Service struct{}

var _ driven.EmbeddingService = (*Service)(nil)

// New creates a structural embedding service.
func New() *Service {
	return &Service{}
}

// Vector computes the structural embedding for text: a character
// frequency distribution spread over the vector, combined with
// positional sine and cosine terms, L2-normalized. Identical input
// always yields an identical vector.
func Vector(text string) []float32 {
	vec := make([]float32, driven.EmbeddingDimensions)
	runes := []rune(text)
	if len(runes) == 0 {
		return vec
	}

	n := float64(len(runes))
	for i, r := range runes {
		slot := int(uint32(r)) % driven.EmbeddingDimensions
		pos := float64(i) / n

		vec[slot] += float32(1.0 / n)
		vec[(slot+1)%driven.EmbeddingDimensions] += float32(math.Sin(pos*math.Pi) / n)
		vec[(slot+2)%driven.EmbeddingDimensions] += float32(math.Cos(pos*math.Pi) / n)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1.0 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}

// Embed returns the structural vector for the text.
func (s *Service) Embed(_ context.Context, text string) ([]float32, error) {
	return Vector(text), nil
}

// Dimensions returns the fixed vector size.
func (s *Service) Dimensions() int {
	return driven.EmbeddingDimensions
}

// ModelName returns the structural model identifier.
func (s *Service) ModelName() string {
	return modelName
}

// Ping always succeeds; there is nothing to reach.
func (s *Service) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Service) Close() error {
	return nil
}

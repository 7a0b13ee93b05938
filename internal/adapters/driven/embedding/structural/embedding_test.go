package structural

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiohm/assistant/internal/core/ports/driven"
)

func TestVector(t *testing.T) {
	t.Run("fixed dimensions", func(t *testing.T) {
		assert.Len(t, Vector("hello world"), driven.EmbeddingDimensions)
		assert.Len(t, Vector(""), driven.EmbeddingDimensions)
	})

	t.Run("deterministic", func(t *testing.T) {
		a := Vector("the quick brown fox")
		b := Vector("the quick brown fox")
		assert.Equal(t, a, b)
	})

	t.Run("different input differs", func(t *testing.T) {
		a := Vector("alpha")
		b := Vector("omega")
		assert.NotEqual(t, a, b)
	})

	t.Run("unit length", func(t *testing.T) {
		vec := Vector("some sample text with enough characters")
		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 0.001)
	})

	t.Run("empty text yields zero vector", func(t *testing.T) {
		for _, v := range Vector("") {
			assert.Zero(t, v)
		}
	})
}

func TestService(t *testing.T) {
	svc := New()

	vec, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vec, driven.EmbeddingDimensions)

	assert.Equal(t, driven.EmbeddingDimensions, svc.Dimensions())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}

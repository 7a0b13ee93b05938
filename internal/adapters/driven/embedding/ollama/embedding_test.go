package ollama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiohm/assistant/internal/adapters/driven/embedding/structural"
	"github.com/aiohm/assistant/internal/core/ports/driven"
)

func TestEmbed(t *testing.T) {
	t.Run("native embedding", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/embeddings", r.URL.Path)
			_, _ = w.Write([]byte(`{"embedding": [0.25, 0.75]}`))
		}))
		defer server.Close()

		svc, err := New(Config{BaseURL: server.URL})
		require.NoError(t, err)

		vec, err := svc.Embed(context.Background(), "hello")
		require.NoError(t, err)

		assert.Len(t, vec, driven.EmbeddingDimensions)
		assert.InDelta(t, 0.25, vec[0], 0.0001)
		assert.InDelta(t, 0.75, vec[1], 0.0001)
	})

	t.Run("missing endpoint falls back to structural", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		svc, err := New(Config{BaseURL: server.URL})
		require.NoError(t, err)

		vec, err := svc.Embed(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, structural.Vector("hello"), vec)
	})

	t.Run("empty embedding falls back to structural", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"embedding": []}`))
		}))
		defer server.Close()

		svc, err := New(Config{BaseURL: server.URL})
		require.NoError(t, err)

		vec, err := svc.Embed(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, structural.Vector("hello"), vec)
	})

	t.Run("server error surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": "out of memory"}`))
		}))
		defer server.Close()

		svc, err := New(Config{BaseURL: server.URL})
		require.NoError(t, err)

		_, err = svc.Embed(context.Background(), "hello")
		require.Error(t, err)
	})
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models": []}`))
	}))
	defer server.Close()

	svc, err := New(Config{BaseURL: server.URL})
	require.NoError(t, err)
	assert.NoError(t, svc.Ping(context.Background()))
}

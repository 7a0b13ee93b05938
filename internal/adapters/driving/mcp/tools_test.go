package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driving"
)

func sampleRanked() []domain.RankedEntry {
	return []domain.RankedEntry{
		{
			Entry: domain.Entry{
				ContentID:   "kb-1",
				Title:       "Refund policy",
				ContentType: "note",
				Content:     "Refunds within 30 days.",
				Metadata:    domain.EntryMetadata{URL: "https://example.com/refunds"},
				CreatedAt:   time.Now(),
			},
			Score: 0.92,
		},
	}
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns ranked entries", func(t *testing.T) {
		mockKB := &mockKnowledgeService{ranked: sampleRanked()}
		server, err := NewServer(&Ports{Knowledge: mockKB})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "refunds", Limit: 10})
		require.NoError(t, err)

		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "kb-1", output.Results[0].ContentID)
		assert.Equal(t, "Refund policy", output.Results[0].Title)
		assert.Equal(t, 0.92, output.Results[0].Score)
		assert.Equal(t, "Refunds within 30 days.", output.Results[0].Content)
		assert.Equal(t, "https://example.com/refunds", output.Results[0].URL)
		assert.Equal(t, 10, mockKB.lastLimit)
	})

	t.Run("default limit is 5", func(t *testing.T) {
		mockKB := &mockKnowledgeService{}
		server, err := NewServer(&Ports{Knowledge: mockKB})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "q"})
		require.NoError(t, err)
		assert.Zero(t, output.Count)
		assert.Equal(t, 5, mockKB.lastLimit)
	})

	t.Run("user id widens the scope", func(t *testing.T) {
		mockKB := &mockKnowledgeService{}
		server, err := NewServer(&Ports{Knowledge: mockKB})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "q", UserID: 7})
		require.NoError(t, err)
		assert.Equal(t, int64(7), mockKB.lastOwner)
	})

	t.Run("propagates errors", func(t *testing.T) {
		mockKB := &mockKnowledgeService{err: errors.New("store down")}
		server, err := NewServer(&Ports{Knowledge: mockKB})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "q"})
		assert.Error(t, err)
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("grounds the completion in retrieved context", func(t *testing.T) {
		mockKB := &mockKnowledgeService{ranked: sampleRanked()}
		mockAI := &mockAssistantService{
			result: &driving.CompletionResult{
				Text:     "Refunds are accepted within 30 days.",
				Provider: domain.AIProviderOpenAI,
				Model:    "gpt-4o-mini",
				Tokens:   42,
			},
		}
		server, err := NewServer(&Ports{Knowledge: mockKB, Assistant: mockAI})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "what is the refund policy?"})
		require.NoError(t, err)

		assert.Equal(t, "Refunds are accepted within 30 days.", output.Answer)
		assert.Equal(t, "openai", output.Provider)
		assert.Equal(t, int64(42), output.Tokens)
		assert.Contains(t, mockAI.lastReq.SystemMessage, "Refunds within 30 days.")
		assert.Equal(t, "what is the refund policy?", mockAI.lastReq.UserMessage)
		assert.Equal(t, "api", mockAI.lastReq.Endpoint)
	})

	t.Run("model passes through", func(t *testing.T) {
		mockKB := &mockKnowledgeService{}
		mockAI := &mockAssistantService{result: &driving.CompletionResult{Text: "x", Provider: domain.AIProviderDemo}}
		server, err := NewServer(&Ports{Knowledge: mockKB, Assistant: mockAI})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q", Model: "gpt-4o"})
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o", mockAI.lastReq.Model)
	})

	t.Run("completion errors propagate", func(t *testing.T) {
		mockKB := &mockKnowledgeService{}
		mockAI := &mockAssistantService{err: domain.ErrConsentRequired}
		server, err := NewServer(&Ports{Knowledge: mockKB, Assistant: mockAI})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})
		assert.ErrorIs(t, err, domain.ErrConsentRequired)
	})
}

func TestServer_handleAddEntry(t *testing.T) {
	ctx := context.Background()

	mockKB := &mockKnowledgeService{addedID: "kb-new"}
	server, err := NewServer(&Ports{Knowledge: mockKB})
	require.NoError(t, err)

	_, output, err := server.handleAddEntry(ctx, nil, AddEntryInput{
		Content: "New fact.",
		Title:   "Fact",
		Public:  true,
		UserID:  3,
	})
	require.NoError(t, err)

	assert.Equal(t, "kb-new", output.ContentID)
	assert.Equal(t, "New fact.", mockKB.lastAdd.Content)
	assert.Equal(t, "Fact", mockKB.lastAdd.Title)
	assert.True(t, mockKB.lastAdd.IsPublic)
	assert.Equal(t, int64(3), mockKB.lastAdd.OwnerID)
}

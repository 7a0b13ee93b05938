package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("requires knowledge service", func(t *testing.T) {
		_, err := NewServer(&Ports{})
		assert.ErrorIs(t, err, ErrMissingKnowledgeService)
	})

	t.Run("assistant is optional", func(t *testing.T) {
		server, err := NewServer(&Ports{Knowledge: &mockKnowledgeService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("full ports", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Knowledge: &mockKnowledgeService{},
			Assistant: &mockAssistantService{},
		})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

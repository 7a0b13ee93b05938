package demo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiohm/assistant/internal/core/ports/driven"
)

func TestChat(t *testing.T) {
	client := New()

	tests := []struct {
		name   string
		system string
		want   string
	}{
		{"mirror keyword", "You are Mirror, a private helper.", knowledgeReply},
		{"knowledge assistant keyword", "You are a knowledge assistant for this site.", knowledgeReply},
		{"muse keyword", "You are Muse, a creative partner.", brandReply},
		{"brand assistant keyword", "Act as a brand assistant.", brandReply},
		{"no keyword", "You are a generic helper.", genericReply},
		{"empty system", "", genericReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := client.Chat(context.Background(), tt.system, "anything", driven.ChatOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Text)
		})
	}
}

func TestPing(t *testing.T) {
	assert.NoError(t, New().Ping(context.Background()))
}

func TestDeterministic(t *testing.T) {
	client := New()
	first, err := client.Chat(context.Background(), "knowledge assistant", "q1", driven.ChatOptions{})
	require.NoError(t, err)
	second, err := client.Chat(context.Background(), "knowledge assistant", "q2", driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, first.Text, second.Text)
}

// Package demo implements an offline chat provider with canned
// responses. It never makes network calls and exists for demo builds
// where no real provider is configured.
package demo

import (
	"context"
	"strings"

	"github.com/aiohm/assistant/internal/core/ports/driven"
)

const modelName = "demo-offline"

// Canned responses keyed by a coarse intent derived from the system
// prompt. The knowledge-assistant reply mirrors what a grounded answer
// would look like; the brand-assistant reply matches the creative tone.
const (
	knowledgeReply = "Based on your knowledge base, here is what I found: " +
		"this is a demo response generated without contacting any AI provider. " +
		"Connect a real provider in settings to get answers grounded in your content."

	brandReply = "Here's a creative take for your brand: this is a demo " +
		"response generated without contacting any AI provider. Connect a real " +
		"provider in settings to get on-brand suggestions."

	genericReply = "This is a demo response. No AI provider was contacted. " +
		"Connect a provider in settings to enable real completions."
)

// Client returns canned completions.
type Client struct{}

var _ driven.ChatService = (*Client)(nil)

// New creates a demo chat client.
func New() *Client {
	return &Client{}
}

// Chat classifies the system prompt by keyword and returns the
// matching canned response.
func (c *Client) Chat(_ context.Context, system, _ string, _ driven.ChatOptions) (*driven.ChatResult, error) {
	lower := strings.ToLower(system)

	var text string
	switch {
	case strings.Contains(lower, "mirror") || strings.Contains(lower, "knowledge assistant"):
		text = knowledgeReply
	case strings.Contains(lower, "muse") || strings.Contains(lower, "brand assistant"):
		text = brandReply
	default:
		text = genericReply
	}

	return &driven.ChatResult{Text: text}, nil
}

// Ping always succeeds; there is nothing to reach.
func (c *Client) Ping(_ context.Context) error {
	return nil
}

// ModelName returns the demo model identifier.
func (c *Client) ModelName() string {
	return modelName
}

// Close is a no-op.
func (c *Client) Close() error {
	return nil
}

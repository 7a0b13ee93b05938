// Package claude implements chat completions against the Anthropic
// Messages API. Claude has no embedding endpoint; embedding falls back
// to the structural generator at the factory level.
package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driven"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	defaultModel   = "claude-3-5-sonnet-latest"
	defaultTimeout = 60 * time.Second

	// apiVersion is the required anthropic-version header value.
	apiVersion = "2023-06-01"

	// defaultMaxTokens is used when the caller does not cap the
	// completion; the Messages API requires max_tokens.
	defaultMaxTokens = 1024
)

// Config holds Anthropic connection settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client calls the Anthropic Messages endpoint.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

var _ driven.ChatService = (*Client)(nil)

// New creates a Claude chat client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: claude api key missing", domain.ErrNotConfigured)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Chat sends a message pair and returns the completion. The system
// message travels in the dedicated system field rather than the
// messages array.
func (c *Client) Chat(ctx context.Context, system, user string, opts driven.ChatOptions) (*driven.ChatResult, error) {
	model := c.model
	if opts.Model != "" {
		model = opts.Model
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	reqBody := messagesRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		System:      system,
		Messages:    []message{{Role: "user", Content: user}},
		Temperature: opts.Temperature,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, domain.NewProviderError(domain.AIProviderClaude, "request timed out: "+err.Error())
		}
		return nil, domain.NewProviderError(domain.AIProviderClaude, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp messagesResponse
		detail := fmt.Sprintf("status %d", resp.StatusCode)
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil {
			detail = fmt.Sprintf("status %d: %s: %s", resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return nil, domain.NewProviderError(domain.AIProviderClaude, detail)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return nil, domain.NewProviderError(domain.AIProviderClaude, "malformed response: "+err.Error())
	}
	if len(msgResp.Content) == 0 {
		return nil, domain.NewProviderError(domain.AIProviderClaude, "response contained no content blocks")
	}

	// Responses may interleave multiple content blocks; concatenate
	// the text blocks in order.
	var text bytes.Buffer
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &driven.ChatResult{
		Text:             text.String(),
		PromptTokens:     msgResp.Usage.InputTokens,
		CompletionTokens: msgResp.Usage.OutputTokens,
		TotalTokens:      msgResp.Usage.InputTokens + msgResp.Usage.OutputTokens,
	}, nil
}

// Ping lists models to validate connectivity and credentials.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.NewProviderError(domain.AIProviderClaude, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.NewProviderError(domain.AIProviderClaude, fmt.Sprintf("status %d", resp.StatusCode))
	}
	return nil
}

// ModelName returns the configured default model.
func (c *Client) ModelName() string {
	return c.model
}

// Close is a no-op for the HTTP client.
func (c *Client) Close() error {
	return nil
}

// Package ollama implements chat completions against a self-hosted
// Ollama server. No API key is involved; the server address comes from
// configuration.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driven"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.2"

	// Local models can be slow on first load, so the timeout is
	// longer than the hosted providers'.
	defaultTimeout = 120 * time.Second
)

// Config holds Ollama connection settings.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client calls the Ollama chat endpoint.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
}

var _ driven.ChatService = (*Client)(nil)

// New creates an Ollama chat client.
func New(cfg Config) (*Client, error) {
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
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	PromptEvalCount int64  `json:"prompt_eval_count"`
	EvalCount       int64  `json:"eval_count"`
	Error           string `json:"error,omitempty"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Chat sends a system and user message pair and returns the completion.
func (c *Client) Chat(ctx context.Context, system, user string, opts driven.ChatOptions) (*driven.ChatResult, error) {
	model := c.model
	if opts.Model != "" {
		model = opts.Model
	}

	messages := make([]chatMessage, 0, 2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	reqBody := chatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Options: chatOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, domain.NewProviderError(domain.AIProviderOllama, "request timed out: "+err.Error())
		}
		return nil, domain.NewProviderError(domain.AIProviderOllama, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp chatResponse
		detail := fmt.Sprintf("status %d", resp.StatusCode)
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			detail = fmt.Sprintf("status %d: %s", resp.StatusCode, errResp.Error)
		}
		return nil, domain.NewProviderError(domain.AIProviderOllama, detail)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, domain.NewProviderError(domain.AIProviderOllama, "malformed response: "+err.Error())
	}
	if chatResp.Error != "" {
		return nil, domain.NewProviderError(domain.AIProviderOllama, chatResp.Error)
	}

	return &driven.ChatResult{
		Text:             chatResp.Message.Content,
		PromptTokens:     chatResp.PromptEvalCount,
		CompletionTokens: chatResp.EvalCount,
		TotalTokens:      chatResp.PromptEvalCount + chatResp.EvalCount,
	}, nil
}

// Ping verifies the server is reachable and the configured model is
// installed, using the local tag listing.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.NewProviderError(domain.AIProviderOllama, "server unreachable: "+err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.NewProviderError(domain.AIProviderOllama, fmt.Sprintf("status %d", resp.StatusCode))
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return domain.NewProviderError(domain.AIProviderOllama, "malformed response: "+err.Error())
	}

	for _, m := range tags.Models {
		// Tag names carry a version suffix, e.g. "llama3.2:latest".
		if m.Name == c.model || strings.SplitN(m.Name, ":", 2)[0] == c.model {
			return nil
		}
	}
	return domain.NewProviderError(domain.AIProviderOllama,
		fmt.Sprintf("model %q is not installed; run: ollama pull %s", c.model, c.model))
}

// ModelName returns the configured default model.
func (c *Client) ModelName() string {
	return c.model
}

// Close is a no-op for the HTTP client.
func (c *Client) Close() error {
	return nil
}

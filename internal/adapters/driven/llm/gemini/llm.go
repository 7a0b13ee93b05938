// Package gemini implements chat completions against the Google
// Gemini generateContent API. Gemini has no system role, so the system
// and user messages are merged into a single user prompt.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driven"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"
	defaultTimeout = 60 * time.Second
)

// Config holds Gemini connection settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

var _ driven.ChatService = (*Client)(nil)

// New creates a Gemini chat client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini api key missing", domain.ErrNotConfigured)
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

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int64 `json:"promptTokenCount"`
		CandidatesTokenCount int64 `json:"candidatesTokenCount"`
		TotalTokenCount      int64 `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// mergePrompt folds the system message into the user prompt. The
// explicit instruction keeps the model anchored to the provided
// context instead of answering from general knowledge.
func mergePrompt(system, user string) string {
	if system == "" {
		return user
	}
	var b strings.Builder
	b.WriteString(system)
	b.WriteString("\n\nUse the information above to answer the following.\n\n")
	b.WriteString(user)
	return b.String()
}

// Chat sends a merged prompt and returns the completion.
func (c *Client) Chat(ctx context.Context, system, user string, opts driven.ChatOptions) (*driven.ChatResult, error) {
	model := c.model
	if opts.Model != "" {
		model = opts.Model
	}

	reqBody := generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: mergePrompt(system, user)}},
		}},
		GenerationConfig: generationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxTokens,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, domain.NewProviderError(domain.AIProviderGemini, "request timed out: "+err.Error())
		}
		return nil, domain.NewProviderError(domain.AIProviderGemini, sanitizeKey(err.Error(), c.apiKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp generateResponse
		detail := fmt.Sprintf("status %d", resp.StatusCode)
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil {
			detail = fmt.Sprintf("status %d: %s: %s", resp.StatusCode, errResp.Error.Status, errResp.Error.Message)
		}
		return nil, domain.NewProviderError(domain.AIProviderGemini, sanitizeKey(detail, c.apiKey))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, domain.NewProviderError(domain.AIProviderGemini, "malformed response: "+err.Error())
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, domain.NewProviderError(domain.AIProviderGemini, "response contained no candidates")
	}

	var text strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	return &driven.ChatResult{
		Text:             text.String(),
		PromptTokens:     genResp.UsageMetadata.PromptTokenCount,
		CompletionTokens: genResp.UsageMetadata.CandidatesTokenCount,
		TotalTokens:      genResp.UsageMetadata.TotalTokenCount,
	}, nil
}

// Ping fetches the configured model's metadata to validate the key.
func (c *Client) Ping(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/models/%s?key=%s", c.baseURL, c.model, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.NewProviderError(domain.AIProviderGemini, sanitizeKey(err.Error(), c.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.NewProviderError(domain.AIProviderGemini, fmt.Sprintf("status %d", resp.StatusCode))
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

// sanitizeKey strips the API key from error text. The key travels in
// the URL, so transport errors can echo it back.
func sanitizeKey(s, key string) string {
	if key == "" {
		return s
	}
	s = strings.ReplaceAll(s, key, "[redacted]")
	return strings.ReplaceAll(s, url.QueryEscape(key), "[redacted]")
}

// Package gemini implements embeddings against the Google Gemini
// embedContent API. The native vectors are shorter than the fixed size
// used throughout, so they are zero-padded.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
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
	defaultModel   = "text-embedding-004"
	defaultTimeout = 60 * time.Second
)

// Config holds Gemini embedding settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Service generates embeddings via the Gemini embedContent endpoint.
type Service struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

var _ driven.EmbeddingService = (*Service)(nil)

// New creates a Gemini embedding service.
func New(cfg Config) (*Service, error) {
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
	return &Service{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type part struct {
	Text string `json:"text"`
}

type embedRequest struct {
	Model   string `json:"model"`
	Content struct {
		Parts []part `json:"parts"`
	} `json:"content"`
}

type embedResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
	Error *struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Embed generates a vector for the text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	var reqBody embedRequest
	reqBody.Model = "models/" + s.model
	reqBody.Content.Parts = []part{{Text: text}}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:embedContent?key=%s", s.baseURL, s.model, url.QueryEscape(s.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, domain.NewProviderError(domain.AIProviderGemini, sanitizeKey(err.Error(), s.apiKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp embedResponse
		detail := fmt.Sprintf("status %d", resp.StatusCode)
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil {
			detail = fmt.Sprintf("status %d: %s: %s", resp.StatusCode, errResp.Error.Status, errResp.Error.Message)
		}
		return nil, domain.NewProviderError(domain.AIProviderGemini, sanitizeKey(detail, s.apiKey))
	}

	var embedResp embedResponse
	if err := json.Unmarshal(body, &embedResp); err != nil {
		return nil, domain.NewProviderError(domain.AIProviderGemini, "malformed response: "+err.Error())
	}
	if len(embedResp.Embedding.Values) == 0 {
		return nil, domain.NewProviderError(domain.AIProviderGemini, "response contained no embedding values")
	}

	return fit(embedResp.Embedding.Values), nil
}

// fit converts to float32 and pads or truncates to the fixed size.
func fit(raw []float64) []float32 {
	vec := make([]float32, driven.EmbeddingDimensions)
	for i := 0; i < len(raw) && i < driven.EmbeddingDimensions; i++ {
		vec[i] = float32(raw[i])
	}
	return vec
}

// Dimensions returns the fixed vector size.
func (s *Service) Dimensions() int {
	return driven.EmbeddingDimensions
}

// ModelName returns the configured embedding model.
func (s *Service) ModelName() string {
	return s.model
}

// Ping fetches the configured model's metadata to validate the key.
func (s *Service) Ping(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/models/%s?key=%s", s.baseURL, s.model, url.QueryEscape(s.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return domain.NewProviderError(domain.AIProviderGemini, sanitizeKey(err.Error(), s.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.NewProviderError(domain.AIProviderGemini, fmt.Sprintf("status %d", resp.StatusCode))
	}
	return nil
}

// Close is a no-op for the HTTP client.
func (s *Service) Close() error {
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

// Package openai implements embeddings against the OpenAI API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driven"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "text-embedding-3-small"
	defaultTimeout = 60 * time.Second
)

// Config holds OpenAI embedding settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Service generates embeddings via the OpenAI embeddings endpoint.
type Service struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

var _ driven.EmbeddingService = (*Service)(nil)

// New creates an OpenAI embedding service.
func New(cfg Config) (*Service, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai api key missing", domain.ErrNotConfigured)
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

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Embed generates a vector for the text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := embeddingRequest{
		Model: s.model,
		Input: []string{text},
	}
	// The 3-series models accept a requested dimension directly.
	if s.model == "text-embedding-3-small" || s.model == "text-embedding-3-large" {
		reqBody.Dimensions = driven.EmbeddingDimensions
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, domain.NewProviderError(domain.AIProviderOpenAI, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp embeddingResponse
		detail := fmt.Sprintf("status %d", resp.StatusCode)
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil {
			detail = fmt.Sprintf("status %d: %s: %s", resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return nil, domain.NewProviderError(domain.AIProviderOpenAI, detail)
	}

	var embedResp embeddingResponse
	if err := json.Unmarshal(body, &embedResp); err != nil {
		return nil, domain.NewProviderError(domain.AIProviderOpenAI, "malformed response: "+err.Error())
	}
	if len(embedResp.Data) == 0 {
		return nil, domain.NewProviderError(domain.AIProviderOpenAI, "response contained no embeddings")
	}

	return fit(embedResp.Data[0].Embedding), nil
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

// Ping lists models to validate connectivity and credentials.
func (s *Service) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return domain.NewProviderError(domain.AIProviderOpenAI, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.NewProviderError(domain.AIProviderOpenAI, fmt.Sprintf("status %d", resp.StatusCode))
	}
	return nil
}

// Close is a no-op for the HTTP client.
func (s *Service) Close() error {
	return nil
}

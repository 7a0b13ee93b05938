// Package ollama implements embeddings against a self-hosted Ollama
// server. Older servers have no embedding endpoint; those fall back to
// the structural generator so every entry still gets a stable vector.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aiohm/assistant/internal/adapters/driven/embedding/structural"
	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driven"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "nomic-embed-text"
	defaultTimeout = 60 * time.Second
)

// Config holds Ollama embedding settings.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Service generates embeddings via the Ollama embeddings endpoint.
type Service struct {
	baseURL string
	model   string
	http    *http.Client
}

var _ driven.EmbeddingService = (*Service)(nil)

// New creates an Ollama embedding service.
func New(cfg Config) (*Service, error) {
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
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

// Embed generates a vector for the text. A server without the
// embedding endpoint, or without the embedding model installed, falls
// back to the structural generator.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := embedRequest{
		Model:  s.model,
		Prompt: text,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, domain.NewProviderError(domain.AIProviderOllama, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return structural.Vector(text), nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp embedResponse
		detail := fmt.Sprintf("status %d", resp.StatusCode)
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			detail = fmt.Sprintf("status %d: %s", resp.StatusCode, errResp.Error)
		}
		return nil, domain.NewProviderError(domain.AIProviderOllama, detail)
	}

	var embedResp embedResponse
	if err := json.Unmarshal(body, &embedResp); err != nil {
		return nil, domain.NewProviderError(domain.AIProviderOllama, "malformed response: "+err.Error())
	}
	if len(embedResp.Embedding) == 0 {
		return structural.Vector(text), nil
	}

	return fit(embedResp.Embedding), nil
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

// Ping verifies the server is reachable.
func (s *Service) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return domain.NewProviderError(domain.AIProviderOllama, "server unreachable: "+err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.NewProviderError(domain.AIProviderOllama, fmt.Sprintf("status %d", resp.StatusCode))
	}
	return nil
}

// Close is a no-op for the HTTP client.
func (s *Service) Close() error {
	return nil
}

package ai

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driven"
)

// outboundLimit configures the client-side token bucket for one provider.
type outboundLimit struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// outboundLimits holds conservative per-provider defaults, well below the
// providers' actual limits so one chatty session never trips a quota.
// Providers without an entry are not throttled.
var outboundLimits = map[domain.AIProvider]outboundLimit{
	domain.AIProviderOpenAI: {RequestsPerSecond: 2.0, BurstSize: 4},
	domain.AIProviderGemini: {RequestsPerSecond: 1.0, BurstSize: 2},
	domain.AIProviderClaude: {RequestsPerSecond: 1.0, BurstSize: 2},
}

// quotaBackoff is how long to hold off after an upstream quota error.
const quotaBackoff = 60 * time.Second

// throttledChat wraps a chat adapter with a token bucket and a backoff
// period after 429 responses.
type throttledChat struct {
	driven.ChatService

	limiter *rate.Limiter

	mu      sync.Mutex
	retryAt time.Time
}

// throttled wraps svc when the provider has an outbound limit configured.
func throttled(svc driven.ChatService, provider domain.AIProvider) driven.ChatService {
	cfg, ok := outboundLimits[provider]
	if !ok {
		return svc
	}
	return &throttledChat{
		ChatService: svc,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

func (t *throttledChat) Chat(ctx context.Context, system, user string, opts driven.ChatOptions) (*driven.ChatResult, error) {
	t.mu.Lock()
	retryAt := t.retryAt
	t.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := t.ChatService.Chat(ctx, system, user, opts)
	if err != nil {
		var provErr *domain.ProviderError
		if errors.As(err, &provErr) && provErr.Kind == domain.ProviderQuotaExceeded {
			t.mu.Lock()
			t.retryAt = time.Now().Add(quotaBackoff)
			t.mu.Unlock()
		}
	}
	return result, err
}

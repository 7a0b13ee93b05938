package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driven"
)

// Ensure UsageStore implements the interface.
var _ driven.UsageStore = (*UsageStore)(nil)

type usageKey struct {
	provider domain.AIProvider
	day      string
}

// UsageStore is an in-memory implementation of driven.UsageStore.
type UsageStore struct {
	mu   sync.Mutex
	rows map[usageKey]domain.UsageRecord

	// now is swappable for tests.
	now func() time.Time
}

// NewUsageStore creates a new in-memory usage ledger.
func NewUsageStore() *UsageStore {
	return &UsageStore{
		rows: make(map[usageKey]domain.UsageRecord),
		now:  time.Now,
	}
}

// SetClock replaces the time source. Test hook.
func (s *UsageStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Record adds tokens and cost to the (provider, today) row.
func (s *UsageStore) Record(_ context.Context, provider domain.AIProvider, tokens int64, cost float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := usageKey{provider: provider, day: domain.UsageDay(s.now())}
	row, ok := s.rows[key]
	if !ok {
		row = domain.UsageRecord{Provider: provider, Day: key.day}
	}
	row.TokensUsed += tokens
	row.RequestsCount++
	row.CostEstimate += cost
	s.rows[key] = row
	return nil
}

// Aggregate sums usage across providers since the given day, inclusive.
func (s *UsageStore) Aggregate(_ context.Context, sinceDay string) (*domain.UsageSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := &domain.UsageSummary{
		ByProvider: make(map[domain.AIProvider]domain.UsageRecord),
	}
	for key, row := range s.rows {
		if sinceDay != "" && key.day < sinceDay {
			continue
		}
		summary.TotalTokens += row.TokensUsed
		summary.TotalRequests += row.RequestsCount
		summary.TotalCost += row.CostEstimate

		agg := summary.ByProvider[key.provider]
		agg.Provider = key.provider
		agg.TokensUsed += row.TokensUsed
		agg.RequestsCount += row.RequestsCount
		agg.CostEstimate += row.CostEstimate
		summary.ByProvider[key.provider] = agg
	}
	return summary, nil
}

// TodayTokens returns the token count for a provider on the current day.
func (s *UsageStore) TodayTokens(_ context.Context, provider domain.AIProvider) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := usageKey{provider: provider, day: domain.UsageDay(s.now())}
	return s.rows[key].TokensUsed, nil
}

package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driven"
)

// usageStore implements driven.UsageStore.
type usageStore struct {
	store *Store

	// now is swappable for tests.
	now func() time.Time
}

var _ driven.UsageStore = (*usageStore)(nil)

func (s *usageStore) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// Record adds tokens and cost to the (provider, today) row. The increment
// is a single upsert statement, so concurrent requests cannot lose updates.
func (s *usageStore) Record(ctx context.Context, provider domain.AIProvider, tokens int64, cost float64) error {
	day := domain.UsageDay(s.clock())
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO usage (provider, day, tokens, requests, cost)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(provider, day) DO UPDATE SET
			tokens = tokens + excluded.tokens,
			requests = requests + 1,
			cost = cost + excluded.cost
	`, provider.String(), day, tokens, cost)
	if err != nil {
		return fmt.Errorf("%w: recording usage: %w", domain.ErrStorage, err)
	}
	return nil
}

// Aggregate sums usage across providers since the given day, inclusive.
func (s *usageStore) Aggregate(ctx context.Context, sinceDay string) (*domain.UsageSummary, error) {
	query := `
		SELECT provider, SUM(tokens), SUM(requests), SUM(cost)
		FROM usage
	`
	var args []any
	if sinceDay != "" {
		query += " WHERE day >= ?"
		args = append(args, sinceDay)
	}
	query += " GROUP BY provider"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying usage: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	summary := &domain.UsageSummary{
		ByProvider: make(map[domain.AIProvider]domain.UsageRecord),
	}
	for rows.Next() {
		var providerName string
		var record domain.UsageRecord
		if err := rows.Scan(&providerName, &record.TokensUsed, &record.RequestsCount, &record.CostEstimate); err != nil {
			return nil, fmt.Errorf("%w: scanning usage: %w", domain.ErrStorage, err)
		}
		record.Provider = domain.AIProvider(providerName)
		summary.ByProvider[record.Provider] = record

		summary.TotalTokens += record.TokensUsed
		summary.TotalRequests += record.RequestsCount
		summary.TotalCost += record.CostEstimate
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating usage: %w", domain.ErrStorage, err)
	}
	return summary, nil
}

// TodayTokens returns the token count for a provider on the current day.
func (s *usageStore) TodayTokens(ctx context.Context, provider domain.AIProvider) (int64, error) {
	day := domain.UsageDay(s.clock())
	var tokens int64
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(tokens), 0) FROM usage WHERE provider = ? AND day = ?",
		provider.String(), day).Scan(&tokens)
	if err != nil {
		return 0, fmt.Errorf("%w: reading usage: %w", domain.ErrStorage, err)
	}
	return tokens, nil
}

package driven

import (
	"context"

	"github.com/aiohm/assistant/internal/core/domain"
)

// EntryStore persists knowledge entries.
// Implementations must support concurrent readers and writers; upsert by
// content ID must be atomic.
type EntryStore interface {
	// Put inserts or updates an entry keyed by its content ID and returns
	// the store-assigned ID. A second Put with an existing content ID
	// overwrites, never duplicates.
	Put(ctx context.Context, entry *domain.Entry) (int64, error)

	// GetByContentID retrieves an entry by its caller-assigned key.
	// Returns domain.ErrNotFound if absent.
	GetByContentID(ctx context.Context, contentID string) (*domain.Entry, error)

	// DeleteByContentID removes an entry. Returns false without error if
	// the content ID is unknown.
	DeleteByContentID(ctx context.Context, contentID string) (bool, error)

	// SetVisibility toggles the public flag. Returns false without error
	// if the content ID is unknown.
	SetVisibility(ctx context.Context, contentID string, isPublic bool) (bool, error)

	// ListCandidates returns all entries matching the scope. Truncation is
	// the ranking layer's job, not the store's.
	ListCandidates(ctx context.Context, scope domain.Scope) ([]domain.Entry, error)

	// Count returns the number of entries matching the scope.
	Count(ctx context.Context, scope domain.Scope) (int64, error)

	// DeleteAll removes every entry matching the scope and returns the
	// number removed.
	DeleteAll(ctx context.Context, scope domain.Scope) (int64, error)
}

// UsageStore accumulates daily token and cost counters per provider.
// The per-day increment must be atomic to avoid lost updates under
// concurrent requests.
type UsageStore interface {
	// Record adds tokens and cost to the (provider, today) row, creating
	// it with a request count of one if absent.
	Record(ctx context.Context, provider domain.AIProvider, tokens int64, cost float64) error

	// Aggregate sums usage across providers since the given day
	// (inclusive, UsageDayFormat).
	Aggregate(ctx context.Context, sinceDay string) (*domain.UsageSummary, error)

	// TodayTokens returns the token count for a provider on the current day.
	TodayTokens(ctx context.Context, provider domain.AIProvider) (int64, error)
}

package driving

import (
	"context"

	"github.com/aiohm/assistant/internal/core/domain"
)

// AddEntryInput carries the fields for a new knowledge entry.
type AddEntryInput struct {
	// Content is the text body. Required.
	Content string

	// ContentType classifies the entry ("post", "pdf", "conversation", ...).
	ContentType string

	// Title is the display label.
	Title string

	// Metadata carries presentation fields.
	Metadata domain.EntryMetadata

	// OwnerID ties the entry to a user. Zero means unowned.
	OwnerID int64

	// IsPublic marks the entry visible to the public scope.
	IsPublic bool

	// ContentID is the caller-assigned key. Generated when empty.
	ContentID string
}

// BulkResult tallies per-item outcomes of a bulk operation.
// Bulk operations never abort early on a single failure.
type BulkResult struct {
	Succeeded int

	// Failed maps each failing content ID to the reason.
	Failed map[string]string
}

// FailedCount returns the number of failed items.
func (r BulkResult) FailedCount() int {
	return len(r.Failed)
}

// KnowledgeService is the retrieval engine port: scoped context lookup for
// chat callers plus the full ingestion surface.
type KnowledgeService interface {
	// FindPublicContext ranks public entries against the query and returns
	// up to k results. Used by anonymous chat and public search.
	FindPublicContext(ctx context.Context, query string, k int) ([]domain.RankedEntry, error)

	// FindContextForUser ranks entries visible to ownerID (their own plus
	// public) against the query. Used by the authenticated assistant.
	FindContextForUser(ctx context.Context, query string, ownerID int64, k int) ([]domain.RankedEntry, error)

	// AddEntry validates and stores a new entry, returning its content ID.
	AddEntry(ctx context.Context, in AddEntryInput) (string, error)

	// UpdateEntryContent replaces an entry's content in place.
	UpdateEntryContent(ctx context.Context, contentID, content string) error

	// UpdateEntryMetadata replaces an entry's metadata in place.
	UpdateEntryMetadata(ctx context.Context, contentID string, metadata domain.EntryMetadata) error

	// DeleteEntry removes one entry.
	DeleteEntry(ctx context.Context, contentID string) error

	// BulkDelete removes many entries with a per-item tally.
	BulkDelete(ctx context.Context, contentIDs []string) (BulkResult, error)

	// SetVisibility toggles one entry's public flag.
	SetVisibility(ctx context.Context, contentID string, isPublic bool) error

	// BulkSetVisibility toggles many entries with a per-item tally.
	BulkSetVisibility(ctx context.Context, contentIDs []string, isPublic bool) (BulkResult, error)

	// ListEntries returns all entries visible under the scope.
	ListEntries(ctx context.Context, scope domain.Scope) ([]domain.Entry, error)

	// Export serializes entries visible to ownerID as a JSON array.
	Export(ctx context.Context, ownerID int64) ([]byte, error)

	// Import inserts entries from a JSON array, skipping malformed
	// elements, and returns the number inserted.
	Import(ctx context.Context, blob []byte, ownerID int64) (int, error)

	// RandomSample returns one entry chosen uniformly. Fails with
	// domain.ErrEmptyKnowledgeBase when the store is empty.
	RandomSample(ctx context.Context) (*domain.Entry, error)

	// Reset deletes every entry in the scope and returns the count removed.
	Reset(ctx context.Context, scope domain.Scope) (int64, error)

	// SaveConversation stores a formatted transcript as a knowledge entry
	// of type "conversation".
	SaveConversation(ctx context.Context, title, transcript string, ownerID int64) (string, error)
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driven"
	"github.com/aiohm/assistant/internal/core/ports/driving"
	"github.com/aiohm/assistant/internal/ranking"
)

// ContentTypeConversation marks entries created from saved chat transcripts.
const ContentTypeConversation = "conversation"

// defaultContentType classifies entries added without one.
const defaultContentType = "note"

var _ driving.KnowledgeService = (*KnowledgeService)(nil)

// KnowledgeService is the retrieval engine: scoped candidate selection,
// lexical ranking, and the full ingestion surface.
type KnowledgeService struct {
	store  driven.EntryStore
	ranker *ranking.Ranker
	log    *zap.Logger

	// pick selects a random index; swappable for tests.
	pick func(n int) int
}

// NewKnowledgeService creates the retrieval engine.
func NewKnowledgeService(store driven.EntryStore, ranker *ranking.Ranker, log *zap.Logger) *KnowledgeService {
	if log == nil {
		log = zap.NewNop()
	}
	return &KnowledgeService{
		store:  store,
		ranker: ranker,
		log:    log,
		pick:   rand.IntN,
	}
}

// FindPublicContext ranks public entries against the query.
func (s *KnowledgeService) FindPublicContext(ctx context.Context, query string, k int) ([]domain.RankedEntry, error) {
	return s.findContext(ctx, query, domain.PublicScope(), k)
}

// FindContextForUser ranks entries visible to ownerID against the query.
// A zero owner degrades to the public scope.
func (s *KnowledgeService) FindContextForUser(ctx context.Context, query string, ownerID int64, k int) ([]domain.RankedEntry, error) {
	return s.findContext(ctx, query, domain.UserScope(ownerID), k)
}

func (s *KnowledgeService) findContext(ctx context.Context, query string, scope domain.Scope, k int) ([]domain.RankedEntry, error) {
	candidates, err := s.store.ListCandidates(ctx, scope)
	if err != nil {
		return nil, err
	}

	ranked := s.ranker.Rank(query, candidates, k)
	s.log.Debug("context lookup",
		zap.String("scope", scope.String()),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(ranked)))
	return ranked, nil
}

// AddEntry validates and stores a new entry, returning its content ID.
// A missing content ID is generated; a missing content type defaults.
func (s *KnowledgeService) AddEntry(ctx context.Context, in driving.AddEntryInput) (string, error) {
	if strings.TrimSpace(in.Content) == "" {
		return "", fmt.Errorf("%w: content is empty", domain.ErrInvalidInput)
	}

	contentID := in.ContentID
	if contentID == "" {
		contentID = uuid.NewString()
	}
	contentType := in.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	entry := &domain.Entry{
		ContentID:   contentID,
		OwnerID:     in.OwnerID,
		IsPublic:    in.IsPublic,
		ContentType: contentType,
		Title:       in.Title,
		Content:     in.Content,
		Metadata:    in.Metadata,
	}
	if err := entry.Validate(); err != nil {
		return "", err
	}

	if _, err := s.store.Put(ctx, entry); err != nil {
		return "", err
	}
	s.log.Info("entry added",
		zap.String("content_id", contentID),
		zap.String("content_type", contentType),
		zap.Bool("public", in.IsPublic))
	return contentID, nil
}

// UpdateEntryContent replaces an entry's content in place.
func (s *KnowledgeService) UpdateEntryContent(ctx context.Context, contentID, content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content is empty", domain.ErrInvalidInput)
	}

	entry, err := s.store.GetByContentID(ctx, contentID)
	if err != nil {
		return err
	}
	entry.Content = content
	_, err = s.store.Put(ctx, entry)
	return err
}

// UpdateEntryMetadata replaces an entry's metadata in place.
func (s *KnowledgeService) UpdateEntryMetadata(ctx context.Context, contentID string, metadata domain.EntryMetadata) error {
	entry, err := s.store.GetByContentID(ctx, contentID)
	if err != nil {
		return err
	}
	entry.Metadata = metadata
	_, err = s.store.Put(ctx, entry)
	return err
}

// DeleteEntry removes one entry.
func (s *KnowledgeService) DeleteEntry(ctx context.Context, contentID string) error {
	deleted, err := s.store.DeleteByContentID(ctx, contentID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: entry %q", domain.ErrNotFound, contentID)
	}
	return nil
}

// BulkDelete removes many entries with a per-item tally. A single
// failure never aborts the batch.
func (s *KnowledgeService) BulkDelete(ctx context.Context, contentIDs []string) (driving.BulkResult, error) {
	result := driving.BulkResult{Failed: make(map[string]string)}
	for _, id := range contentIDs {
		if err := s.DeleteEntry(ctx, id); err != nil {
			result.Failed[id] = err.Error()
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

// SetVisibility toggles one entry's public flag.
func (s *KnowledgeService) SetVisibility(ctx context.Context, contentID string, isPublic bool) error {
	updated, err := s.store.SetVisibility(ctx, contentID, isPublic)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("%w: entry %q", domain.ErrNotFound, contentID)
	}
	return nil
}

// BulkSetVisibility toggles many entries with a per-item tally.
func (s *KnowledgeService) BulkSetVisibility(ctx context.Context, contentIDs []string, isPublic bool) (driving.BulkResult, error) {
	result := driving.BulkResult{Failed: make(map[string]string)}
	for _, id := range contentIDs {
		if err := s.SetVisibility(ctx, id, isPublic); err != nil {
			result.Failed[id] = err.Error()
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

// ListEntries returns all entries visible under the scope.
func (s *KnowledgeService) ListEntries(ctx context.Context, scope domain.Scope) ([]domain.Entry, error) {
	return s.store.ListCandidates(ctx, scope)
}

// exportedEntry is the portable JSON form used by Export and Import.
// Store-assigned IDs and vectors deliberately stay out of it.
type exportedEntry struct {
	ContentID   string               `json:"content_id"`
	OwnerID     int64                `json:"owner_id,omitempty"`
	IsPublic    bool                 `json:"is_public"`
	ContentType string               `json:"content_type"`
	Title       string               `json:"title,omitempty"`
	Content     string               `json:"content"`
	Metadata    domain.EntryMetadata `json:"metadata,omitempty"`
	CreatedAt   time.Time            `json:"created_at,omitempty"`
}

// Export serializes entries visible to ownerID as a JSON array.
// Owner zero exports the public scope.
func (s *KnowledgeService) Export(ctx context.Context, ownerID int64) ([]byte, error) {
	entries, err := s.store.ListCandidates(ctx, domain.UserScope(ownerID))
	if err != nil {
		return nil, err
	}

	out := make([]exportedEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, exportedEntry{
			ContentID:   e.ContentID,
			OwnerID:     e.OwnerID,
			IsPublic:    e.IsPublic,
			ContentType: e.ContentType,
			Title:       e.Title,
			Content:     e.Content,
			Metadata:    e.Metadata,
			CreatedAt:   e.CreatedAt,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

// Import inserts entries from a JSON array and returns the number
// inserted. Malformed elements are skipped, not fatal. A non-zero
// ownerID claims every imported entry.
func (s *KnowledgeService) Import(ctx context.Context, blob []byte, ownerID int64) (int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(blob, &raw); err != nil {
		return 0, fmt.Errorf("%w: not a JSON array: %v", domain.ErrInvalidInput, err)
	}

	inserted := 0
	for i, element := range raw {
		var in exportedEntry
		if err := json.Unmarshal(element, &in); err != nil {
			s.log.Warn("import element skipped", zap.Int("index", i), zap.Error(err))
			continue
		}
		if strings.TrimSpace(in.Content) == "" {
			s.log.Warn("import element skipped", zap.Int("index", i), zap.String("reason", "empty content"))
			continue
		}

		owner := in.OwnerID
		if ownerID != 0 {
			owner = ownerID
		}
		contentID := in.ContentID
		if contentID == "" {
			contentID = uuid.NewString()
		}
		entry := &domain.Entry{
			ContentID:   contentID,
			OwnerID:     owner,
			IsPublic:    in.IsPublic,
			ContentType: in.ContentType,
			Title:       in.Title,
			Content:     in.Content,
			Metadata:    in.Metadata,
			CreatedAt:   in.CreatedAt,
		}
		if entry.ContentType == "" {
			entry.ContentType = defaultContentType
		}
		if err := entry.Validate(); err != nil {
			s.log.Warn("import element skipped", zap.Int("index", i), zap.Error(err))
			continue
		}
		if _, err := s.store.Put(ctx, entry); err != nil {
			return inserted, err
		}
		inserted++
	}

	s.log.Info("import finished", zap.Int("inserted", inserted), zap.Int("skipped", len(raw)-inserted))
	return inserted, nil
}

// RandomSample returns one entry chosen uniformly across the whole store.
func (s *KnowledgeService) RandomSample(ctx context.Context) (*domain.Entry, error) {
	entries, err := s.store.ListCandidates(ctx, domain.AllScope())
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domain.ErrEmptyKnowledgeBase
	}
	entry := entries[s.pick(len(entries))]
	return &entry, nil
}

// Reset deletes every entry in the scope and returns the count removed.
func (s *KnowledgeService) Reset(ctx context.Context, scope domain.Scope) (int64, error) {
	n, err := s.store.DeleteAll(ctx, scope)
	if err != nil {
		return 0, err
	}
	s.log.Info("knowledge base reset", zap.String("scope", scope.String()), zap.Int64("removed", n))
	return n, nil
}

// SaveConversation stores a formatted transcript as a private knowledge
// entry so later questions can retrieve it.
func (s *KnowledgeService) SaveConversation(ctx context.Context, title, transcript string, ownerID int64) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", fmt.Errorf("%w: transcript is empty", domain.ErrInvalidInput)
	}
	if title == "" {
		title = "Conversation " + time.Now().Format("2006-01-02 15:04")
	}

	return s.AddEntry(ctx, driving.AddEntryInput{
		Content:     transcript,
		ContentType: ContentTypeConversation,
		Title:       title,
		OwnerID:     ownerID,
		ContentID:   "conv-" + uuid.NewString(),
	})
}

// BuildContextBlock formats ranked entries into the context block chat
// callers substitute into their system prompt. Each entry is labelled
// with its title and source so answers can cite where they came from.
func BuildContextBlock(ranked []domain.RankedEntry) string {
	if len(ranked) == 0 {
		return ""
	}

	var b strings.Builder
	for i, r := range ranked {
		if i > 0 {
			b.WriteString("\n\n")
		}
		title := r.Entry.Title
		if title == "" {
			title = r.Entry.ContentID
		}
		b.WriteString(fmt.Sprintf("[%d] %s", i+1, title))
		if r.Entry.Metadata.URL != "" {
			b.WriteString(" (" + r.Entry.Metadata.URL + ")")
		}
		b.WriteString("\n")
		b.WriteString(r.Entry.Content)
	}
	return b.String()
}

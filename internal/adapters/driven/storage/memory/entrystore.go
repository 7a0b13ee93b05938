// Package memory provides in-memory store implementations used by tests
// and ephemeral runs. Safe for concurrent use.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driven"
)

// Ensure EntryStore implements the interface.
var _ driven.EntryStore = (*EntryStore)(nil)

// EntryStore is an in-memory implementation of driven.EntryStore.
type EntryStore struct {
	mu      sync.RWMutex
	entries map[string]domain.Entry
	nextID  int64
}

// NewEntryStore creates a new in-memory entry store.
func NewEntryStore() *EntryStore {
	return &EntryStore{
		entries: make(map[string]domain.Entry),
		nextID:  1,
	}
}

// Put inserts or updates an entry keyed by content ID.
func (s *EntryStore) Put(_ context.Context, entry *domain.Entry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *entry
	if existing, ok := s.entries[entry.ContentID]; ok {
		// Overwrite preserves identity and creation time.
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.ID = s.nextID
		s.nextID++
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = time.Now().UTC()
		}
	}
	s.entries[entry.ContentID] = stored
	return stored.ID, nil
}

// GetByContentID retrieves an entry by its caller-assigned key.
func (s *EntryStore) GetByContentID(_ context.Context, contentID string) (*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[contentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

// DeleteByContentID removes an entry, reporting whether it existed.
func (s *EntryStore) DeleteByContentID(_ context.Context, contentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[contentID]; !ok {
		return false, nil
	}
	delete(s.entries, contentID)
	return true, nil
}

// SetVisibility toggles the public flag, reporting whether the entry existed.
func (s *EntryStore) SetVisibility(_ context.Context, contentID string, isPublic bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[contentID]
	if !ok {
		return false, nil
	}
	entry.IsPublic = isPublic
	s.entries[contentID] = entry
	return true, nil
}

// ListCandidates returns all entries matching the scope.
func (s *EntryStore) ListCandidates(_ context.Context, scope domain.Scope) ([]domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Entry
	for id := range s.entries {
		entry := s.entries[id]
		if entry.Visible(scope) {
			result = append(result, entry)
		}
	}
	return result, nil
}

// Count returns the number of entries matching the scope.
func (s *EntryStore) Count(_ context.Context, scope domain.Scope) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for id := range s.entries {
		entry := s.entries[id]
		if entry.Visible(scope) {
			n++
		}
	}
	return n, nil
}

// DeleteAll removes every entry matching the scope.
func (s *EntryStore) DeleteAll(_ context.Context, scope domain.Scope) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id := range s.entries {
		entry := s.entries[id]
		if entry.Visible(scope) {
			delete(s.entries, id)
			n++
		}
	}
	return n, nil
}

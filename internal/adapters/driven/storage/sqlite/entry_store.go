package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// entryStore implements driven.EntryStore.
type entryStore struct {
	store *Store
}

var _ driven.EntryStore = (*entryStore)(nil)

// Put inserts or updates an entry keyed by content_id. The upsert is a
// single statement, so concurrent writers cannot duplicate a key.
func (s *entryStore) Put(ctx context.Context, entry *domain.Entry) (int64, error) {
	metadataJSON, err := marshalMetadata(entry.Metadata)
	if err != nil {
		return 0, fmt.Errorf("%w: marshalling metadata: %w", domain.ErrStorage, err)
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO entries (content_id, owner_id, is_public, content_type, title, content, metadata, vector, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_id) DO UPDATE SET
			owner_id = excluded.owner_id,
			is_public = excluded.is_public,
			content_type = excluded.content_type,
			title = excluded.title,
			content = excluded.content,
			metadata = excluded.metadata,
			vector = excluded.vector
	`, entry.ContentID, entry.OwnerID, boolToInt(entry.IsPublic), entry.ContentType,
		entry.Title, entry.Content, metadataJSON, encodeVector(entry.Vector), createdAt)
	if err != nil {
		return 0, fmt.Errorf("%w: saving entry: %w", domain.ErrStorage, err)
	}

	var id int64
	row := s.store.db.QueryRowContext(ctx, "SELECT id FROM entries WHERE content_id = ?", entry.ContentID)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("%w: reading entry id: %w", domain.ErrStorage, err)
	}
	return id, nil
}

// GetByContentID retrieves an entry by its caller-assigned key.
func (s *entryStore) GetByContentID(ctx context.Context, contentID string) (*domain.Entry, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, content_id, owner_id, is_public, content_type, title, content, metadata, vector, created_at
		FROM entries WHERE content_id = ?
	`, contentID)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning entry: %w", domain.ErrStorage, err)
	}
	return entry, nil
}

// DeleteByContentID removes an entry, reporting whether it existed.
func (s *entryStore) DeleteByContentID(ctx context.Context, contentID string) (bool, error) {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM entries WHERE content_id = ?", contentID)
	if err != nil {
		return false, fmt.Errorf("%w: deleting entry: %w", domain.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: reading rows affected: %w", domain.ErrStorage, err)
	}
	return n > 0, nil
}

// SetVisibility toggles the public flag, reporting whether the entry existed.
func (s *entryStore) SetVisibility(ctx context.Context, contentID string, isPublic bool) (bool, error) {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE entries SET is_public = ? WHERE content_id = ?",
		boolToInt(isPublic), contentID)
	if err != nil {
		return false, fmt.Errorf("%w: updating visibility: %w", domain.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: reading rows affected: %w", domain.ErrStorage, err)
	}
	return n > 0, nil
}

// ListCandidates returns all entries matching the scope.
func (s *entryStore) ListCandidates(ctx context.Context, scope domain.Scope) ([]domain.Entry, error) {
	query, args := scopeQuery(`
		SELECT id, content_id, owner_id, is_public, content_type, title, content, metadata, vector, created_at
		FROM entries WHERE `, scope)

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying entries: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	var entries []domain.Entry //nolint:prealloc // size unknown from query
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning entry: %w", domain.ErrStorage, err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating entries: %w", domain.ErrStorage, err)
	}
	return entries, nil
}

// Count returns the number of entries matching the scope.
func (s *entryStore) Count(ctx context.Context, scope domain.Scope) (int64, error) {
	query, args := scopeQuery("SELECT COUNT(*) FROM entries WHERE ", scope)
	var n int64
	if err := s.store.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting entries: %w", domain.ErrStorage, err)
	}
	return n, nil
}

// DeleteAll removes every entry matching the scope.
func (s *entryStore) DeleteAll(ctx context.Context, scope domain.Scope) (int64, error) {
	query, args := scopeQuery("DELETE FROM entries WHERE ", scope)
	res, err := s.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting entries: %w", domain.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: reading rows affected: %w", domain.ErrStorage, err)
	}
	return n, nil
}

// scopeQuery appends the scope's WHERE clause to a query prefix.
func scopeQuery(prefix string, scope domain.Scope) (string, []any) {
	switch {
	case scope.Kind == domain.ScopeAll:
		return prefix + "1 = 1", nil
	case scope.Kind == domain.ScopeOwnedOrPublic && scope.OwnerID != 0:
		return prefix + "(is_public = 1 OR owner_id = ?)", []any{scope.OwnerID}
	default:
		return prefix + "is_public = 1", nil
	}
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*domain.Entry, error) {
	var entry domain.Entry
	var isPublic int
	var metadataJSON string
	var vector []byte
	var createdAt sql.NullTime

	if err := row.Scan(&entry.ID, &entry.ContentID, &entry.OwnerID, &isPublic,
		&entry.ContentType, &entry.Title, &entry.Content, &metadataJSON, &vector, &createdAt); err != nil {
		return nil, err
	}

	entry.IsPublic = isPublic != 0
	if metadataJSON != "" && metadataJSON != jsonNull {
		if err := json.Unmarshal([]byte(metadataJSON), &entry.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}
	entry.Vector = decodeVector(vector)
	if createdAt.Valid {
		entry.CreatedAt = createdAt.Time
	}
	return &entry, nil
}

func marshalMetadata(m domain.EntryMetadata) (string, error) {
	if m.IsZero() {
		return jsonNull, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// encodeVector packs a float32 slice as little-endian bytes for BLOB storage.
func encodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector unpacks a BLOB written by encodeVector.
func decodeVector(buf []byte) []float32 {
	if len(buf) < 4 {
		return nil
	}
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}

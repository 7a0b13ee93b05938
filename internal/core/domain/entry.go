package domain

import (
	"fmt"
	"regexp"
	"time"
)

// MaxContentIDLength is the maximum length of a caller-assigned content ID.
const MaxContentIDLength = 255

// MaxContentTypeLength is the maximum length of a content type classifier.
const MaxContentTypeLength = 100

// contentIDPattern restricts content IDs to a safe addressing alphabet.
var contentIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Entry represents a unit of indexed knowledge.
// It is the canonical representation stored and ranked by the retrieval engine.
type Entry struct {
	// ID is the store-assigned identifier, immutable once set.
	ID int64

	// ContentID is the caller-assigned external key used for update and
	// delete addressing. Unique across the store.
	ContentID string

	// OwnerID ties the entry to one user. Zero means no owner.
	OwnerID int64

	// IsPublic marks the entry visible to the anonymous scope.
	// Independent of OwnerID: an owned entry can still be public.
	IsPublic bool

	// ContentType is a short classifier ("post", "pdf", "conversation", ...).
	ContentType string

	// Title is the human-readable display label.
	Title string

	// Content is the full text body, the retrieval and ranking target.
	Content string

	// Metadata carries presentation fields. Opaque to ranking.
	Metadata EntryMetadata

	// Vector is an optional precomputed embedding. Never consulted by the
	// lexical ranking path.
	Vector []float32

	// CreatedAt is set once on first insert.
	CreatedAt time.Time
}

// EntryMetadata is the typed form of the open key-value metadata the original
// callers attach to entries. Known fields get compile-time safety; anything
// else lands in Extra.
type EntryMetadata struct {
	// URL is the source location for crawled site content.
	URL string `json:"url,omitempty" toml:"url"`

	// PostID is the originating post for site content.
	PostID int64 `json:"post_id,omitempty" toml:"post_id"`

	// ProjectID groups project notes.
	ProjectID int64 `json:"project_id,omitempty" toml:"project_id"`

	// FilePath is the original path for uploaded or crawled files.
	FilePath string `json:"file_path,omitempty" toml:"file_path"`

	// FileType is the file extension tag for uploads.
	FileType string `json:"file_type,omitempty" toml:"file_type"`

	// MIMEType is the detected MIME type for uploads.
	MIMEType string `json:"mime_type,omitempty" toml:"mime_type"`

	// Extra holds fields the core does not interpret.
	Extra map[string]any `json:"extra,omitempty" toml:"extra"`
}

// IsZero reports whether no metadata field is set.
func (m EntryMetadata) IsZero() bool {
	return m.URL == "" && m.PostID == 0 && m.ProjectID == 0 &&
		m.FilePath == "" && m.FileType == "" && m.MIMEType == "" && len(m.Extra) == 0
}

// Validate checks the entry's addressable fields.
// Content emptiness is checked by the service layer, not here, so stores can
// hold placeholder entries for unsupported binary formats.
func (e *Entry) Validate() error {
	if err := ValidateContentID(e.ContentID); err != nil {
		return err
	}
	if len(e.ContentType) > MaxContentTypeLength {
		return fmt.Errorf("%w: content type exceeds %d characters", ErrInvalidInput, MaxContentTypeLength)
	}
	return nil
}

// ValidateContentID checks a caller-assigned content ID against the
// addressing pattern and length limit.
func ValidateContentID(contentID string) error {
	if contentID == "" {
		return fmt.Errorf("%w: content ID is empty", ErrInvalidInput)
	}
	if len(contentID) > MaxContentIDLength {
		return fmt.Errorf("%w: content ID exceeds %d characters", ErrInvalidInput, MaxContentIDLength)
	}
	if !contentIDPattern.MatchString(contentID) {
		return fmt.Errorf("%w: content ID contains characters outside [A-Za-z0-9_.-]", ErrInvalidInput)
	}
	return nil
}

// Visible reports whether the entry is visible under the given scope.
func (e *Entry) Visible(scope Scope) bool {
	if scope.Kind == ScopeAll {
		return true
	}
	if e.IsPublic {
		return true
	}
	return scope.Kind == ScopeOwnedOrPublic && e.OwnerID != 0 && e.OwnerID == scope.OwnerID
}

// ScopeKind selects a candidate visibility policy.
type ScopeKind int

const (
	// ScopePublic selects only entries marked public.
	ScopePublic ScopeKind = iota

	// ScopeOwnedOrPublic selects public entries plus entries owned by OwnerID.
	ScopeOwnedOrPublic

	// ScopeAll selects every entry regardless of visibility. Reserved for
	// elevated operations: sampling, export tooling, full reset.
	ScopeAll
)

// Scope is the visibility policy applied when selecting ranking candidates.
type Scope struct {
	Kind    ScopeKind
	OwnerID int64
}

// PublicScope returns the anonymous visibility scope.
func PublicScope() Scope {
	return Scope{Kind: ScopePublic}
}

// AllScope returns the unrestricted scope.
func AllScope() Scope {
	return Scope{Kind: ScopeAll}
}

// UserScope returns the visibility scope for an authenticated owner.
// OwnerID zero degrades to the public scope.
func UserScope(ownerID int64) Scope {
	if ownerID == 0 {
		return PublicScope()
	}
	return Scope{Kind: ScopeOwnedOrPublic, OwnerID: ownerID}
}

// String returns a log-friendly description of the scope.
func (s Scope) String() string {
	switch s.Kind {
	case ScopePublic:
		return "public"
	case ScopeOwnedOrPublic:
		return fmt.Sprintf("owner:%d", s.OwnerID)
	case ScopeAll:
		return "all"
	default:
		return "unknown"
	}
}

// RankedEntry pairs an entry with its relevance score.
type RankedEntry struct {
	Entry Entry

	// Score is normalized to [0,1].
	Score float64
}

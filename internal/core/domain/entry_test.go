package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateContentID(t *testing.T) {
	tests := []struct {
		name      string
		contentID string
		wantErr   bool
	}{
		{name: "simple", contentID: "doc-1", wantErr: false},
		{name: "file style", contentID: "project_file_42_1730000000", wantErr: false},
		{name: "dots and dashes", contentID: "post.42-rev.3", wantErr: false},
		{name: "empty", contentID: "", wantErr: true},
		{name: "spaces", contentID: "doc 1", wantErr: true},
		{name: "slash", contentID: "a/b", wantErr: true},
		{name: "unicode", contentID: "doc-£", wantErr: true},
		{name: "max length", contentID: strings.Repeat("a", 255), wantErr: false},
		{name: "too long", contentID: strings.Repeat("a", 256), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContentID(tt.contentID)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEntry_Validate_ContentTypeLength(t *testing.T) {
	e := &Entry{ContentID: "doc-1", ContentType: strings.Repeat("x", 101)}
	err := e.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)

	e.ContentType = strings.Repeat("x", 100)
	assert.NoError(t, e.Validate())
}

func TestEntry_Visible(t *testing.T) {
	public := &Entry{ContentID: "pub", OwnerID: 7, IsPublic: true}
	private := &Entry{ContentID: "priv", OwnerID: 7, IsPublic: false}
	unowned := &Entry{ContentID: "orphan", OwnerID: 0, IsPublic: false}

	// Public entries are visible everywhere, regardless of owner.
	assert.True(t, public.Visible(PublicScope()))
	assert.True(t, public.Visible(UserScope(3)))
	assert.True(t, public.Visible(UserScope(7)))

	// Private entries are visible only to their owner.
	assert.False(t, private.Visible(PublicScope()))
	assert.False(t, private.Visible(UserScope(3)))
	assert.True(t, private.Visible(UserScope(7)))

	// Private entries with no owner are visible to nobody.
	assert.False(t, unowned.Visible(PublicScope()))
	assert.False(t, unowned.Visible(UserScope(7)))
}

func TestUserScope_ZeroOwnerDegradesToPublic(t *testing.T) {
	scope := UserScope(0)
	assert.Equal(t, ScopePublic, scope.Kind)
}

func TestEntryMetadata_IsZero(t *testing.T) {
	assert.True(t, EntryMetadata{}.IsZero())
	assert.False(t, EntryMetadata{URL: "https://example.com"}.IsZero())
	assert.False(t, EntryMetadata{PostID: 42}.IsZero())
	assert.False(t, EntryMetadata{Extra: map[string]any{"k": "v"}}.IsZero())
}

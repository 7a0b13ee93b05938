package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiohm/assistant/internal/core/domain"
)

func TestKBAdd(t *testing.T) {
	kb, _, _, cleanup := setupTestServices()
	defer cleanup()
	kb.addedID = "kb-new"

	out, err := execute(t, "kb", "add", "--title", "Note", "--public", "some content")
	require.NoError(t, err)

	assert.Contains(t, out, "kb-new")
	assert.Equal(t, "some content", kb.lastAdd.Content)
	assert.Equal(t, "Note", kb.lastAdd.Title)
	assert.True(t, kb.lastAdd.IsPublic)

	// Package-level flag state persists across executions.
	_, err = execute(t, "kb", "add", "--title", "", "--public=false", "x")
	require.NoError(t, err)
}

func TestKBAddFromFile(t *testing.T) {
	kb, _, _, cleanup := setupTestServices()
	defer cleanup()
	kb.addedID = "kb-file"

	path := filepath.Join(t.TempDir(), "release_notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# Release Notes\n\nShipped **search**.\n"), 0o600))

	out, err := execute(t, "kb", "add", "--file", path)
	require.NoError(t, err)

	assert.Contains(t, out, "kb-file")
	assert.Equal(t, "Release Notes", kb.lastAdd.Title)
	assert.Contains(t, kb.lastAdd.Content, "Shipped search.")
	assert.NotContains(t, kb.lastAdd.Content, "**")
	assert.Equal(t, path, kb.lastAdd.Metadata.FilePath)
	assert.Equal(t, "md", kb.lastAdd.Metadata.FileType)

	t.Run("argument and file are exclusive", func(t *testing.T) {
		_, err := execute(t, "kb", "add", "--file", path, "inline text")
		assert.Error(t, err)
	})

	t.Run("no content source", func(t *testing.T) {
		_, err := execute(t, "kb", "add", "--file", "")
		assert.Error(t, err)
	})

	_, err = execute(t, "kb", "add", "--file", "", "x")
	require.NoError(t, err)
}

func TestKBList(t *testing.T) {
	kb, _, _, cleanup := setupTestServices()
	defer cleanup()

	t.Run("empty", func(t *testing.T) {
		out, err := execute(t, "kb", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "No entries.")
	})

	t.Run("entries with visibility markers", func(t *testing.T) {
		kb.entries = []domain.Entry{
			{ContentID: "kb-1", ContentType: "note", Title: "First", IsPublic: true},
			{ContentID: "kb-2", ContentType: "post", Content: "body text only"},
		}

		out, err := execute(t, "kb", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "kb-1")
		assert.Contains(t, out, "public")
		assert.Contains(t, out, "private")
		assert.Contains(t, out, "body text only")
		assert.Contains(t, out, "2 entries")
	})

	t.Run("all flag widens scope", func(t *testing.T) {
		_, err := execute(t, "kb", "list", "--all")
		require.NoError(t, err)
		assert.Equal(t, domain.AllScope(), kb.lastScope)

		_, err = execute(t, "kb", "list", "--all=false")
		require.NoError(t, err)
		assert.Equal(t, domain.PublicScope(), kb.lastScope)
	})
}

func TestKBDelete(t *testing.T) {
	kb, _, _, cleanup := setupTestServices()
	defer cleanup()

	t.Run("single", func(t *testing.T) {
		out, err := execute(t, "kb", "delete", "kb-1")
		require.NoError(t, err)
		assert.Contains(t, out, "Deleted kb-1")
		assert.Equal(t, []string{"kb-1"}, kb.deletedIDs)
	})

	t.Run("bulk", func(t *testing.T) {
		kb.deletedIDs = nil
		out, err := execute(t, "kb", "delete", "kb-1", "kb-2")
		require.NoError(t, err)
		assert.Contains(t, out, "Deleted 2 entries")
		assert.Len(t, kb.deletedIDs, 2)
	})
}

func TestKBShareUnshare(t *testing.T) {
	kb, _, _, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "kb", "share", "kb-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Shared kb-1")
	assert.True(t, kb.sharedState)

	out, err = execute(t, "kb", "unshare", "kb-1", "kb-2")
	require.NoError(t, err)
	assert.Contains(t, out, "Unshared 2 entries")
	assert.False(t, kb.sharedState)
}

func TestKBExportImport(t *testing.T) {
	kb, _, _, cleanup := setupTestServices()
	defer cleanup()

	t.Run("export to stdout", func(t *testing.T) {
		out, err := execute(t, "kb", "export")
		require.NoError(t, err)
		assert.Contains(t, out, "[]")
	})

	t.Run("export to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "kb.json")
		out, err := execute(t, "kb", "export", path)
		require.NoError(t, err)
		assert.Contains(t, out, "Exported to")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data))
	})

	t.Run("import", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "kb.json")
		require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o600))

		kb.count = 3
		out, err := execute(t, "kb", "import", path)
		require.NoError(t, err)
		assert.Contains(t, out, "Imported 3 entries")
	})

	t.Run("import missing file", func(t *testing.T) {
		_, err := execute(t, "kb", "import", filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})
}

func TestKBRandom(t *testing.T) {
	kb, _, _, cleanup := setupTestServices()
	defer cleanup()

	t.Run("empty store", func(t *testing.T) {
		out, err := execute(t, "kb", "random")
		require.NoError(t, err)
		assert.Contains(t, out, "empty")
	})

	t.Run("entry", func(t *testing.T) {
		kb.entries = []domain.Entry{{ContentID: "kb-1", Title: "Pick", Content: "the body", ContentType: "note"}}
		out, err := execute(t, "kb", "random")
		require.NoError(t, err)
		assert.Contains(t, out, "Pick")
		assert.Contains(t, out, "the body")
	})
}

func TestKBReset(t *testing.T) {
	kb, _, _, cleanup := setupTestServices()
	defer cleanup()

	t.Run("refuses without confirmation", func(t *testing.T) {
		_, err := execute(t, "kb", "reset")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--yes")
	})

	t.Run("removes with confirmation", func(t *testing.T) {
		kb.removed = 5
		out, err := execute(t, "kb", "reset", "--yes")
		require.NoError(t, err)
		assert.Contains(t, out, "Removed 5 entries")
		assert.Equal(t, domain.AllScope(), kb.lastScope)
	})
}

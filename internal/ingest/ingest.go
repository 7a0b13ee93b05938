// Package ingest turns local files into knowledge base entry content.
// Markdown and HTML are reduced to plain text so ranking sees words, not
// markup; everything else is taken verbatim when it looks like text.
package ingest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aiohm/assistant/internal/core/domain"
)

// Document is the extracted form of one file.
type Document struct {
	// Title comes from the file's own structure when present, the
	// filename otherwise.
	Title string

	// Content is the plain text body.
	Content string

	// FileType is the lowercase extension without the dot.
	FileType string

	// MIMEType is the detected MIME type.
	MIMEType string
}

// Extract converts file data into a Document based on the path's extension.
func Extract(path string, data []byte) (*Document, error) {
	if bytes.ContainsRune(data, 0) {
		return nil, fmt.Errorf("%w: %s looks like a binary file", domain.ErrInvalidInput, filepath.Base(path))
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	text := string(data)

	switch ext {
	case "md", "markdown":
		return &Document{
			Title:    markdownTitle(text, path),
			Content:  stripMarkdown(text),
			FileType: ext,
			MIMEType: "text/markdown",
		}, nil
	case "html", "htm":
		return &Document{
			Title:    htmlTitle(text, path),
			Content:  stripHTML(text),
			FileType: ext,
			MIMEType: "text/html",
		}, nil
	default:
		content := strings.TrimSpace(text)
		return &Document{
			Title:    titleFromFilename(path),
			Content:  content,
			FileType: ext,
			MIMEType: "text/plain",
		}, nil
	}
}

// titleFromFilename derives a display title from the file name.
func titleFromFilename(path string) string {
	name := filepath.Base(path)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}

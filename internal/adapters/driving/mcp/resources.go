package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/aiohm/assistant/internal/core/domain"
)

// uriScheme is the custom URI scheme for knowledge base resources.
const uriScheme = "aiohm://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing public entries.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "entries",
		Name:        "entries",
		Description: "List of public knowledge base entries",
		MIMEType:    "application/json",
	}, s.handleEntriesResource)

	// Template for entry content.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "entries/{contentId}",
		Name:        "entry-content",
		Description: "Content of a specific knowledge base entry",
		MIMEType:    "text/plain",
	}, s.handleEntryContentResource)
}

// handleEntriesResource returns the public entry listing.
func (s *Server) handleEntriesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	entries, err := s.ports.Knowledge.ListEntries(ctx, domain.PublicScope())
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	type entryInfo struct {
		ContentID   string `json:"content_id"`
		Title       string `json:"title,omitempty"`
		ContentType string `json:"content_type"`
		URL         string `json:"url,omitempty"`
	}

	infos := make([]entryInfo, len(entries))
	for i := range entries {
		infos[i] = entryInfo{
			ContentID:   entries[i].ContentID,
			Title:       entries[i].Title,
			ContentType: entries[i].ContentType,
			URL:         entries[i].Metadata.URL,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling entries: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleEntryContentResource returns one entry's text body.
func (s *Server) handleEntryContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	contentID := strings.TrimPrefix(req.Params.URI, uriScheme+"entries/")
	if contentID == "" || strings.Contains(contentID, "/") {
		return nil, fmt.Errorf("invalid entry URI %q", req.Params.URI)
	}

	entries, err := s.ports.Knowledge.ListEntries(ctx, domain.AllScope())
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	for i := range entries {
		if entries[i].ContentID != contentID {
			continue
		}
		text := entries[i].Content
		if entries[i].Title != "" {
			text = entries[i].Title + "\n\n" + text
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "text/plain",
				Text:     text,
			}},
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, contentID)
}

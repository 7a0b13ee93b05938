package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driving"
	"github.com/aiohm/assistant/internal/core/services"
)

const askSystemPrompt = `You are a knowledgeable assistant. Answer using the
numbered context entries below when they are relevant; say so when they are
not. Be concise.`

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query  string `json:"query" jsonschema:"the search query to find knowledge base entries"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
	UserID int64  `json:"user_id,omitempty" jsonschema:"include this user's private entries in addition to public ones"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ContentID   string  `json:"content_id"`
	Title       string  `json:"title,omitempty"`
	ContentType string  `json:"content_type"`
	Score       float64 `json:"score"`
	Content     string  `json:"content"`
	URL         string  `json:"url,omitempty"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the knowledge base"`
	Model    string `json:"model,omitempty" jsonschema:"model name; selects the provider by prefix convention"`
	UserID   int64  `json:"user_id,omitempty" jsonschema:"include this user's private entries as context"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string `json:"answer"`
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	Tokens   int64  `json:"tokens"`
}

// AddEntryInput is the input schema for the add_entry tool.
type AddEntryInput struct {
	Content     string `json:"content" jsonschema:"the text body to store"`
	Title       string `json:"title,omitempty" jsonschema:"display title"`
	ContentType string `json:"content_type,omitempty" jsonschema:"short classifier such as note or post (default note)"`
	Public      bool   `json:"public,omitempty" jsonschema:"make the entry publicly visible"`
	UserID      int64  `json:"user_id,omitempty" jsonschema:"owner ID for the entry"`
}

// AddEntryOutput is the output schema for the add_entry tool.
type AddEntryOutput struct {
	ContentID string `json:"content_id"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the knowledge base",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_entry",
		Description: "Add an entry to the knowledge base",
	}, s.handleAddEntry)

	if s.ports.Assistant != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Ask a question answered with knowledge base entries as context",
		}, s.handleAsk)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 5
	}

	ranked, err := s.findContext(ctx, input.Query, input.UserID, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(ranked)),
		Count:   len(ranked),
	}
	for i := range ranked {
		e := &ranked[i].Entry
		output.Results[i] = SearchResultOutput{
			ContentID:   e.ContentID,
			Title:       e.Title,
			ContentType: e.ContentType,
			Score:       ranked[i].Score,
			Content:     e.Content,
			URL:         e.Metadata.URL,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	ranked, err := s.findContext(ctx, input.Question, input.UserID, 5)
	if err != nil {
		return nil, AskOutput{}, err
	}

	system := askSystemPrompt
	if block := services.BuildContextBlock(ranked); block != "" {
		system = system + "\n\nContext:\n\n" + block
	}

	result, err := s.ports.Assistant.GetChatCompletion(ctx, driving.CompletionRequest{
		SystemMessage: system,
		UserMessage:   input.Question,
		Temperature:   0.7,
		Model:         input.Model,
		Endpoint:      "api",
		UserID:        input.UserID,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:   result.Text,
		Provider: result.Provider.String(),
		Model:    result.Model,
		Tokens:   result.Tokens,
	}, nil
}

// handleAddEntry handles the add_entry tool invocation.
func (s *Server) handleAddEntry(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddEntryInput,
) (*mcp.CallToolResult, AddEntryOutput, error) {
	contentID, err := s.ports.Knowledge.AddEntry(ctx, driving.AddEntryInput{
		Content:     input.Content,
		ContentType: input.ContentType,
		Title:       input.Title,
		OwnerID:     input.UserID,
		IsPublic:    input.Public,
	})
	if err != nil {
		return nil, AddEntryOutput{}, err
	}
	return nil, AddEntryOutput{ContentID: contentID}, nil
}

func (s *Server) findContext(ctx context.Context, query string, userID int64, limit int) ([]domain.RankedEntry, error) {
	if userID != 0 {
		return s.ports.Knowledge.FindContextForUser(ctx, query, userID, limit)
	}
	return s.ports.Knowledge.FindPublicContext(ctx, query, limit)
}

// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets MCP-compatible AI assistants search the knowledge base and ask
// knowledge-grounded questions.
package mcp

import "errors"

// ErrMissingKnowledgeService is returned when the knowledge service is not provided.
var ErrMissingKnowledgeService = errors.New("mcp: knowledge service is required")

package mcp

import (
	"github.com/aiohm/assistant/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Knowledge provides retrieval and ingestion.
	Knowledge driving.KnowledgeService

	// Assistant provides chat completions. Optional; without it only
	// search and entry resources are exposed.
	Assistant driving.AssistantService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Knowledge == nil {
		return ErrMissingKnowledgeService
	}
	return nil
}

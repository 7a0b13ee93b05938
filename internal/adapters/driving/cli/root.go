// Package cli wires the cobra command tree. Commands talk to the core
// through the driving ports; wiring happens in cmd/aiohm.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/aiohm/assistant/internal/core/ports/driven"
	"github.com/aiohm/assistant/internal/core/ports/driving"
)

// version is set at build time via -ldflags.
var version = "dev"

// Package-level services, injected by Setup before Execute runs.
var (
	knowledgeService driving.KnowledgeService
	assistantService driving.AssistantService
	settingsStore    driven.SettingsStore
)

// Config carries the services the command tree depends on.
type Config struct {
	Knowledge driving.KnowledgeService
	Assistant driving.AssistantService
	Settings  driven.SettingsStore

	// Validate pings a provider with its configured credentials.
	Validate ValidateFunc

	Version string
}

var rootCmd = &cobra.Command{
	Use:   "aiohm",
	Short: "Knowledge-grounded AI assistant",
	Long: `AIOHM is a personal knowledge base with an AI assistant on top.

Add notes, documents, and conversations to the knowledge base, then ask
questions answered with your own content as context. Works with OpenAI,
Gemini, Claude, a self-hosted Ollama server, or a fully offline demo mode.`,
	SilenceUsage: true,
}

// Setup injects services into the command tree.
func Setup(cfg Config) {
	knowledgeService = cfg.Knowledge
	assistantService = cfg.Assistant
	settingsStore = cfg.Settings
	validateProvider = cfg.Validate
	if cfg.Version != "" {
		version = cfg.Version
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Command aiohm is the knowledge-grounded AI assistant CLI.
package main

import (
	"fmt"
	"os"

	"github.com/aiohm/assistant/internal/adapters/driven/ai"
	"github.com/aiohm/assistant/internal/adapters/driven/config/file"
	"github.com/aiohm/assistant/internal/adapters/driven/storage/sqlite"
	"github.com/aiohm/assistant/internal/adapters/driving/cli"
	"github.com/aiohm/assistant/internal/core/services"
	"github.com/aiohm/assistant/internal/logger"
	"github.com/aiohm/assistant/internal/ranking"
	"github.com/aiohm/assistant/internal/ratelimit"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log, err := logger.New(os.Getenv("AIOHM_DEBUG") != "")
	if err != nil {
		return fmt.Errorf("initialising logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	settingsStore, err := file.NewSettingsStore(os.Getenv("AIOHM_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("opening settings store: %w", err)
	}
	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	store, err := sqlite.NewStore(os.Getenv("AIOHM_DATA_DIR"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	knowledge := services.NewKnowledgeService(store.EntryStore(), ranking.New(ranking.DefaultConfig()), log)

	assistant := services.NewAssistantService(services.AssistantConfig{
		Settings:     settings,
		Usage:        store.UsageStore(),
		Limiter:      ratelimit.New(),
		Logger:       log,
		NewChat:      ai.NewChatService,
		NewEmbedding: ai.NewEmbeddingService,
		Resolve:      ai.ResolveProvider,
	})

	// Credential edits apply to long-running sessions without a restart.
	stopWatch, err := settingsStore.Watch(assistant.UpdateSettings)
	if err != nil {
		log.Warn("settings watch unavailable", logger.Detail("error", err.Error()))
	} else {
		defer stopWatch()
	}

	cli.Setup(cli.Config{
		Knowledge: knowledge,
		Assistant: assistant,
		Settings:  settingsStore,
		Validate:  ai.ValidateProvider,
		Version:   version,
	})

	return cli.Execute()
}

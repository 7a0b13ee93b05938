package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aiohm/assistant/internal/adapters/driving/tui"
)

var chatOwner int64

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Launch an interactive chat grounded in the knowledge base.

Each question retrieves relevant entries and sends them to the configured
AI provider as context. Save the conversation back into the knowledge
base with ctrl+s.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().Int64VarP(&chatOwner, "user", "u", 0, "owner ID; includes that user's private entries")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil || assistantService == nil {
		return errors.New("services not configured")
	}

	// Panic recovery keeps the terminal usable and prints the trace.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	model, err := tui.NewModel(&tui.Ports{
		Knowledge: knowledgeService,
		Assistant: assistantService,
	}, chatOwner)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	model.WithContext(cmd.Context())

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}

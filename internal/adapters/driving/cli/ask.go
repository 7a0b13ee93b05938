package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driving"
	"github.com/aiohm/assistant/internal/core/services"
)

var (
	askModel       string
	askProvider    string
	askTemperature float64
	askOwner       int64
	askLimit       int
	askShowSources bool
)

const askSystemPrompt = `You are a knowledgeable assistant. Answer using the
numbered context entries below when they are relevant; say so when they are
not. Be concise.`

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question answered from the knowledge base",
	Long: `Retrieves the most relevant knowledge base entries for the question,
then asks the configured AI provider with those entries as context.

Examples:
  aiohm ask "what is our refund policy?"
  aiohm ask --model gpt-4o "summarize my notes on pricing"
  aiohm ask --provider ollama "what did I write about onboarding?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askModel, "model", "m", "", "model name (selects provider by prefix)")
	askCmd.Flags().StringVar(&askProvider, "provider", "", "force a provider (openai, gemini, claude, ollama, demo)")
	askCmd.Flags().Float64VarP(&askTemperature, "temperature", "t", 0.7, "sampling temperature")
	askCmd.Flags().Int64VarP(&askOwner, "user", "u", 0, "owner ID; includes that user's private entries")
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", 5, "maximum context entries")
	askCmd.Flags().BoolVar(&askShowSources, "sources", false, "print the context entries used")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil || assistantService == nil {
		return errors.New("services not configured")
	}

	question := args[0]
	ctx := cmd.Context()

	var (
		ranked []domain.RankedEntry
		err    error
	)
	if askOwner != 0 {
		ranked, err = knowledgeService.FindContextForUser(ctx, question, askOwner, askLimit)
	} else {
		ranked, err = knowledgeService.FindPublicContext(ctx, question, askLimit)
	}
	if err != nil {
		return fmt.Errorf("context lookup failed: %w", err)
	}

	system := askSystemPrompt
	if block := services.BuildContextBlock(ranked); block != "" {
		system = system + "\n\nContext:\n\n" + block
	}

	result, err := assistantService.GetChatCompletion(ctx, driving.CompletionRequest{
		SystemMessage: system,
		UserMessage:   question,
		Temperature:   askTemperature,
		Model:         askModel,
		Provider:      domain.AIProvider(askProvider),
	})
	if err != nil {
		return completionError(err)
	}

	cmd.Println(result.Text)
	cmd.Println()
	cmd.Printf("(%s", result.Provider)
	if result.Model != "" {
		cmd.Printf(" / %s", result.Model)
	}
	cmd.Printf(", ~%d tokens)\n", result.Tokens)

	if askShowSources && len(ranked) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i := range ranked {
			title := ranked[i].Entry.Title
			if title == "" {
				title = ranked[i].Entry.ContentID
			}
			cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, ranked[i].Score)
		}
	}

	return nil
}

// completionError rewrites facade errors into actionable CLI messages.
func completionError(err error) error {
	switch {
	case errors.Is(err, domain.ErrConsentRequired):
		return errors.New("external AI calls need consent; run: aiohm settings consent on")
	case errors.Is(err, domain.ErrNotConfigured):
		return errors.New("no AI provider configured; run: aiohm settings provider <name>")
	case errors.Is(err, domain.ErrRateLimited):
		return errors.New("rate limit reached; try again later")
	}

	var provErr *domain.ProviderError
	if errors.As(err, &provErr) {
		return errors.New(provErr.UserMessage())
	}
	return err
}

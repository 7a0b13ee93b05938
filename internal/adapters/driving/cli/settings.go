package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aiohm/assistant/internal/core/domain"
)

// ValidateFunc checks that a provider is reachable with its credentials.
type ValidateFunc func(settings domain.AppSettings, provider domain.AIProvider) error

// validateProvider is injected by Setup; nil disables the validate command.
var validateProvider ValidateFunc

var (
	providerKey     string
	providerModel   string
	providerBaseURL string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage assistant settings",
	Long: `View and configure AI providers, consent, and demo mode.

Settings persist to a TOML file in the config directory and reload
automatically in long-running sessions.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsProviderCmd = &cobra.Command{
	Use:   "provider [name]",
	Short: "Configure an AI provider",
	Long: `Configures credentials for a provider (openai, gemini, claude, ollama).

The API key is prompted without echo when --key is not given. Ollama
takes --base-url instead of a key.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsProvider,
}

var settingsDefaultCmd = &cobra.Command{
	Use:   "default [provider]",
	Short: "Set the default provider",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsDefault,
}

var settingsConsentCmd = &cobra.Command{
	Use:   "consent [on|off]",
	Short: "Grant or revoke consent for external AI calls",
	Long: `External providers (OpenAI, Gemini, Claude) receive your questions and
knowledge base context. Calls to them are blocked until consent is on.
Local providers (Ollama, demo) never need consent.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsConsent,
}

var settingsDemoCmd = &cobra.Command{
	Use:   "demo [on|off]",
	Short: "Toggle offline demo mode",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsDemo,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate [provider]",
	Short: "Check a provider's credentials with a live request",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSettingsValidate,
}

func init() {
	settingsProviderCmd.Flags().StringVarP(&providerKey, "key", "k", "", "API key (prompted when omitted)")
	settingsProviderCmd.Flags().StringVarP(&providerModel, "model", "m", "", "default model for this provider")
	settingsProviderCmd.Flags().StringVar(&providerBaseURL, "base-url", "", "API endpoint (required for ollama)")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsProviderCmd)
	settingsCmd.AddCommand(settingsDefaultCmd)
	settingsCmd.AddCommand(settingsConsentCmd)
	settingsCmd.AddCommand(settingsDemoCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	cmd.Println("Settings")
	cmd.Println("========")
	cmd.Println()
	cmd.Printf("Default provider: %s\n", settings.DefaultProvider)
	cmd.Printf("External AI consent: %s\n", onOff(settings.Consent))
	cmd.Printf("Demo mode: %s\n", onOff(settings.DemoMode))
	cmd.Println()

	for _, p := range domain.FallbackOrder() {
		block := settings.Provider(p)
		cmd.Printf("[%s] %s\n", p, p.Description())
		if p.RequiresAPIKey() {
			if block.APIKey != "" {
				cmd.Printf("  API key: %s\n", maskAPIKey(block.APIKey))
			} else {
				cmd.Println("  API key: (not set)")
			}
		}
		if block.BaseURL != "" {
			cmd.Printf("  Base URL: %s\n", block.BaseURL)
		}
		if block.Model != "" {
			cmd.Printf("  Model: %s\n", block.Model)
		}
		status := "not configured"
		if settings.IsConfigured(p) {
			status = "configured"
		}
		cmd.Printf("  Status: %s\n", status)
		cmd.Println()
	}
	return nil
}

func runSettingsProvider(cmd *cobra.Command, args []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	provider := domain.AIProvider(args[0])
	if !provider.IsValid() || provider == domain.AIProviderDemo {
		return fmt.Errorf("unknown provider %q (openai, gemini, claude, ollama)", args[0])
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	block := settings.Provider(provider)

	if provider.RequiresAPIKey() {
		key := providerKey
		if key == "" {
			cmd.Printf("API key for %s: ", provider)
			key = readPassword()
			cmd.Println()
		}
		if key == "" {
			return errors.New("no API key given")
		}
		block.APIKey = key
	}
	if providerBaseURL != "" {
		block.BaseURL = providerBaseURL
	}
	if provider == domain.AIProviderOllama && block.BaseURL == "" {
		block.BaseURL = "http://localhost:11434"
	}
	if providerModel != "" {
		block.Model = providerModel
	}

	if settings.Providers == nil {
		settings.Providers = make(map[domain.AIProvider]domain.ProviderSettings)
	}
	settings.Providers[provider] = block
	if settings.DefaultProvider == "" || !settings.IsConfigured(settings.DefaultProvider) {
		settings.DefaultProvider = provider
	}

	if err := settingsStore.Save(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	cmd.Printf("Configured %s\n", provider)
	if !provider.IsLocal() && !settings.Consent {
		cmd.Println("Note: external AI calls stay blocked until you run: aiohm settings consent on")
	}
	return nil
}

func runSettingsDefault(cmd *cobra.Command, args []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	provider := domain.AIProvider(args[0])
	if !provider.IsValid() {
		return fmt.Errorf("unknown provider %q", args[0])
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if !settings.IsConfigured(provider) {
		return fmt.Errorf("%s is not configured; run: aiohm settings provider %s", provider, provider)
	}

	settings.DefaultProvider = provider
	if err := settingsStore.Save(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	cmd.Printf("Default provider is now %s\n", provider)
	return nil
}

func runSettingsConsent(cmd *cobra.Command, args []string) error {
	return toggleSetting(cmd, args[0], "External AI consent", func(s *domain.AppSettings, on bool) {
		s.Consent = on
	})
}

func runSettingsDemo(cmd *cobra.Command, args []string) error {
	return toggleSetting(cmd, args[0], "Demo mode", func(s *domain.AppSettings, on bool) {
		s.DemoMode = on
	})
}

func toggleSetting(cmd *cobra.Command, arg, label string, apply func(*domain.AppSettings, bool)) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	var on bool
	switch strings.ToLower(arg) {
	case "on", "true", "yes":
		on = true
	case "off", "false", "no":
		on = false
	default:
		return fmt.Errorf("expected on or off, got %q", arg)
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	apply(&settings, on)
	if err := settingsStore.Save(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	cmd.Printf("%s: %s\n", label, onOff(on))
	return nil
}

func runSettingsValidate(cmd *cobra.Command, args []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}
	if validateProvider == nil {
		return errors.New("validation not available")
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	provider := settings.DefaultProvider
	if len(args) == 1 {
		provider = domain.AIProvider(args[0])
		if !provider.IsValid() {
			return fmt.Errorf("unknown provider %q", args[0])
		}
	}

	cmd.Printf("Checking %s... ", provider)
	if err := validateProvider(settings, provider); err != nil {
		cmd.Println("failed")
		var provErr *domain.ProviderError
		if errors.As(err, &provErr) {
			return errors.New(provErr.UserMessage())
		}
		return err
	}
	cmd.Println("ok")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	var input string
	fmt.Fscanln(os.Stdin, &input)
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aiohm/assistant/internal/core/domain"
)

var usageDays int

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show AI usage and estimated cost",
	RunE:  runUsage,
}

func init() {
	usageCmd.Flags().IntVarP(&usageDays, "days", "d", 30, "how many days back to aggregate")
	rootCmd.AddCommand(usageCmd)
}

func runUsage(cmd *cobra.Command, _ []string) error {
	if assistantService == nil {
		return errors.New("assistant service not configured")
	}

	since := time.Now().UTC().AddDate(0, 0, -usageDays).Format(domain.UsageDayFormat)
	summary, err := assistantService.Usage(cmd.Context(), since)
	if err != nil {
		return fmt.Errorf("aggregating usage: %w", err)
	}

	cmd.Printf("Usage since %s\n\n", since)
	cmd.Printf("  Requests: %d\n", summary.TotalRequests)
	cmd.Printf("  Tokens:   %d\n", summary.TotalTokens)
	cmd.Printf("  Cost:     $%.4f\n", summary.TotalCost)

	if len(summary.ByProvider) > 0 {
		cmd.Println()
		for provider, p := range summary.ByProvider {
			cmd.Printf("  %-8s %8d tokens  $%.4f\n", provider, p.TokensUsed, p.CostEstimate)
		}
	}
	return nil
}

package domain

import "time"

// UsageDayFormat is the calendar-day key format for usage rows.
const UsageDayFormat = "2006-01-02"

// UsageRecord holds the accumulated counters for one provider on one
// calendar day.
type UsageRecord struct {
	Provider AIProvider

	// Day is the calendar day in UsageDayFormat, UTC.
	Day string

	// TokensUsed is the total token count across all requests that day.
	TokensUsed int64

	// RequestsCount is the number of recorded requests.
	RequestsCount int64

	// CostEstimate is the accumulated estimated USD cost.
	CostEstimate float64
}

// UsageSummary aggregates usage across providers for reporting.
type UsageSummary struct {
	TotalTokens   int64
	TotalRequests int64
	TotalCost     float64

	// ByProvider breaks the totals down per provider.
	ByProvider map[AIProvider]UsageRecord
}

// UsageDay returns the usage row key for the given instant, UTC.
func UsageDay(t time.Time) string {
	return t.UTC().Format(UsageDayFormat)
}

package logger

import "regexp"

const redacted = "[redacted]"

type sanitizeRule struct {
	re   *regexp.Regexp
	repl string
}

// Secret-bearing patterns, in replacement order. The Bearer rule runs
// before the keyed-field rule so header tokens are caught whole.
var sanitizeRules = []sanitizeRule{
	// Authorization headers.
	{regexp.MustCompile(`(?i)(Bearer\s+)[A-Za-z0-9._~+/=-]+`), "${1}" + redacted},

	// JSON or query-style credential fields: api_key=..., "token": "..."
	{regexp.MustCompile(`(?i)("?(?:api[_-]?key|apikey|token|secret|password|authorization)"?\s*[:=]\s*)("[^"]*"|[^\s&,}"]+)`), "${1}" + redacted},

	// Provider key formats: OpenAI/Anthropic sk- keys, Google AIza keys.
	{regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{8,}\b`), redacted},
	{regexp.MustCompile(`\bAIza[A-Za-z0-9_-]{8,}\b`), redacted},

	// Long base64 runs, e.g. inlined payloads or tokens.
	{regexp.MustCompile(`\b[A-Za-z0-9+/]{64,}={0,2}\b`), redacted},
}

// Sanitize scrubs credentials and secret-looking tokens from s. Raw
// provider error payloads must pass through here before being logged.
func Sanitize(s string) string {
	for _, rule := range sanitizeRules {
		s = rule.re.ReplaceAllString(s, rule.repl)
	}
	return s
}

// Package domain defines the core business entities for the assistant.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Entry: A unit of indexed knowledge
//   - Scope: A candidate visibility policy (public vs owned-or-public)
//   - AppSettings: Resolved provider configuration and policy flags
//   - UsageRecord: Daily token and cost counters per provider
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): storage engines, AI provider clients,
// and the settings store. Implementations live under
// internal/adapters/driven.
package driven

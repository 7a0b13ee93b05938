// Package logger builds the application logger and scrubs secrets from
// anything that gets logged.
package logger

import "go.uber.org/zap"

// New returns a zap logger. When debug is true, uses development config
// (human-readable, debug level); otherwise production config (JSON,
// info level).
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Detail is a convenience field for raw provider error payloads: the
// value passes through Sanitize before it is attached.
func Detail(key, value string) zap.Field {
	return zap.String(key, Sanitize(value))
}

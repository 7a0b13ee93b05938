// Package sqlite provides the persistent entry store and usage ledger
// backed by SQLite (modernc.org/sqlite, no cgo). The database opens in WAL
// mode so concurrent readers never block writers; upserts and per-day usage
// increments run as single atomic statements.
package sqlite

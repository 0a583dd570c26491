// Package postgres provides PostgreSQL implementations of the store
// interfaces. Every store accepts a store.DBTX, so the same code runs
// against a *sql.DB or inside a *sql.Tx handed down by a service.
//
// Database errors are translated to the store package's error taxonomy at
// this boundary via MapError, so callers never see driver-specific errors.
package postgres

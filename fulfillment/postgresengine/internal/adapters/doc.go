// Package adapters provides database abstraction implementations for the
// PostgreSQL fulfillment engine.
//
// It wraps pgxpool.Pool, sql.DB, and sqlx.DB behind common interfaces so
// the engine can run transactional fulfillment operations against any of
// the three connection types without knowing which one is in use.
package adapters

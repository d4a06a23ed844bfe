// Package postgresengine provides the PostgreSQL implementation of the
// bookstore's order fulfillment transaction and catalog storage.
//
// The engine supports multiple database adapters (pgx, sql.DB, sqlx) behind
// one Store type. Fulfill runs customer resolution, book validation and
// pricing, order creation, and purchased-flag flipping inside a single
// database transaction, using SELECT ... FOR UPDATE row locks so that two
// concurrent requests for the same book can never both commit a sale.
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Atomic fulfillment with row-lock based double-sale prevention
//   - Driver errors classified into the fulfillment error taxonomy
//     (transaction conflicts retryable, storage outages fatal)
//   - Configurable table names and dependency-free observability hooks
//
// Usage example:
//
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewStoreFromPGXPool(
//		db,
//		postgresengine.WithLogger(slog.Default()),
//	)
//
//	order, err := store.Fulfill(ctx, profile, items)
package postgresengine

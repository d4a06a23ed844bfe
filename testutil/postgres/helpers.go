package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"

	"github.com/pagehaven/bookstore-fulfillment-go/fulfillment"
	"github.com/pagehaven/bookstore-fulfillment-go/fulfillment/postgresengine"
)

// NewAssertionPool creates a pgx pool used by tests to inspect and clean
// store tables directly, independent of the adapter under test.
func NewAssertionPool(t testing.TB) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.NewWithConfig(context.Background(), PGXPoolTestConfig())
	assert.NoError(t, err, "error connecting assertion pool in test setup")

	return pool
}

// CleanUpStoreTables truncates all four store tables.
func CleanUpStoreTables(t testing.TB, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), "TRUNCATE TABLE order_lines, orders, customers, books")
	assert.NoError(t, err, "error cleaning up store tables")
}

// GivenBookInCatalog adds one unpurchased book with the given price and
// returns it.
func GivenBookInCatalog(t testing.TB, ctx context.Context, store postgresengine.Store, title string, price fulfillment.Money) fulfillment.Book {
	t.Helper()

	book := fulfillment.BuildBook(
		title,
		"Test Author",
		"A test book.",
		price,
		time.Unix(0, 0).UTC(),
	)

	err := store.AddBooks(ctx, book)
	assert.NoError(t, err, "error adding book to catalog in test arrange")

	return book
}

// GivenUniqueEmail returns an email address that no other test run has used.
func GivenUniqueEmail(t testing.TB) string {
	t.Helper()

	return fmt.Sprintf("buyer-%s@example.com", uuid.New().String())
}

// GivenCustomerProfile returns a valid profile with a unique email.
func GivenCustomerProfile(t testing.TB) fulfillment.CustomerProfile {
	t.Helper()

	return fulfillment.CustomerProfile{
		Name:    "Test Buyer",
		Email:   GivenUniqueEmail(t),
		Phone:   "555-0100",
		Address: "1 Test Street",
	}
}

// CountCustomersWithEmail returns how many customer rows exist for an email.
func CountCustomersWithEmail(t testing.TB, pool *pgxpool.Pool, email string) int {
	t.Helper()

	var count int
	err := pool.QueryRow(context.Background(), "SELECT count(*) FROM customers WHERE email = $1", email).Scan(&count)
	assert.NoError(t, err, "error counting customers")

	return count
}

// CountOrderLinesForBook returns how many order lines reference a book
// across the whole ledger.
func CountOrderLinesForBook(t testing.TB, pool *pgxpool.Pool, bookID uuid.UUID) int {
	t.Helper()

	var count int
	err := pool.QueryRow(context.Background(), "SELECT count(*) FROM order_lines WHERE book_id = $1", bookID.String()).Scan(&count)
	assert.NoError(t, err, "error counting order lines")

	return count
}

// CountOrders returns how many order rows exist.
func CountOrders(t testing.TB, pool *pgxpool.Pool) int {
	t.Helper()

	var count int
	err := pool.QueryRow(context.Background(), "SELECT count(*) FROM orders").Scan(&count)
	assert.NoError(t, err, "error counting orders")

	return count
}

// BookIsPurchased reads a book's purchased flag directly.
func BookIsPurchased(t testing.TB, pool *pgxpool.Pool, bookID uuid.UUID) bool {
	t.Helper()

	var purchased bool
	err := pool.QueryRow(context.Background(), "SELECT purchased FROM books WHERE id = $1", bookID.String()).Scan(&purchased)
	assert.NoError(t, err, "error reading purchased flag")

	return purchased
}

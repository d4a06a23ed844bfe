package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/pagehaven/bookstore-fulfillment-go/fulfillment/postgresengine"
)

// Engine type constants
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

// Wrapper interface to abstract over different engine types, so the same
// integration suite runs against every adapter via the ADAPTER_TYPE env var.
type Wrapper interface {
	GetStore() postgresengine.Store
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool  *pgxpool.Pool
	store postgresengine.Store
}

func (w *PGXPoolWrapper) GetStore() postgresengine.Store {
	return w.store
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db    *sql.DB
	store postgresengine.Store
}

func (w *SQLDBWrapper) GetStore() postgresengine.Store {
	return w.store
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing
type SQLXWrapper struct {
	db    *sqlx.DB
	store postgresengine.Store
}

func (w *SQLXWrapper) GetStore() postgresengine.Store {
	return w.store
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// CreateWrapperWithTestConfig creates the appropriate wrapper based on the
// ADAPTER_TYPE environment variable (pgx.pool is the default) and makes
// sure the schema exists.
func CreateWrapperWithTestConfig(t testing.TB) Wrapper {
	t.Helper()

	wrapper := createWrapper(t, strings.ToLower(os.Getenv("ADAPTER_TYPE")))

	err := wrapper.GetStore().CreateSchema(context.Background())
	assert.NoError(t, err, "error creating schema in test setup")

	return wrapper
}

func createWrapper(t testing.TB, engineTypeFromEnv string) Wrapper {
	t.Helper()

	switch engineTypeFromEnv {
	case typePGXPool, "":
		connPool, err := pgxpool.NewWithConfig(context.Background(), PGXPoolTestConfig())
		assert.NoError(t, err, "error connecting to DB pool in test setup")

		store, err := postgresengine.NewStoreFromPGXPool(connPool)
		assert.NoError(t, err, "error creating store in test setup")

		return &PGXPoolWrapper{pool: connPool, store: store}

	case typeSQLDB:
		db := SQLDBTestConfig()

		store, err := postgresengine.NewStoreFromSQLDB(db)
		assert.NoError(t, err, "error creating store in test setup")

		return &SQLDBWrapper{db: db, store: store}

	case typeSQLXDB:
		db := SQLXTestConfig()

		store, err := postgresengine.NewStoreFromSQLX(db)
		assert.NoError(t, err, "error creating store in test setup")

		return &SQLXWrapper{db: db, store: store}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", engineTypeFromEnv))
	}
}

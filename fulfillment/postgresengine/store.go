package postgresengine

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/pagehaven/bookstore-fulfillment-go/fulfillment"
	"github.com/pagehaven/bookstore-fulfillment-go/fulfillment/postgresengine/internal/adapters"
)

const (
	defaultBooksTableName      = "books"
	defaultCustomersTableName  = "customers"
	defaultOrdersTableName     = "orders"
	defaultOrderLinesTableName = "order_lines"

	logMsgBeginTxFailed          = "failed to begin fulfillment transaction"
	logMsgRollbackFailed         = "failed to roll back fulfillment transaction"
	logMsgCommitFailed           = "failed to commit fulfillment transaction"
	logMsgBuildQueryFailed       = "failed to build query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgDBExecFailed           = "database execution failed"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgRowsAffectedFailed     = "failed to get rows affected count"
	logMsgPurchaseFlagConflict   = "purchase flag conflict detected"
	logMsgOrderFulfilled         = "order fulfilled"
	logMsgCatalogQueryCompleted  = "catalog query completed"
	logMsgBooksAddedToCatalog    = "books added to catalog"
	logMsgSchemaCreated          = "schema created"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "fulfillment operation: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrBookID                = "book_id"
	logAttrBookCount             = "book_count"
	logAttrOrderID               = "order_id"
	logAttrCustomerID            = "customer_id"
	logAttrLineCount             = "line_count"
	logAttrTotalCents            = "total_cents"
	logAttrDurationMS            = "duration_ms"
	logAttrExpectedRows          = "expected_rows"
	logAttrRowsAffected          = "rows_affected"
	logActionFulfill             = "fulfill"
	logActionResolveCustomer     = "resolve_customer"
	logActionLockBook            = "lock_book"
	logActionInsertOrder         = "insert_order"
	logActionInsertOrderLines    = "insert_order_lines"
	logActionMarkBooksPurchased  = "mark_books_purchased"
	logActionGetBook             = "get_book"
	logActionAvailableBooks      = "available_books"
	logActionAddBooks            = "add_books"
	logActionCountBooks          = "count_books"
	logActionCreateSchema        = "create_schema"

	colID          = "id"
	colTitle       = "title"
	colAuthor      = "author"
	colDescription = "description"
	colPriceCents  = "price_cents"
	colPurchased   = "purchased"
	colCreatedAt   = "created_at"
	colName        = "name"
	colEmail       = "email"
	colPhone       = "phone"
	colAddress     = "address"
	colCustomerID  = "customer_id"
	colTotalCents  = "total_cents"
	colStatus      = "status"
	colOrderID     = "order_id"
	colBookID      = "book_id"
	colQuantity    = "quantity"

	dialectPostgres = "postgres"
)

// TableNames holds the table names used by the Store. The zero value is
// replaced by the defaults (books, customers, orders, order_lines).
type TableNames struct {
	Books      string
	Customers  string
	Orders     string
	OrderLines string
}

func defaultTableNames() TableNames {
	return TableNames{
		Books:      defaultBooksTableName,
		Customers:  defaultCustomersTableName,
		Orders:     defaultOrdersTableName,
		OrderLines: defaultOrderLinesTableName,
	}
}

// Store is the PostgreSQL implementation of the bookstore's durable state:
// the book catalog, the customer directory, and the order ledger. Its one
// non-trivial operation is Fulfill, which commits a complete order as a
// single atomic transaction.
//
// It leverages a database adapter and supports customizable logging,
// metrics, tracing, and table configuration.
type Store struct {
	db               adapters.DBAdapter
	tables           TableNames
	logger           fulfillment.Logger
	contextualLogger fulfillment.ContextualLogger
	metricsCollector fulfillment.MetricsCollector
	tracingCollector fulfillment.TracingCollector
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, fulfillment.ErrNilDatabaseConnection
	}

	return applyOptions(Store{db: adapters.NewPGXAdapter(db), tables: defaultTableNames()}, options)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, fulfillment.ErrNilDatabaseConnection
	}

	return applyOptions(Store{db: adapters.NewSQLAdapter(db), tables: defaultTableNames()}, options)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, fulfillment.ErrNilDatabaseConnection
	}

	return applyOptions(Store{db: adapters.NewSQLXAdapter(db), tables: defaultTableNames()}, options)
}

func applyOptions(s Store, options []Option) (Store, error) {
	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	return s, nil
}

package fulfillment

import (
	"errors"
)

var (
	// ErrCustomerProfileInvalid signals malformed request input: empty
	// email or name, an empty item list, duplicate or nil book ids, or a
	// non-positive quantity. Rejected before any store access.
	ErrCustomerProfileInvalid = errors.New("customer profile or requested items are invalid")

	// ErrBookNotFound signals that a requested book id does not exist in
	// the catalog.
	ErrBookNotFound = errors.New("book not found in catalog")

	// ErrBookAlreadyPurchased signals that a requested book's purchased
	// flag was already set at validation or commit time.
	ErrBookAlreadyPurchased = errors.New("book is already purchased")

	// ErrTransactionConflict signals that the storage layer could not
	// serialize the commit against a concurrent writer. The whole fulfill
	// call is safe to retry from scratch.
	ErrTransactionConflict = errors.New("transaction conflict with a concurrent writer")

	// ErrStorageUnavailable signals that the durable store could not be
	// reached. Fatal for the call, never retried silently.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNilDatabaseConnection is returned by the engine constructors when
	// the supplied connection handle is nil.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableNameSupplied is returned when an engine table name
	// option receives an empty string.
	ErrEmptyTableNameSupplied = errors.New("empty table name supplied")
)

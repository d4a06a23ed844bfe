package postgresengine

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/pagehaven/bookstore-fulfillment-go/fulfillment"
)

const (
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
	sqlstateUniqueViolation      = "23505"
	sqlstateClassConnection      = "08"
	sqlstateAdminShutdown        = "57P01"
	sqlstateCrashShutdown        = "57P02"
	sqlstateCannotConnectNow     = "57P03"
)

// sqlStateError is satisfied by both *pgconn.PgError and *pq.Error, so one
// mapping works across all three adapters.
type sqlStateError interface {
	SQLState() string
}

// mapStorageError classifies a driver error into the fulfillment error
// taxonomy.
//
// Serialization failures, deadlocks, and unique violations all mean a
// concurrent writer won the race for the same rows; the whole fulfill call
// is safe to retry, so they map to ErrTransactionConflict. Connection-class
// failures map to ErrStorageUnavailable. Context cancellation passes
// through untouched. Anything else is left as-is rather than being
// mislabeled.
func mapStorageError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return errors.Join(fulfillment.ErrStorageUnavailable, err)
	}

	var stateErr sqlStateError
	if errors.As(err, &stateErr) {
		switch code := stateErr.SQLState(); {
		case code == sqlstateSerializationFailure,
			code == sqlstateDeadlockDetected,
			code == sqlstateUniqueViolation:
			return errors.Join(fulfillment.ErrTransactionConflict, err)

		case strings.HasPrefix(code, sqlstateClassConnection),
			code == sqlstateAdminShutdown,
			code == sqlstateCrashShutdown,
			code == sqlstateCannotConnectNow:
			return errors.Join(fulfillment.ErrStorageUnavailable, err)
		}

		return err
	}

	// Non-SQLSTATE errors from the driver are connectivity problems
	// (dial failures, broken pipes, pool exhaustion).
	return errors.Join(fulfillment.ErrStorageUnavailable, err)
}

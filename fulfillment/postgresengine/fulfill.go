package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/pagehaven/bookstore-fulfillment-go/fulfillment"
	"github.com/pagehaven/bookstore-fulfillment-go/fulfillment/postgresengine/internal/adapters"
)

// Fulfill executes one complete order fulfillment as a single atomic
// transaction: it resolves the customer by email (creating one on first
// order), validates and prices each requested book under a row lock,
// creates the order with its lines, and flips each book's purchased flag.
// Either all of it becomes durable or none of it does.
//
// The row locks taken while validating close the window in which two
// concurrent calls could both observe a book as available: the second
// locker observes the committed flag and fails with ErrBookAlreadyPurchased,
// or the storage layer reports the collision as ErrTransactionConflict,
// which is safe to retry from scratch.
func (s Store) Fulfill(
	ctx context.Context,
	profile fulfillment.CustomerProfile,
	items []fulfillment.RequestedItem,
) (fulfillment.Order, error) {

	var empty fulfillment.Order

	if validateErr := validateFulfillInput(profile, items); validateErr != nil {
		return empty, validateErr
	}

	ctx, span := s.startTraceSpan(ctx, spanFulfillOrder, map[string]string{
		spanAttrLineCount: strconv.Itoa(len(items)),
	})

	start := time.Now()

	order, fulfillErr := s.fulfillInTx(ctx, profile, items)

	duration := time.Since(start)

	if fulfillErr != nil {
		s.observeFulfillFailure(span, fulfillErr, duration)
		return empty, fulfillErr
	}

	s.recordDurationMetrics(logActionFulfill, statusOK, duration)
	s.finishTraceSpan(span, statusOK, map[string]string{logAttrOrderID: order.ID.String()})

	s.logOperation(
		ctx,
		logMsgOrderFulfilled,
		logAttrOrderID, order.ID.String(),
		logAttrCustomerID, order.CustomerID.String(),
		logAttrLineCount, len(order.Lines),
		logAttrTotalCents, order.TotalAmount.Cents(),
		logAttrDurationMS, s.toMilliseconds(duration))

	return order, nil
}

// validateFulfillInput guards the fulfill contract before any store access:
// a usable profile, a non-empty item list, positive quantities, and no
// duplicate book ids (a book cannot be split across two lines).
func validateFulfillInput(profile fulfillment.CustomerProfile, items []fulfillment.RequestedItem) error {
	if profile.Email == "" {
		return fmt.Errorf("%w: empty email", fulfillment.ErrCustomerProfileInvalid)
	}

	if profile.Name == "" {
		return fmt.Errorf("%w: empty name", fulfillment.ErrCustomerProfileInvalid)
	}

	if len(items) == 0 {
		return fmt.Errorf("%w: no items requested", fulfillment.ErrCustomerProfileInvalid)
	}

	seen := make(map[uuid.UUID]struct{}, len(items))

	for _, item := range items {
		if item.BookID == uuid.Nil {
			return fmt.Errorf("%w: nil book id", fulfillment.ErrCustomerProfileInvalid)
		}

		if item.Quantity <= 0 {
			return fmt.Errorf("%w: non-positive quantity for book %s", fulfillment.ErrCustomerProfileInvalid, item.BookID)
		}

		if _, dup := seen[item.BookID]; dup {
			return fmt.Errorf("%w: duplicate book id %s", fulfillment.ErrCustomerProfileInvalid, item.BookID)
		}

		seen[item.BookID] = struct{}{}
	}

	return nil
}

// fulfillInTx runs the fulfillment steps inside one transaction and commits it.
func (s Store) fulfillInTx(
	ctx context.Context,
	profile fulfillment.CustomerProfile,
	items []fulfillment.RequestedItem,
) (fulfillment.Order, error) {

	var empty fulfillment.Order

	tx, beginErr := s.db.BeginTx(ctx)
	if beginErr != nil {
		s.logError(ctx, logMsgBeginTxFailed, beginErr)
		return empty, mapStorageError(beginErr)
	}

	defer s.rollback(ctx, tx)

	now := time.Now().UTC().Truncate(time.Microsecond)

	customer, customerErr := s.resolveCustomer(ctx, tx, profile, now)
	if customerErr != nil {
		return empty, customerErr
	}

	lines, total, priceErr := s.lockAndPriceBooks(ctx, tx, items)
	if priceErr != nil {
		return empty, priceErr
	}

	order := fulfillment.Order{
		ID:          uuid.New(),
		CustomerID:  customer.ID,
		TotalAmount: total,
		Status:      fulfillment.OrderStatusCompleted,
		CreatedAt:   now,
	}

	for i := range lines {
		lines[i].OrderID = order.ID
	}
	order.Lines = lines

	if insertErr := s.insertOrder(ctx, tx, order); insertErr != nil {
		return empty, insertErr
	}

	if insertErr := s.insertOrderLines(ctx, tx, order.Lines); insertErr != nil {
		return empty, insertErr
	}

	if markErr := s.markBooksPurchased(ctx, tx, items); markErr != nil {
		return empty, markErr
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		s.logError(ctx, logMsgCommitFailed, commitErr)
		return empty, mapStorageError(commitErr)
	}

	return order, nil
}

// rollback aborts the transaction; after a successful commit this is a no-op.
func (s Store) rollback(ctx context.Context, tx adapters.DBTx) {
	if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
		s.logWarn(ctx, logMsgRollbackFailed, rollbackErr)
	}
}

// resolveCustomer looks up the customer by email, creating one with the
// supplied profile fields if absent. An existing customer's stored profile
// is never overwritten (idempotent lookup, not upsert); the insert uses
// ON CONFLICT DO NOTHING so two concurrent first orders for the same email
// cannot create two rows or abort each other.
func (s Store) resolveCustomer(
	ctx context.Context,
	tx adapters.DBTx,
	profile fulfillment.CustomerProfile,
	now time.Time,
) (fulfillment.Customer, error) {

	var empty fulfillment.Customer

	insertQuery, buildErr := s.buildCustomerInsertQuery(profile, now)
	if buildErr != nil {
		return empty, buildErr
	}

	if _, execErr := s.execInTx(ctx, tx, insertQuery, logActionResolveCustomer); execErr != nil {
		return empty, execErr
	}

	selectQuery, buildErr := s.buildCustomerSelectQuery(profile.Email)
	if buildErr != nil {
		return empty, buildErr
	}

	customer, found, scanErr := s.scanCustomer(ctx, tx, selectQuery)
	if scanErr != nil {
		return empty, scanErr
	}

	if !found {
		// The row was inserted (or already existed) in this transaction.
		return empty, errors.Join(fulfillment.ErrStorageUnavailable,
			fmt.Errorf("customer row missing after insert for email %q", profile.Email))
	}

	return customer, nil
}

// lockAndPriceBooks validates and prices each requested book in request
// order, taking a FOR UPDATE row lock on every one of them. The locks stay
// held until commit, so the later flag flip cannot race another writer.
func (s Store) lockAndPriceBooks(
	ctx context.Context,
	tx adapters.DBTx,
	items []fulfillment.RequestedItem,
) ([]fulfillment.OrderLine, fulfillment.Money, error) {

	lines := make([]fulfillment.OrderLine, 0, len(items))
	total := fulfillment.MoneyFromCents(0)

	for _, item := range items {
		book, lockErr := s.lockBook(ctx, tx, item.BookID)
		if lockErr != nil {
			return nil, 0, lockErr
		}

		if book.Purchased {
			s.recordConflictMetrics(logActionFulfill)
			return nil, 0, fmt.Errorf("%w: %s", fulfillment.ErrBookAlreadyPurchased, book.Title)
		}

		lines = append(lines, fulfillment.OrderLine{
			ID:       uuid.New(),
			BookID:   book.ID,
			Quantity: item.Quantity,
			Price:    book.Price,
		})

		total = total.Add(book.Price.Mul(item.Quantity))
	}

	return lines, total, nil
}

// lockBook fetches one book inside the transaction with a FOR UPDATE lock.
func (s Store) lockBook(ctx context.Context, tx adapters.DBTx, bookID uuid.UUID) (fulfillment.Book, error) {
	var empty fulfillment.Book

	sqlQuery, buildErr := s.buildBookLockQuery(bookID)
	if buildErr != nil {
		return empty, buildErr
	}

	book, found, scanErr := s.scanBook(ctx, tx, sqlQuery, logActionLockBook)
	if scanErr != nil {
		return empty, scanErr
	}

	if !found {
		return empty, fmt.Errorf("%w: %s", fulfillment.ErrBookNotFound, bookID)
	}

	return book, nil
}

// insertOrder persists the order row.
func (s Store) insertOrder(ctx context.Context, tx adapters.DBTx, order fulfillment.Order) error {
	sqlQuery, buildErr := s.buildOrderInsertQuery(order)
	if buildErr != nil {
		return buildErr
	}

	_, execErr := s.execInTx(ctx, tx, sqlQuery, logActionInsertOrder)

	return execErr
}

// insertOrderLines persists all line rows with one multi-row insert.
func (s Store) insertOrderLines(ctx context.Context, tx adapters.DBTx, lines []fulfillment.OrderLine) error {
	sqlQuery, buildErr := s.buildOrderLinesInsertQuery(lines)
	if buildErr != nil {
		return buildErr
	}

	_, execErr := s.execInTx(ctx, tx, sqlQuery, logActionInsertOrderLines)

	return execErr
}

// markBooksPurchased flips the purchased flag of every requested book,
// guarded by purchased = false. With the row locks held since validation
// the guard cannot fail; a short rows-affected count would mean the
// isolation assumption was violated, and is reported as a conflict rather
// than committing a double sale.
func (s Store) markBooksPurchased(ctx context.Context, tx adapters.DBTx, items []fulfillment.RequestedItem) error {
	sqlQuery, buildErr := s.buildMarkPurchasedQuery(items)
	if buildErr != nil {
		return buildErr
	}

	result, execErr := s.execInTx(ctx, tx, sqlQuery, logActionMarkBooksPurchased)
	if execErr != nil {
		return execErr
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		s.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		return mapStorageError(rowsAffectedErr)
	}

	if rowsAffected < int64(len(items)) {
		s.logOperation(
			ctx,
			logMsgPurchaseFlagConflict,
			logAttrExpectedRows, len(items),
			logAttrRowsAffected, rowsAffected)
		s.recordConflictMetrics(logActionMarkBooksPurchased)

		return fulfillment.ErrTransactionConflict
	}

	return nil
}

// observeFulfillFailure records metrics and finishes the span for a failed fulfillment.
func (s Store) observeFulfillFailure(span fulfillment.SpanContext, err error, duration time.Duration) {
	errorType := errorTypeBusiness

	switch {
	case errors.Is(err, fulfillment.ErrTransactionConflict):
		errorType = errorTypeConflict
	case errors.Is(err, fulfillment.ErrStorageUnavailable):
		errorType = errorTypeStorage
	}

	s.recordDurationMetrics(logActionFulfill, statusError, duration)
	s.recordErrorMetrics(logActionFulfill, errorType)
	s.finishTraceSpan(span, statusError, map[string]string{spanAttrErrorType: errorType})
}

// execInTx executes a statement inside the transaction with query logging
// and storage error mapping.
func (s Store) execInTx(ctx context.Context, tx adapters.DBTx, sqlQuery string, action string) (adapters.DBResult, error) {
	start := time.Now()
	result, execErr := tx.Exec(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return nil, mapStorageError(execErr)
	}

	return result, nil
}

// queryInTx executes a query inside the transaction with query logging
// and storage error mapping.
func (s Store) queryInTx(ctx context.Context, tx adapters.DBTx, sqlQuery string, action string) (adapters.DBRows, error) {
	start := time.Now()
	rows, queryErr := tx.Query(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, mapStorageError(queryErr)
	}

	return rows, nil
}

// closeRows safely closes database rows and logs any errors.
func (s Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, closeErr)
	}
}

// scanCustomer runs a customer select and scans at most one row.
func (s Store) scanCustomer(ctx context.Context, tx adapters.DBTx, sqlQuery string) (fulfillment.Customer, bool, error) {
	var empty fulfillment.Customer

	rows, queryErr := s.queryInTx(ctx, tx, sqlQuery, logActionResolveCustomer)
	if queryErr != nil {
		return empty, false, queryErr
	}
	defer s.closeRows(ctx, rows)

	if !rows.Next() {
		return empty, false, nil
	}

	customer, scanErr := scanCustomerRow(rows)
	if scanErr != nil {
		s.logError(ctx, logMsgScanRowFailed, scanErr)
		return empty, false, mapStorageError(scanErr)
	}

	return customer, true, nil
}

// scanBook runs a book select and scans at most one row.
func (s Store) scanBook(ctx context.Context, tx adapters.DBTx, sqlQuery string, action string) (fulfillment.Book, bool, error) {
	var empty fulfillment.Book

	rows, queryErr := s.queryInTx(ctx, tx, sqlQuery, action)
	if queryErr != nil {
		return empty, false, queryErr
	}
	defer s.closeRows(ctx, rows)

	if !rows.Next() {
		return empty, false, nil
	}

	book, scanErr := scanBookRow(rows)
	if scanErr != nil {
		s.logError(ctx, logMsgScanRowFailed, scanErr)
		return empty, false, mapStorageError(scanErr)
	}

	return book, true, nil
}

func (s Store) buildCustomerInsertQuery(profile fulfillment.CustomerProfile, now time.Time) (string, error) {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.tables.Customers).
		Cols(colID, colName, colEmail, colPhone, colAddress, colCreatedAt).
		Vals(goqu.Vals{
			uuid.New().String(),
			profile.Name,
			profile.Email,
			nullableText(profile.Phone),
			nullableText(profile.Address),
			now,
		}).
		OnConflict(goqu.DoNothing())

	return s.toSQL(insertStmt.ToSQL())
}

func (s Store) buildCustomerSelectQuery(email string) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tables.Customers).
		Select(colID, colName, colEmail, colPhone, colAddress, colCreatedAt).
		Where(goqu.Ex{colEmail: email})

	return s.toSQL(selectStmt.ToSQL())
}

func (s Store) buildBookLockQuery(bookID uuid.UUID) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tables.Books).
		Select(colID, colTitle, colAuthor, colDescription, colPriceCents, colPurchased, colCreatedAt).
		Where(goqu.Ex{colID: bookID.String()}).
		ForUpdate(exp.Wait)

	return s.toSQL(selectStmt.ToSQL())
}

func (s Store) buildOrderInsertQuery(order fulfillment.Order) (string, error) {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.tables.Orders).
		Cols(colID, colCustomerID, colTotalCents, colStatus, colCreatedAt).
		Vals(goqu.Vals{
			order.ID.String(),
			order.CustomerID.String(),
			order.TotalAmount.Cents(),
			string(order.Status),
			order.CreatedAt,
		})

	return s.toSQL(insertStmt.ToSQL())
}

func (s Store) buildOrderLinesInsertQuery(lines []fulfillment.OrderLine) (string, error) {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.tables.OrderLines).
		Cols(colID, colOrderID, colBookID, colQuantity, colPriceCents)

	vals := make([][]interface{}, 0, len(lines))
	for _, line := range lines {
		vals = append(vals, goqu.Vals{
			line.ID.String(),
			line.OrderID.String(),
			line.BookID.String(),
			line.Quantity,
			line.Price.Cents(),
		})
	}

	return s.toSQL(insertStmt.Vals(vals...).ToSQL())
}

func (s Store) buildMarkPurchasedQuery(items []fulfillment.RequestedItem) (string, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.BookID.String())
	}

	updateStmt := goqu.Dialect(dialectPostgres).
		Update(s.tables.Books).
		Set(goqu.Record{colPurchased: true}).
		Where(
			goqu.C(colID).In(ids),
			goqu.C(colPurchased).IsFalse(),
		)

	return s.toSQL(updateStmt.ToSQL())
}

// toSQL funnels goqu build results through common error handling.
func (s Store) toSQL(sqlQuery string, _ []interface{}, toSQLErr error) (string, error) {
	if toSQLErr != nil {
		if s.logger != nil {
			s.logger.Error(logMsgBuildQueryFailed, logAttrError, toSQLErr.Error())
		}

		return "", toSQLErr
	}

	return sqlQuery, nil
}

// nullableText maps an empty optional profile field to NULL.
func nullableText(value string) any {
	if value == "" {
		return nil
	}

	return value
}

// scanCustomerRow scans one customer row.
func scanCustomerRow(rows adapters.DBRows) (fulfillment.Customer, error) {
	var (
		empty     fulfillment.Customer
		idText    string
		name      string
		email     string
		phone     nullString
		address   nullString
		createdAt time.Time
	)

	if scanErr := rows.Scan(&idText, &name, &email, &phone, &address, &createdAt); scanErr != nil {
		return empty, scanErr
	}

	id, parseErr := uuid.Parse(idText)
	if parseErr != nil {
		return empty, parseErr
	}

	return fulfillment.Customer{
		ID:        id,
		Name:      name,
		Email:     email,
		Phone:     phone.value,
		Address:   address.value,
		CreatedAt: createdAt,
	}, nil
}

// scanBookRow scans one book row.
func scanBookRow(rows adapters.DBRows) (fulfillment.Book, error) {
	var (
		empty       fulfillment.Book
		idText      string
		title       string
		author      string
		description nullString
		priceCents  int64
		purchased   bool
		createdAt   time.Time
	)

	if scanErr := rows.Scan(&idText, &title, &author, &description, &priceCents, &purchased, &createdAt); scanErr != nil {
		return empty, scanErr
	}

	id, parseErr := uuid.Parse(idText)
	if parseErr != nil {
		return empty, parseErr
	}

	return fulfillment.Book{
		ID:          id,
		Title:       title,
		Author:      author,
		Description: description.value,
		Price:       fulfillment.MoneyFromCents(priceCents),
		Purchased:   purchased,
		CreatedAt:   createdAt,
	}, nil
}

// nullString scans a nullable text column into a plain string, with NULL
// becoming the empty string. Works with every adapter since it implements
// sql.Scanner semantics directly.
type nullString struct {
	value string
}

func (n *nullString) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		n.value = ""
	case string:
		n.value = v
	case []byte:
		n.value = string(v)
	default:
		return fmt.Errorf("cannot scan %T into text column", src)
	}

	return nil
}

package postgresengine

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/pagehaven/bookstore-fulfillment-go/fulfillment"
	"github.com/pagehaven/bookstore-fulfillment-go/fulfillment/postgresengine/internal/adapters"
)

// GetBook fetches one book by id, purchased or not.
// Returns ErrBookNotFound when the id does not exist.
func (s Store) GetBook(ctx context.Context, bookID uuid.UUID) (fulfillment.Book, error) {
	var empty fulfillment.Book

	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tables.Books).
		Select(colID, colTitle, colAuthor, colDescription, colPriceCents, colPurchased, colCreatedAt).
		Where(goqu.Ex{colID: bookID.String()})

	sqlQuery, buildErr := s.toSQL(selectStmt.ToSQL())
	if buildErr != nil {
		return empty, buildErr
	}

	rows, queryErr := s.query(ctx, sqlQuery, logActionGetBook)
	if queryErr != nil {
		return empty, queryErr
	}
	defer s.closeRows(ctx, rows)

	if !rows.Next() {
		return empty, fmt.Errorf("%w: %s", fulfillment.ErrBookNotFound, bookID)
	}

	book, scanErr := scanBookRow(rows)
	if scanErr != nil {
		s.logError(ctx, logMsgScanRowFailed, scanErr)
		return empty, mapStorageError(scanErr)
	}

	return book, nil
}

// AvailableBooks lists all books that have not been purchased yet,
// oldest first.
func (s Store) AvailableBooks(ctx context.Context) ([]fulfillment.Book, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tables.Books).
		Select(colID, colTitle, colAuthor, colDescription, colPriceCents, colPurchased, colCreatedAt).
		Where(goqu.C(colPurchased).IsFalse()).
		Order(goqu.I(colCreatedAt).Asc())

	sqlQuery, buildErr := s.toSQL(selectStmt.ToSQL())
	if buildErr != nil {
		return nil, buildErr
	}

	rows, queryErr := s.query(ctx, sqlQuery, logActionAvailableBooks)
	if queryErr != nil {
		return nil, queryErr
	}
	defer s.closeRows(ctx, rows)

	books := make([]fulfillment.Book, 0)

	for rows.Next() {
		book, scanErr := scanBookRow(rows)
		if scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr)
			return nil, mapStorageError(scanErr)
		}

		books = append(books, book)
	}

	s.logOperation(ctx, logMsgCatalogQueryCompleted, logAttrBookCount, len(books))

	return books, nil
}

// AddBooks inserts books into the catalog. Used by seeding and tests;
// fulfillment itself never creates books.
func (s Store) AddBooks(ctx context.Context, books ...fulfillment.Book) error {
	if len(books) == 0 {
		return nil
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.tables.Books).
		Cols(colID, colTitle, colAuthor, colDescription, colPriceCents, colPurchased, colCreatedAt)

	vals := make([][]interface{}, 0, len(books))
	for _, book := range books {
		vals = append(vals, goqu.Vals{
			book.ID.String(),
			book.Title,
			book.Author,
			nullableText(book.Description),
			book.Price.Cents(),
			book.Purchased,
			book.CreatedAt,
		})
	}

	sqlQuery, buildErr := s.toSQL(insertStmt.Vals(vals...).ToSQL())
	if buildErr != nil {
		return buildErr
	}

	start := time.Now()
	_, execErr := s.db.Exec(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, logActionAddBooks, time.Since(start))

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return mapStorageError(execErr)
	}

	s.logOperation(ctx, logMsgBooksAddedToCatalog, logAttrBookCount, len(books))

	return nil
}

// CountBooks returns the total number of books in the catalog,
// purchased or not.
func (s Store) CountBooks(ctx context.Context) (int, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tables.Books).
		Select(goqu.COUNT(goqu.Star()))

	sqlQuery, buildErr := s.toSQL(selectStmt.ToSQL())
	if buildErr != nil {
		return 0, buildErr
	}

	rows, queryErr := s.query(ctx, sqlQuery, logActionCountBooks)
	if queryErr != nil {
		return 0, queryErr
	}
	defer s.closeRows(ctx, rows)

	var count int

	if rows.Next() {
		if scanErr := rows.Scan(&count); scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr)
			return 0, mapStorageError(scanErr)
		}
	}

	return count, nil
}

// query executes a non-transactional query with logging and error mapping.
func (s Store) query(ctx context.Context, sqlQuery string, action string) (adapters.DBRows, error) {
	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, mapStorageError(queryErr)
	}

	return rows, nil
}

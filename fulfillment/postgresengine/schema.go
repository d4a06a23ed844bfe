package postgresengine

import (
	"context"
	"fmt"
)

// CreateSchema creates the four store tables if they do not exist.
// Statements run one at a time since the pgx extended protocol rejects
// multi-statement strings. Safe to call repeatedly.
//
// The UNIQUE constraint on order_lines.book_id backs the ledger invariant
// that a book is sold at most once, independent of the purchased flag.
func (s Store) CreateSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY,
			title text NOT NULL,
			author text NOT NULL,
			description text,
			price_cents bigint NOT NULL CHECK (price_cents >= 0),
			purchased boolean NOT NULL DEFAULT false,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, s.tables.Books),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY,
			name text NOT NULL,
			email text NOT NULL UNIQUE,
			phone text,
			address text,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, s.tables.Customers),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY,
			customer_id uuid NOT NULL REFERENCES %s (id),
			total_cents bigint NOT NULL CHECK (total_cents >= 0),
			status text NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, s.tables.Orders, s.tables.Customers),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY,
			order_id uuid NOT NULL REFERENCES %s (id),
			book_id uuid NOT NULL UNIQUE REFERENCES %s (id),
			quantity integer NOT NULL CHECK (quantity > 0),
			price_cents bigint NOT NULL CHECK (price_cents >= 0)
		)`, s.tables.OrderLines, s.tables.Orders, s.tables.Books),
	}

	for _, statement := range statements {
		if _, execErr := s.db.Exec(ctx, statement); execErr != nil {
			s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, statement)
			return mapStorageError(execErr)
		}
	}

	s.logOperation(ctx, logMsgSchemaCreated)

	return nil
}

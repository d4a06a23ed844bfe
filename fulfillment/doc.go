// Package fulfillment defines the domain model of the bookstore order
// fulfillment core: books, customers, orders and their lines, monetary
// values, the error taxonomy of the fulfillment transaction, and the
// dependency-free observability interfaces consumed by the storage engine.
//
// The package contains no storage logic. The PostgreSQL implementation of
// the fulfillment transaction lives in fulfillment/postgresengine; the
// command surface consumed by callers lives in the fulfillorder package.
package fulfillment

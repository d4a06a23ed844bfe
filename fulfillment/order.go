package fulfillment

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order. Fulfillment only ever
// produces completed orders; there is no cancellation workflow.
type OrderStatus string

// OrderStatusCompleted is the status of every successfully fulfilled order.
const OrderStatusCompleted OrderStatus = "completed"

// Order is the persisted record of one completed purchase.
// TotalAmount equals the sum of line price times quantity at order time.
// An order is created exactly once per successful fulfillment transaction
// and never mutated after commit.
type Order struct {
	ID          uuid.UUID
	CustomerID  uuid.UUID
	TotalAmount Money
	Status      OrderStatus
	CreatedAt   time.Time
	Lines       []OrderLine
}

// OrderLine is one book within an order, with the price snapshotted at
// transaction time. A book appears in at most one line across the entire
// ledger; the purchased flag and a uniqueness constraint on the line's
// book reference both enforce this.
type OrderLine struct {
	ID       uuid.UUID
	OrderID  uuid.UUID
	BookID   uuid.UUID
	Quantity int
	Price    Money
}

// RequestedItem is one entry of a fulfillment request: which book, and the
// quantity. Quantity is effectively fixed at 1 since a book is a unique
// one-off item, but it is carried through to the persisted line.
type RequestedItem struct {
	BookID   uuid.UUID
	Quantity int
}

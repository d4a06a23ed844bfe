package fulfillment

import (
	"time"

	"github.com/google/uuid"
)

// CustomerProfile carries the buyer information supplied with a fulfillment
// request. Phone and Address are optional; Name and Email are not.
type CustomerProfile struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Customer is a buyer, identified uniquely by email.
// A customer row is created lazily on the first order for an email; later
// orders for the same email reuse the row without touching its profile
// fields (idempotent lookup, not upsert).
type Customer struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
}

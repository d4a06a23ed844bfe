package fulfillorder

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pagehaven/bookstore-fulfillment-go/fulfillment"
)

const (
	commandType = "FulfillOrder"
)

// Command represents the intent to fulfill one order: who is buying, and
// which books in which order. Commands are only obtainable through
// BuildCommand, so a Command in flight is always well-formed.
type Command struct {
	Customer fulfillment.CustomerProfile
	Items    []fulfillment.RequestedItem
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a Command from the raw request input, rejecting
// malformed input before any store access: empty name or email, an empty
// item list, nil or duplicate book ids, and non-positive quantities all
// fail with fulfillment.ErrCustomerProfileInvalid.
//
// Name and email are trimmed; duplicate book ids are a caller error since
// a book cannot be split across two order lines.
func BuildCommand(customer fulfillment.CustomerProfile, items []fulfillment.RequestedItem) (Command, error) {
	var empty Command

	customer.Name = strings.TrimSpace(customer.Name)
	customer.Email = strings.TrimSpace(customer.Email)

	if customer.Email == "" {
		return empty, fmt.Errorf("%w: empty email", fulfillment.ErrCustomerProfileInvalid)
	}

	if !strings.Contains(customer.Email, "@") {
		return empty, fmt.Errorf("%w: malformed email %q", fulfillment.ErrCustomerProfileInvalid, customer.Email)
	}

	if customer.Name == "" {
		return empty, fmt.Errorf("%w: empty name", fulfillment.ErrCustomerProfileInvalid)
	}

	if len(items) == 0 {
		return empty, fmt.Errorf("%w: no items requested", fulfillment.ErrCustomerProfileInvalid)
	}

	seen := make(map[uuid.UUID]struct{}, len(items))

	for _, item := range items {
		if item.BookID == uuid.Nil {
			return empty, fmt.Errorf("%w: nil book id", fulfillment.ErrCustomerProfileInvalid)
		}

		if item.Quantity <= 0 {
			return empty, fmt.Errorf("%w: non-positive quantity for book %s", fulfillment.ErrCustomerProfileInvalid, item.BookID)
		}

		if _, dup := seen[item.BookID]; dup {
			return empty, fmt.Errorf("%w: duplicate book id %s", fulfillment.ErrCustomerProfileInvalid, item.BookID)
		}

		seen[item.BookID] = struct{}{}
	}

	return Command{
		Customer: customer,
		Items:    append([]fulfillment.RequestedItem(nil), items...),
	}, nil
}

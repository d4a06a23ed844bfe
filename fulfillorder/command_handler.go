package fulfillorder

import (
	"context"

	"github.com/pagehaven/bookstore-fulfillment-go/fulfillment"
	"github.com/pagehaven/bookstore-fulfillment-go/shell"
)

// FulfillmentStore defines the interface needed by the CommandHandler for
// storage operations. postgresengine.Store satisfies it.
type FulfillmentStore interface {
	Fulfill(
		ctx context.Context,
		profile fulfillment.CustomerProfile,
		items []fulfillment.RequestedItem,
	) (fulfillment.Order, error)
}

// CommandHandler orchestrates one fulfillment: it executes the store's
// atomic Fulfill transaction and retries transaction conflicts with
// exponential backoff. Retrying the whole call from scratch is safe since
// customer resolution is idempotent by email and a failed attempt leaves
// no partial writes behind.
type CommandHandler struct {
	store        FulfillmentStore
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(store FulfillmentStore, opts ...Option) CommandHandler {
	handler := CommandHandler{
		store: store,
		// retryOptions defaults to nil (will use retry defaults)
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the fulfillment and returns the finalized order.
//
// On success the returned order carries its generated identity, creation
// timestamp, total, and lines. Business-rule failures pass through
// unchanged; transaction conflicts are retried a bounded number of times
// before being surfaced for the caller to retry.
func (h CommandHandler) Handle(ctx context.Context, command Command) (fulfillment.Order, error) {
	var order fulfillment.Order

	_, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		fulfilled, fulfillErr := h.store.Fulfill(retryCtx, command.Customer, command.Items)
		if fulfillErr != nil {
			return fulfillErr
		}

		order = fulfilled

		return nil
	}, h.retryOptions...)

	if err != nil {
		return fulfillment.Order{}, err
	}

	return order, nil
}

package fulfillorder_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pagehaven/bookstore-fulfillment-go/fulfillment"
	"github.com/pagehaven/bookstore-fulfillment-go/fulfillorder"
	"github.com/pagehaven/bookstore-fulfillment-go/shell"
)

// fulfillmentStoreStub scripts the outcomes of successive Fulfill calls.
type fulfillmentStoreStub struct {
	results   []error
	callCount int
	order     fulfillment.Order
}

func (s *fulfillmentStoreStub) Fulfill(
	_ context.Context,
	_ fulfillment.CustomerProfile,
	_ []fulfillment.RequestedItem,
) (fulfillment.Order, error) {

	result := s.results[s.callCount]
	s.callCount++

	if result != nil {
		return fulfillment.Order{}, result
	}

	return s.order, nil
}

func stubOrder() fulfillment.Order {
	return fulfillment.Order{
		ID:          uuid.New(),
		CustomerID:  uuid.New(),
		TotalAmount: fulfillment.MoneyFromCents(2498),
		Status:      fulfillment.OrderStatusCompleted,
		CreatedAt:   time.Unix(0, 0).UTC(),
	}
}

func mustBuildCommand(t *testing.T) fulfillorder.Command {
	t.Helper()

	command, err := fulfillorder.BuildCommand(
		fulfillment.CustomerProfile{Name: "Jane Reader", Email: "jane@example.com"},
		[]fulfillment.RequestedItem{{BookID: uuid.New(), Quantity: 1}},
	)
	assert.NoError(t, err)

	return command
}

func Test_Handle_ReturnsTheFulfilledOrder(t *testing.T) {
	// arrange
	store := &fulfillmentStoreStub{results: []error{nil}, order: stubOrder()}
	handler := fulfillorder.NewCommandHandler(store)

	// act
	order, err := handler.Handle(context.Background(), mustBuildCommand(t))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, store.order.ID, order.ID)
	assert.Equal(t, int64(2498), order.TotalAmount.Cents())
	assert.Equal(t, 1, store.callCount)
}

func Test_Handle_RetriesTransactionConflicts(t *testing.T) {
	// arrange
	store := &fulfillmentStoreStub{
		results: []error{
			fulfillment.ErrTransactionConflict,
			fulfillment.ErrTransactionConflict,
			nil,
		},
		order: stubOrder(),
	}
	handler := fulfillorder.NewCommandHandler(
		store,
		fulfillorder.WithRetryOptions(shell.WithBaseDelay(time.Millisecond)),
	)

	// act
	order, err := handler.Handle(context.Background(), mustBuildCommand(t))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, store.order.ID, order.ID)
	assert.Equal(t, 3, store.callCount)
}

func Test_Handle_DoesNotRetryBusinessRuleFailures(t *testing.T) {
	// arrange
	store := &fulfillmentStoreStub{results: []error{fulfillment.ErrBookAlreadyPurchased}}
	handler := fulfillorder.NewCommandHandler(store)

	// act
	_, err := handler.Handle(context.Background(), mustBuildCommand(t))

	// assert
	assert.ErrorIs(t, err, fulfillment.ErrBookAlreadyPurchased)
	assert.Equal(t, 1, store.callCount)
}

func Test_Handle_DoesNotRetryStorageOutages(t *testing.T) {
	// arrange
	store := &fulfillmentStoreStub{results: []error{fulfillment.ErrStorageUnavailable}}
	handler := fulfillorder.NewCommandHandler(store)

	// act
	_, err := handler.Handle(context.Background(), mustBuildCommand(t))

	// assert
	assert.ErrorIs(t, err, fulfillment.ErrStorageUnavailable)
	assert.Equal(t, 1, store.callCount)
}

func Test_Handle_SurfacesConflictAfterRetriesAreExhausted(t *testing.T) {
	// arrange
	store := &fulfillmentStoreStub{
		results: []error{
			fulfillment.ErrTransactionConflict,
			fulfillment.ErrTransactionConflict,
		},
	}
	handler := fulfillorder.NewCommandHandler(
		store,
		fulfillorder.WithRetryOptions(
			shell.WithMaxAttempts(2),
			shell.WithBaseDelay(time.Millisecond),
		),
	)

	// act
	_, err := handler.Handle(context.Background(), mustBuildCommand(t))

	// assert
	assert.ErrorIs(t, err, fulfillment.ErrTransactionConflict)
	assert.Equal(t, 2, store.callCount)
}

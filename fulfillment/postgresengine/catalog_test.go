package postgresengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pagehaven/bookstore-fulfillment-go/fulfillment"
	pgtest "github.com/pagehaven/bookstore-fulfillment-go/testutil/postgres"
)

func Test_GetBook_ReturnsTheStoredBook(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := pgtest.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	pool := pgtest.NewAssertionPool(t)
	defer pool.Close()

	// arrange
	pgtest.CleanUpStoreTables(t, pool)
	book := pgtest.GivenBookInCatalog(t, ctx, store, "The Hobbit", fulfillment.MoneyFromFloat(13.49))

	// act
	fetched, err := store.GetBook(ctx, book.ID)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, book.ID, fetched.ID)
	assert.Equal(t, "The Hobbit", fetched.Title)
	assert.Equal(t, "Test Author", fetched.Author)
	assert.Equal(t, int64(1349), fetched.Price.Cents())
	assert.False(t, fetched.Purchased)
}

func Test_GetBook_When_BookDoesNotExist(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := pgtest.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	pool := pgtest.NewAssertionPool(t)
	defer pool.Close()

	// arrange
	pgtest.CleanUpStoreTables(t, pool)

	// act
	_, err := store.GetBook(ctx, uuid.New())

	// assert
	assert.ErrorIs(t, err, fulfillment.ErrBookNotFound)
}

func Test_GetBook_StillReturnsPurchasedBooks(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := pgtest.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	pool := pgtest.NewAssertionPool(t)
	defer pool.Close()

	// arrange
	pgtest.CleanUpStoreTables(t, pool)
	book := pgtest.GivenBookInCatalog(t, ctx, store, "1984", fulfillment.MoneyFromFloat(13.99))

	_, err := store.Fulfill(ctx, pgtest.GivenCustomerProfile(t), []fulfillment.RequestedItem{
		{BookID: book.ID, Quantity: 1},
	})
	assert.NoError(t, err, "error in fulfillment during arrange")

	// act
	fetched, err := store.GetBook(ctx, book.ID)

	// assert
	assert.NoError(t, err)
	assert.True(t, fetched.Purchased)
}

func Test_AvailableBooks_ExcludesPurchasedBooks(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := pgtest.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	pool := pgtest.NewAssertionPool(t)
	defer pool.Close()

	// arrange
	pgtest.CleanUpStoreTables(t, pool)
	sold := pgtest.GivenBookInCatalog(t, ctx, store, "Sold Book", fulfillment.MoneyFromCents(500))
	available := pgtest.GivenBookInCatalog(t, ctx, store, "Available Book", fulfillment.MoneyFromCents(700))

	_, err := store.Fulfill(ctx, pgtest.GivenCustomerProfile(t), []fulfillment.RequestedItem{
		{BookID: sold.ID, Quantity: 1},
	})
	assert.NoError(t, err, "error in fulfillment during arrange")

	// act
	books, err := store.AvailableBooks(ctx)

	// assert
	assert.NoError(t, err)
	assert.Len(t, books, 1)
	assert.Equal(t, available.ID, books[0].ID)
}

func Test_AddBooks_And_CountBooks(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := pgtest.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	pool := pgtest.NewAssertionPool(t)
	defer pool.Close()

	// arrange
	pgtest.CleanUpStoreTables(t, pool)

	countBefore, err := store.CountBooks(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, countBefore)

	now := time.Unix(0, 0).UTC()

	// act
	err = store.AddBooks(ctx,
		fulfillment.BuildBook("One", "Author", "", fulfillment.MoneyFromCents(100), now),
		fulfillment.BuildBook("Two", "Author", "", fulfillment.MoneyFromCents(200), now),
		fulfillment.BuildBook("Three", "Author", "", fulfillment.MoneyFromCents(300), now),
	)

	// assert
	assert.NoError(t, err)

	countAfter, err := store.CountBooks(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 3, countAfter)
}

func Test_AddBooks_WithNoBooks_IsANoOp(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := pgtest.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// act
	err := store.AddBooks(ctx)

	// assert
	assert.NoError(t, err)
}

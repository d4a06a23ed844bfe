package fulfillorder_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pagehaven/bookstore-fulfillment-go/fulfillment"
	"github.com/pagehaven/bookstore-fulfillment-go/fulfillorder"
)

func validProfile() fulfillment.CustomerProfile {
	return fulfillment.CustomerProfile{
		Name:  "Jane Reader",
		Email: "jane@example.com",
	}
}

func validItems() []fulfillment.RequestedItem {
	return []fulfillment.RequestedItem{
		{BookID: uuid.New(), Quantity: 1},
		{BookID: uuid.New(), Quantity: 1},
	}
}

func Test_BuildCommand_WithValidInput(t *testing.T) {
	command, err := fulfillorder.BuildCommand(validProfile(), validItems())

	assert.NoError(t, err)
	assert.Equal(t, "jane@example.com", command.Customer.Email)
	assert.Len(t, command.Items, 2)
	assert.Equal(t, "FulfillOrder", command.CommandType())
}

func Test_BuildCommand_TrimsNameAndEmail(t *testing.T) {
	profile := fulfillment.CustomerProfile{
		Name:  "  Jane Reader  ",
		Email: " jane@example.com ",
	}

	command, err := fulfillorder.BuildCommand(profile, validItems())

	assert.NoError(t, err)
	assert.Equal(t, "Jane Reader", command.Customer.Name)
	assert.Equal(t, "jane@example.com", command.Customer.Email)
}

func Test_BuildCommand_When_EmailIsEmpty(t *testing.T) {
	profile := validProfile()
	profile.Email = "   "

	_, err := fulfillorder.BuildCommand(profile, validItems())

	assert.ErrorIs(t, err, fulfillment.ErrCustomerProfileInvalid)
}

func Test_BuildCommand_When_EmailIsMalformed(t *testing.T) {
	profile := validProfile()
	profile.Email = "not-an-email"

	_, err := fulfillorder.BuildCommand(profile, validItems())

	assert.ErrorIs(t, err, fulfillment.ErrCustomerProfileInvalid)
}

func Test_BuildCommand_When_NameIsEmpty(t *testing.T) {
	profile := validProfile()
	profile.Name = ""

	_, err := fulfillorder.BuildCommand(profile, validItems())

	assert.ErrorIs(t, err, fulfillment.ErrCustomerProfileInvalid)
}

func Test_BuildCommand_When_ItemListIsEmpty(t *testing.T) {
	_, err := fulfillorder.BuildCommand(validProfile(), nil)

	assert.ErrorIs(t, err, fulfillment.ErrCustomerProfileInvalid)
}

func Test_BuildCommand_When_BookIDIsNil(t *testing.T) {
	items := []fulfillment.RequestedItem{{BookID: uuid.Nil, Quantity: 1}}

	_, err := fulfillorder.BuildCommand(validProfile(), items)

	assert.ErrorIs(t, err, fulfillment.ErrCustomerProfileInvalid)
}

func Test_BuildCommand_When_QuantityIsNotPositive(t *testing.T) {
	items := []fulfillment.RequestedItem{{BookID: uuid.New(), Quantity: 0}}

	_, err := fulfillorder.BuildCommand(validProfile(), items)

	assert.ErrorIs(t, err, fulfillment.ErrCustomerProfileInvalid)
}

func Test_BuildCommand_When_BookIDIsDuplicated(t *testing.T) {
	bookID := uuid.New()
	items := []fulfillment.RequestedItem{
		{BookID: bookID, Quantity: 1},
		{BookID: bookID, Quantity: 1},
	}

	_, err := fulfillorder.BuildCommand(validProfile(), items)

	assert.ErrorIs(t, err, fulfillment.ErrCustomerProfileInvalid)
}

func Test_BuildCommand_CopiesTheItemSlice(t *testing.T) {
	items := validItems()

	command, err := fulfillorder.BuildCommand(validProfile(), items)
	assert.NoError(t, err)

	items[0].Quantity = 99

	assert.Equal(t, 1, command.Items[0].Quantity)
}

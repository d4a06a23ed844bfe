package fulfillment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pagehaven/bookstore-fulfillment-go/fulfillment"
)

func Test_Money_AddAndMul_StayExact(t *testing.T) {
	b1 := fulfillment.MoneyFromFloat(12.99)
	b2 := fulfillment.MoneyFromFloat(11.99)

	total := b1.Mul(1).Add(b2.Mul(1))

	assert.Equal(t, int64(2498), total.Cents())
	assert.Equal(t, "24.98", total.String())
}

func Test_MoneyFromFloat_RoundsToNearestCent(t *testing.T) {
	assert.Equal(t, int64(1299), fulfillment.MoneyFromFloat(12.99).Cents())
	assert.Equal(t, int64(1000), fulfillment.MoneyFromFloat(9.999).Cents())
	assert.Equal(t, int64(0), fulfillment.MoneyFromFloat(0.0).Cents())
}

func Test_Money_String_FormatsSmallAndNegativeAmounts(t *testing.T) {
	assert.Equal(t, "0.05", fulfillment.MoneyFromCents(5).String())
	assert.Equal(t, "0.00", fulfillment.MoneyFromCents(0).String())
	assert.Equal(t, "-3.50", fulfillment.MoneyFromCents(-350).String())
}

func Test_Money_IsNegative(t *testing.T) {
	assert.True(t, fulfillment.MoneyFromCents(-1).IsNegative())
	assert.False(t, fulfillment.MoneyFromCents(0).IsNegative())
	assert.False(t, fulfillment.MoneyFromCents(1).IsNegative())
}

func Test_Money_Float64_ForDisplayEdges(t *testing.T) {
	assert.InDelta(t, 24.98, fulfillment.MoneyFromCents(2498).Float64(), 0.0001)
}

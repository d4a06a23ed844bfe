package fulfillment

import (
	"fmt"
	"math"
)

// Money is a monetary amount in integer cents.
// Arithmetic on cents keeps order totals exact; float prices only appear
// at the edges (seed data) and are rounded once on the way in.
type Money int64

// MoneyFromCents creates a Money from an integer cents value.
func MoneyFromCents(cents int64) Money {
	return Money(cents)
}

// MoneyFromFloat converts a float amount (e.g. 12.99) to Money,
// rounding half away from zero to the nearest cent.
func MoneyFromFloat(amount float64) Money {
	return Money(math.Round(amount * 100))
}

// Cents returns the amount as integer cents.
func (m Money) Cents() int64 {
	return int64(m)
}

// Add returns the sum of two monetary amounts.
func (m Money) Add(other Money) Money {
	return m + other
}

// Mul returns the amount multiplied by a quantity.
func (m Money) Mul(quantity int) Money {
	return m * Money(quantity)
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m < 0
}

// Float64 returns the amount as a float, for display and JSON edges only.
func (m Money) Float64() float64 {
	return float64(m) / 100
}

// String formats the amount with two decimal places, e.g. "24.98".
func (m Money) String() string {
	sign := ""
	cents := int64(m)

	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

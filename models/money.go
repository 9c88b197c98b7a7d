package models

import "github.com/shopspring/decimal"

// Money is an amount in integer cents. Arithmetic on stored amounts stays
// integral; conversion to decimal happens at the SEPA boundary.
type Money int64

// Decimal returns the amount in currency units with two decimal places.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// Package moneypkg provides shared validation for money amounts.
//
// Amounts travel through the application as strings and are parsed with
// shopspring/decimal at validation points to keep currency arithmetic exact.
package moneypkg

import (
	"errors"

	"github.com/shopspring/decimal"
)

// MaxDecimalPlaces is the precision limit for all money amounts.
const MaxDecimalPlaces = 2

// ErrInvalid indicates a non-numeric, non-positive or too precise amount.
var ErrInvalid = errors.New("invalid amount")

// Parse parses amount and checks that it is strictly positive with at
// most MaxDecimalPlaces decimal places.
func Parse(amount string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, ErrInvalid
	}

	if d.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalid
	}

	if d.Exponent() < -MaxDecimalPlaces {
		return decimal.Zero, ErrInvalid
	}

	return d, nil
}

// IsValid reports whether amount passes Parse.
func IsValid(amount string) bool {
	_, err := Parse(amount)
	return err == nil
}

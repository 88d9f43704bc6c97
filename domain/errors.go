package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCurrency a currency code is missing or is not 3 characters long
	ErrInvalidCurrency = errors.New("invalid currency code")

	// ErrInvalidRate a supplied rate is zero or negative
	ErrInvalidRate = errors.New("invalid exchange rate")

	// ErrRateNotFound no direct or derived rate exists for a pair
	ErrRateNotFound = errors.New("exchange rate not found")

	// ErrNotConfigured no rate table is active. It matches ErrRateNotFound with errors.Is.
	ErrNotConfigured = fmt.Errorf("no rates configured: %w", ErrRateNotFound)
)

// IsValidation reports whether err was caused by bad caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidCurrency) || errors.Is(err, ErrInvalidRate)
}

package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Currency a three letter currency code, always upper case
type Currency string

// Amount a monetary amount
type Amount = decimal.Decimal

// Rate an exchange rate
type Rate = decimal.Decimal

// ParseCurrency validates a currency code and normalizes it to upper case.
func ParseCurrency(code string) (Currency, error) {
	if code == "" {
		return "", fmt.Errorf("currency code is missing: %w", ErrInvalidCurrency)
	}
	if utf8.RuneCountInString(code) != 3 {
		return "", fmt.Errorf("currency code %q must be 3 characters long: %w", code, ErrInvalidCurrency)
	}
	return Currency(strings.ToUpper(code)), nil
}

// Pair an ordered (From, To) currency pair. Pairs are comparable and used as map keys.
type Pair struct {
	From Currency
	To   Currency
}

// NewPair validates and normalizes both endpoints of a pair.
func NewPair(from, to string) (Pair, error) {
	f, err := ParseCurrency(from)
	if err != nil {
		return Pair{}, fmt.Errorf("from currency: %w", err)
	}
	t, err := ParseCurrency(to)
	if err != nil {
		return Pair{}, fmt.Errorf("to currency: %w", err)
	}
	return Pair{From: f, To: t}, nil
}

// Identity reports whether the pair converts a currency to itself.
func (p Pair) Identity() bool {
	return p.From == p.To
}

func (p Pair) String() string {
	return string(p.From) + "/" + string(p.To)
}

// Less orders pairs by From, then To.
func (p Pair) Less(other Pair) bool {
	if p.From != other.From {
		return p.From < other.From
	}
	return p.To < other.To
}

// Quote a rate as supplied by a caller, before validation
type Quote struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Rate decimal.Decimal `json:"rate"`
}

// PairRate a validated rate for a pair
type PairRate struct {
	Pair Pair
	Rate Rate
}

// ParseQuotes validates every quote. Either all quotes are valid or an error is returned
// and nothing is produced.
func ParseQuotes(quotes []Quote) ([]PairRate, error) {
	rates := make([]PairRate, 0, len(quotes))
	for i, q := range quotes {
		pair, err := NewPair(q.From, q.To)
		if err != nil {
			return nil, fmt.Errorf("quote [%d]: %w", i, err)
		}
		if !q.Rate.IsPositive() {
			return nil, fmt.Errorf("quote [%d] %v rate %v: %w", i, pair, q.Rate, ErrInvalidRate)
		}
		rates = append(rates, PairRate{Pair: pair, Rate: q.Rate})
	}
	return rates, nil
}

// Exchanged the result of a conversion
type Exchanged struct {
	Rate   Rate
	Amount Amount
}

// Package ratestore holds the active rate table. Tables are immutable once built and are
// published by swapping a single pointer, so a reader always sees one table in full.
package ratestore

import (
	"fmt"
	"maps"
	"slices"
	"sync/atomic"
	"time"

	"go-currency-converter/domain"

	"github.com/google/uuid"
)

// Table an immutable mapping of pairs to rates
type Table struct {
	// Version identifies this table
	Version uuid.UUID

	// Created when the table was built
	Created time.Time

	// Direct how many rates were quoted directly
	Direct int

	rates map[domain.Pair]domain.Rate
}

// NewTable copies rates into a new table. direct is the number of rates that were quoted
// directly rather than derived.
func NewTable(rates map[domain.Pair]domain.Rate, direct int) *Table {
	return &Table{
		Version: uuid.New(),
		Created: time.Now().UTC(),
		Direct:  direct,
		rates:   maps.Clone(rates),
	}
}

// Configured reports whether t was built from quotes. The zero Table stands in for
// "no rates configured" and has no version.
func (t *Table) Configured() bool {
	return t.Version != uuid.Nil
}

// Rate looks up the rate for a pair
func (t *Table) Rate(pair domain.Pair) (domain.Rate, bool) {
	r, ok := t.rates[pair]
	return r, ok
}

// Len number of pairs in the table
func (t *Table) Len() int {
	return len(t.rates)
}

// Derived number of rates composed from chains
func (t *Table) Derived() int {
	return len(t.rates) - t.Direct
}

// Rates every rate in the table, sorted by pair
func (t *Table) Rates() []domain.PairRate {
	pairs := slices.SortedFunc(maps.Keys(t.rates), func(a, b domain.Pair) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	out := make([]domain.PairRate, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, domain.PairRate{Pair: p, Rate: t.rates[p]})
	}
	return out
}

// Store the active rate table. The zero value has no table. Store is concurrency safe.
type Store struct {
	current atomic.Pointer[Table]
}

// New constructs an empty Store
func New() *Store {
	return &Store{}
}

// Clear drops the active table. Lookups fail until Replace is called.
func (s *Store) Clear() {
	s.current.Store(nil)
}

// Replace publishes t as the active table. t must not be modified afterwards.
func (s *Store) Replace(t *Table) {
	s.current.Store(t)
}

// Table the active table, nil if none
func (s *Store) Table() *Table {
	return s.current.Load()
}

// Lookup the rate for a pair in the active table
func (s *Store) Lookup(pair domain.Pair) (domain.Rate, error) {
	t := s.current.Load()
	if t == nil {
		return domain.Rate{}, fmt.Errorf("lookup [%v]: %w", pair, domain.ErrNotConfigured)
	}
	rate, ok := t.Rate(pair)
	if !ok {
		return domain.Rate{}, fmt.Errorf("lookup [%v]: %w", pair, domain.ErrRateNotFound)
	}
	return rate, nil
}

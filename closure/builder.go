// Package closure derives rates for currency pairs that have no direct quote by chaining
// the rates that are known.
//
// For every ordered pair (A, B) that can be reached through a chain of quotes, Build picks
// the chain with the fewest hops and multiplies its rates in order. When several chains
// share the fewest hops the first one discovered wins. Discovery order follows the input
// order of the quotes and the sorted order of the pairs being resolved, so results are
// deterministic, but the choice carries no meaning beyond that.
package closure

import (
	"maps"
	"slices"

	"go-currency-converter/domain"

	"github.com/shopspring/decimal"
)

// Result a complete rate table plus what happened while building it
type Result struct {
	// Rates direct and derived rates
	Rates map[domain.Pair]domain.Rate

	// Direct number of distinct directly quoted pairs
	Direct int

	// Derived number of rates composed from chains
	Derived int

	// Duplicates pairs quoted more than once. The first quote was kept.
	Duplicates []domain.Pair

	// Unreachable pairs that no chain connects, sorted. Only pairs from a currency quoted as
	// a source to a different currency quoted as a target are considered. A pair starting at a
	// currency that is never quoted as a source is not listed.
	Unreachable []domain.Pair
}

// Build computes the rate closure of the given direct rates. Duplicate pairs keep their
// first rate. Build never fails: pairs that cannot be reached are left out of Rates.
func Build(direct []domain.PairRate) Result {
	rates := make(map[domain.Pair]domain.Rate, len(direct))
	var quoted []domain.Pair
	var duplicates []domain.Pair
	for _, d := range direct {
		if _, ok := rates[d.Pair]; ok {
			duplicates = append(duplicates, d.Pair)
			continue
		}
		rates[d.Pair] = d.Rate
		quoted = append(quoted, d.Pair)
	}

	result := Result{
		Direct:     len(quoted),
		Duplicates: duplicates,
	}

	unresolved := unresolvedPairs(quoted, rates)
	c := newCandidates(quoted)
	c.sweep(maps.Clone(rates), unresolved)

	for _, pair := range unresolved {
		if len(c.paths[pair]) == 0 {
			result.Unreachable = append(result.Unreachable, pair)
		}
	}
	result.Derived = c.fold(rates, unresolved)
	result.Rates = rates
	return result
}

// unresolvedPairs lists, in sorted order, every (from, to) pair over the quoted currencies
// that is not quoted itself. Only currencies with an outgoing quote can start a chain and
// only currencies with an incoming quote can end one, so the other pairs are skipped.
func unresolvedPairs(quoted []domain.Pair, rates map[domain.Pair]domain.Rate) []domain.Pair {
	froms := map[domain.Currency]struct{}{}
	tos := map[domain.Currency]struct{}{}
	for _, p := range quoted {
		froms[p.From] = struct{}{}
		tos[p.To] = struct{}{}
	}

	var pairs []domain.Pair
	for _, from := range slices.Sorted(maps.Keys(froms)) {
		for _, to := range slices.Sorted(maps.Keys(tos)) {
			pair := domain.Pair{From: from, To: to}
			if pair.Identity() {
				continue
			}
			if _, ok := rates[pair]; ok {
				continue
			}
			pairs = append(pairs, pair)
		}
	}
	return pairs
}

// candidates the paths found so far for each pair, in discovery order
type candidates struct {
	// order pairs in the order they got their first path
	order []domain.Pair

	paths map[domain.Pair][]Path
	seen  map[domain.Pair]map[string]struct{}
}

func newCandidates(quoted []domain.Pair) *candidates {
	c := &candidates{
		paths: map[domain.Pair][]Path{},
		seen:  map[domain.Pair]map[string]struct{}{},
	}
	for _, pair := range quoted {
		c.add(pair, Path{pair})
	}
	return c
}

// add records path for pair unless an equal path is already recorded.
func (c *candidates) add(pair domain.Pair, path Path) bool {
	key := path.key()
	seen, ok := c.seen[pair]
	if !ok {
		seen = map[string]struct{}{}
		c.seen[pair] = seen
		c.order = append(c.order, pair)
	}
	if _, dup := seen[key]; dup {
		return false
	}
	seen[key] = struct{}{}
	c.paths[pair] = append(c.paths[pair], path)
	return true
}

// sweep searches every unresolved pair again and again until a full pass finds no new path.
// Each path is a simple path over a finite set of currencies, so this terminates, though
// the number of paths can grow exponentially with the density of the quotes.
func (c *candidates) sweep(direct map[domain.Pair]domain.Rate, unresolved []domain.Pair) {
	for {
		found := false
		for _, pair := range unresolved {
			g := graph{direct: direct, links: c.order}
			for _, path := range g.search(pair, Path{pair}) {
				if c.add(pair, path) {
					found = true
				}
			}
		}
		if !found {
			return
		}
	}
}

// fold turns the shortest candidate of every unresolved pair into a rate, adding it to
// rates. A pair whose shortest path goes through a pair that is not resolved yet waits for
// a later pass. Returns the number of rates added.
func (c *candidates) fold(rates map[domain.Pair]domain.Rate, unresolved []domain.Pair) int {
	var pending []domain.Pair
	for _, pair := range unresolved {
		if len(c.paths[pair]) > 0 {
			pending = append(pending, pair)
		}
	}

	added := 0
	for len(pending) > 0 {
		var waiting []domain.Pair
		for _, pair := range pending {
			rate, ok := compose(rates, shortest(c.paths[pair]))
			if !ok {
				waiting = append(waiting, pair)
				continue
			}
			rates[pair] = rate
			added++
		}

		if len(waiting) == len(pending) {
			// Every waiting pair depends on another waiting pair. Resolve one of them
			// through its shortest path that can be composed now and carry on.
			i, rate, ok := c.breakCycle(rates, waiting)
			if !ok {
				return added
			}
			rates[waiting[i]] = rate
			added++
			waiting = slices.Delete(waiting, i, i+1)
		}
		pending = waiting
	}
	return added
}

func (c *candidates) breakCycle(rates map[domain.Pair]domain.Rate, waiting []domain.Pair) (int, domain.Rate, bool) {
	for i, pair := range waiting {
		paths := slices.Clone(c.paths[pair])
		slices.SortStableFunc(paths, func(a, b Path) int { return len(a) - len(b) })
		for _, path := range paths {
			if rate, ok := compose(rates, path); ok {
				return i, rate, true
			}
		}
	}
	return 0, domain.Rate{}, false
}

// shortest the path with the fewest hops, the first one found on a tie
func shortest(paths []Path) Path {
	var best Path
	for _, p := range paths {
		if best == nil || len(p) < len(best) {
			best = p
		}
	}
	return best
}

// compose multiplies the rates of each hop in path order. It fails if a hop has no rate yet.
func compose(rates map[domain.Pair]domain.Rate, path Path) (domain.Rate, bool) {
	rate := decimal.NewFromInt(1)
	for _, hop := range path {
		r, ok := rates[hop]
		if !ok {
			return domain.Rate{}, false
		}
		rate = rate.Mul(r)
	}
	return rate, true
}

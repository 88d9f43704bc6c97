package closure

import (
	"strings"

	"go-currency-converter/domain"
)

// Path a chain of hops where each hop starts at the currency the previous one ended at.
type Path []domain.Pair

// From the currency the path starts at
func (p Path) From() domain.Currency {
	if len(p) == 0 {
		return ""
	}
	return p[0].From
}

// To the currency the path ends at
func (p Path) To() domain.Currency {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1].To
}

// Equal reports whether both paths have the same hops in the same order.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Valid reports whether the hops chain and no pair repeats.
func (p Path) Valid() bool {
	if len(p) == 0 {
		return false
	}
	seen := make(map[domain.Pair]struct{}, len(p))
	for i, hop := range p {
		if _, ok := seen[hop]; ok {
			return false
		}
		seen[hop] = struct{}{}
		if i > 0 && p[i-1].To != hop.From {
			return false
		}
	}
	return true
}

func (p Path) contains(pair domain.Pair) bool {
	for _, hop := range p {
		if hop == pair {
			return true
		}
	}
	return false
}

// prepend returns a new path, p is left untouched.
func (p Path) prepend(hop domain.Pair) Path {
	out := make(Path, 0, len(p)+1)
	out = append(out, hop)
	return append(out, p...)
}

func (p Path) append(hop domain.Pair) Path {
	out := make(Path, 0, len(p)+1)
	out = append(out, p...)
	return append(out, hop)
}

// key is unique per hop sequence
func (p Path) key() string {
	var b strings.Builder
	for _, hop := range p {
		b.WriteString(string(hop.From))
		b.WriteByte('>')
		b.WriteString(string(hop.To))
		b.WriteByte(';')
	}
	return b.String()
}

// String renders the path as USD=>CAD=>GBP
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for _, hop := range p {
		b.WriteString(string(hop.From))
		b.WriteString("=>")
	}
	b.WriteString(string(p.To()))
	return b.String()
}

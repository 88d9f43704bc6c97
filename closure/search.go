package closure

import (
	"go-currency-converter/domain"
)

// graph a read-only view of what is known at the start of one search
type graph struct {
	// direct the pairs quoted directly by the caller
	direct map[domain.Pair]domain.Rate

	// links every pair with at least one candidate path, in discovery order.
	// Links are the first hops a search may take.
	links []domain.Pair
}

// search returns every path from node.From to node.To that starts with a link and ends
// with a direct pair. visited holds the remainder pairs already on the current branch,
// starting with the target itself, so no currency is entered twice.
func (g *graph) search(node domain.Pair, visited Path) []Path {
	if _, ok := g.direct[node]; ok {
		return []Path{{node}}
	}

	var result []Path
	for _, link := range g.links {
		if link.From != node.From || link.Identity() {
			continue
		}

		rest := domain.Pair{From: link.To, To: node.To}
		if rest.Identity() || visited.contains(rest) {
			continue
		}

		for _, child := range g.search(rest, visited.append(rest)) {
			if child.From() == rest.From && child.To() == rest.To {
				result = append(result, child.prepend(link))
			}
		}
	}
	return result
}

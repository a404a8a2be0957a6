package graph

import "sort"

// RelatedHit is one result of a Related traversal: a node id and its decayed
// activation score.
type RelatedHit struct {
	ID    string
	Score float64
}

// Related performs spreading-activation BFS from seed over the undirected
// projection, decaying score by 0.5 per hop (§4.8), capped at maxDepth hops.
// The seed itself is never returned.
func (g *Graph) Related(seed string, maxDepth int) []RelatedHit {
	const decay = 0.5
	visited := map[string]int{seed: 0}
	scores := map[string]float64{}
	frontier := []string{seed}

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []string
		score := pow(decay, depth)
		for _, id := range frontier {
			for _, n := range g.neighbors(id) {
				if _, seen := visited[n]; seen {
					continue
				}
				visited[n] = depth
				scores[n] = score
				next = append(next, n)
			}
		}
		frontier = next
	}

	hits := make([]RelatedHit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, RelatedHit{ID: id, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	return hits
}

func pow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

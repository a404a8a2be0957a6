package graph

import "sort"

// GapHit is one node's structural-hole constraint score: lower constraint
// means a larger gap (more brokerage opportunity), per Burt's measure.
type GapHit struct {
	ID         string
	Constraint float64
}

// Gaps computes Burt's network constraint over the undirected projection
// for every node with at least one neighbor, and returns them sorted
// ascending (lowest constraint = largest gap first, §4.8).
func (g *Graph) Gaps(limit int) []GapHit {
	ids := g.NodeIDs()
	var hits []GapHit
	for _, id := range ids {
		neighbors := g.neighbors(id)
		if len(neighbors) == 0 {
			continue
		}
		hits = append(hits, GapHit{ID: id, Constraint: g.constraint(id, neighbors)})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Constraint != hits[j].Constraint {
			return hits[i].Constraint < hits[j].Constraint
		}
		return hits[i].ID < hits[j].ID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// constraint computes Burt's constraint for node i with neighbor set
// neighbors, treating every undirected relation as equally weighted (the
// engine does not track per-relation investment beyond edge existence).
func (g *Graph) constraint(i string, neighbors []string) float64 {
	p := proportions(i, neighbors, g)
	total := 0.0
	for _, j := range neighbors {
		indirect := 0.0
		for _, q := range neighbors {
			if q == j {
				continue
			}
			indirect += p[i][q] * p[q][j]
		}
		direct := p[i][j] + indirect
		total += direct * direct
	}
	return total
}

// proportions returns p[a][b]: the share of a's total relations invested in
// b, for a the ego node and any q in its neighbor set (needed for the
// indirect term above).
func proportions(ego string, neighbors []string, g *Graph) map[string]map[string]float64 {
	p := map[string]map[string]float64{}
	nodes := append([]string{ego}, neighbors...)
	for _, a := range nodes {
		aNeighbors := g.neighbors(a)
		p[a] = map[string]float64{}
		if len(aNeighbors) == 0 {
			continue
		}
		for _, b := range aNeighbors {
			p[a][b] = 1.0 / float64(len(aNeighbors))
		}
	}
	return p
}

package graph

import "sort"

// RankHit is one node's PageRank score.
type RankHit struct {
	ID    string
	Score float64
}

// PageRank computes standard PageRank over the directed edge set with the
// given damping factor (§4.8 default 0.85), iterating until scores converge
// or maxIter is reached.
func (g *Graph) PageRank(damping float64, maxIter int) map[string]float64 {
	ids := g.NodeIDs()
	n := len(ids)
	if n == 0 {
		return map[string]float64{}
	}

	scores := make(map[string]float64, n)
	initial := 1.0 / float64(n)
	for _, id := range ids {
		scores[id] = initial
	}

	const epsilon = 1e-9
	for iter := 0; iter < maxIter; iter++ {
		next := make(map[string]float64, n)
		danglingMass := 0.0
		for _, id := range ids {
			next[id] = (1 - damping) / float64(n)
			if len(g.out[id]) == 0 {
				danglingMass += scores[id]
			}
		}
		danglingShare := damping * danglingMass / float64(n)
		for _, id := range ids {
			next[id] += danglingShare
		}
		for _, id := range ids {
			outDeg := len(g.out[id])
			if outDeg == 0 {
				continue
			}
			share := damping * scores[id] / float64(outDeg)
			seenTargets := map[string]bool{}
			for _, e := range g.out[id] {
				if seenTargets[e.TargetID] {
					continue
				}
				seenTargets[e.TargetID] = true
				next[e.TargetID] += share
			}
		}

		delta := 0.0
		for _, id := range ids {
			d := next[id] - scores[id]
			if d < 0 {
				d = -d
			}
			delta += d
		}
		scores = next
		if delta < epsilon {
			break
		}
	}
	return scores
}

// RankTop returns PageRank scores sorted descending, for the `rank` query
// surface operation.
func (g *Graph) RankTop(damping float64, maxIter, limit int) []RankHit {
	scores := g.PageRank(damping, maxIter)
	hits := make([]RankHit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, RankHit{ID: id, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

package graph

import "sort"

// BridgeHit is one node's betweenness centrality score.
type BridgeHit struct {
	ID    string
	Score float64
}

// Betweenness computes betweenness centrality over the undirected
// projection using Brandes' algorithm, and returns the top-k nodes (§4.8
// Bridges).
func (g *Graph) Betweenness(limit int) []BridgeHit {
	ids := g.NodeIDs()
	centrality := make(map[string]float64, len(ids))
	for _, id := range ids {
		centrality[id] = 0
	}

	for _, s := range ids {
		stack := []string{}
		pred := map[string][]string{}
		sigma := map[string]float64{s: 1}
		dist := map[string]int{s: 0}
		queue := []string{s}

		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for _, w := range g.neighbors(v) {
				if _, seen := dist[w]; !seen {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					pred[w] = append(pred[w], v)
				}
			}
		}

		delta := map[string]float64{}
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range pred[w] {
				delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
			}
			if w != s {
				centrality[w] += delta[w]
			}
		}
	}

	// Undirected graph: each shortest path counted from both endpoints.
	for id := range centrality {
		centrality[id] /= 2
	}

	hits := make([]BridgeHit, 0, len(centrality))
	for id, score := range centrality {
		hits = append(hits, BridgeHit{ID: id, Score: score})
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

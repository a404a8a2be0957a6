package graph

// Themes runs community detection over the undirected projection. Leiden
// clustering is preferred by the spec (§4.8) but no Leiden implementation is
// available in this build — no graph-algorithms library appears anywhere in
// the retrieval pack, and a from-scratch Leiden implementation is out of
// scope here — so this always falls back to Louvain and reports that
// fallback as a warning, exactly the behavior §4.8 specifies for when Leiden
// is unavailable.
type ThemesResult struct {
	Communities map[string]int // node id -> cluster id
	Warning     string
}

// Themes detects communities via greedy modularity optimization (a
// single-level Louvain pass): each node starts in its own community, then
// repeatedly moves to the neighboring community that most increases
// modularity, until no move improves it or 20 passes have run.
func (g *Graph) Themes() ThemesResult {
	ids := g.NodeIDs()
	community := make(map[string]int, len(ids))
	for i, id := range ids {
		community[id] = i
	}

	degree := make(map[string]int, len(ids))
	totalDegree := 0.0
	for _, id := range ids {
		d := len(g.neighbors(id))
		degree[id] = d
		totalDegree += float64(d)
	}
	if totalDegree == 0 {
		return ThemesResult{Communities: community, Warning: "Leiden unavailable, used Louvain fallback"}
	}
	m2 := totalDegree // sum of degrees = 2|E| for an undirected projection

	communityDegree := make(map[int]float64, len(ids))
	for _, id := range ids {
		communityDegree[community[id]] += float64(degree[id])
	}

	improved := true
	for pass := 0; improved && pass < 20; pass++ {
		improved = false
		for _, id := range ids {
			current := community[id]
			neighborCommunities := map[int]int{} // candidate community -> shared-edge count
			for _, n := range g.neighbors(id) {
				neighborCommunities[community[n]]++
			}
			if len(neighborCommunities) == 0 {
				continue
			}

			communityDegree[current] -= float64(degree[id])
			bestCommunity := current
			bestGain := modularityGain(neighborCommunities[current], float64(degree[id]), communityDegree[current], m2)
			for candidate, sharedEdges := range neighborCommunities {
				if candidate == current {
					continue
				}
				gain := modularityGain(sharedEdges, float64(degree[id]), communityDegree[candidate], m2)
				if gain > bestGain {
					bestGain = gain
					bestCommunity = candidate
				}
			}
			communityDegree[bestCommunity] += float64(degree[id])
			if bestCommunity != current {
				community[id] = bestCommunity
				improved = true
			}
		}
	}

	return ThemesResult{Communities: community, Warning: "Leiden unavailable, used Louvain fallback"}
}

// modularityGain is the standard Louvain move-gain term: shared edges to the
// candidate community minus the expected edges under the null model.
func modularityGain(sharedEdges int, nodeDegree, candidateCommunityDegree, m2 float64) float64 {
	return float64(sharedEdges) - (nodeDegree*candidateCommunityDegree)/m2
}

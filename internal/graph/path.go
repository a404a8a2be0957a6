package graph

// ShortestPath returns the shortest undirected path from source to target
// (§4.8 Path), inclusive of both endpoints, or nil if no path exists.
func (g *Graph) ShortestPath(source, target string) []string {
	if source == target {
		return []string{source}
	}
	visited := map[string]bool{source: true}
	prev := map[string]string{}
	queue := []string{source}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range g.neighbors(current) {
			if visited[n] {
				continue
			}
			visited[n] = true
			prev[n] = current
			if n == target {
				return reconstructPath(prev, source, target)
			}
			queue = append(queue, n)
		}
	}
	return nil
}

func reconstructPath(prev map[string]string, source, target string) []string {
	path := []string{target}
	for path[len(path)-1] != source {
		path = append(path, prev[path[len(path)-1]])
	}
	// reverse in place
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// ShortestPathLength returns the undirected hop distance from source to
// target, or -1 if unreachable. Used by reweave's graph signal (inverse
// shortest-path distance, §4.7).
func (g *Graph) ShortestPathLength(source, target string) int {
	path := g.ShortestPath(source, target)
	if path == nil {
		return -1
	}
	return len(path) - 1
}

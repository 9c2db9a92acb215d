package shortestpath

import (
	"container/heap"
	"sort"

	"taskmesh/pkg/domain"
)

// =============================================================================
// Betweenness Centrality (Brandes, weighted)
// =============================================================================
//
// Betweenness counts, for each vertex, the fraction of pairwise shortest
// paths passing through it. Leader election ranks the members of a group by
// betweenness computed on the group's induced subgraph, so the computation
// here is restricted to an explicit vertex subset: edges to vertices outside
// the subset are ignored.
//
// Time Complexity: O(V*E + V^2 log V) on the induced subgraph
//
// References:
//   - Brandes, U. (2001). "A faster algorithm for betweenness centrality"
// =============================================================================

// Betweenness computes exact weighted betweenness centrality on the subgraph
// induced by members. Vertices of members missing from the graph score 0.
// The result maps every member id to its score.
func Betweenness(g *domain.Graph, members []int) map[int]float64 {
	inSet := make(map[int]bool, len(members))
	for _, id := range members {
		inSet[id] = true
	}

	ordered := make([]int, len(members))
	copy(ordered, members)
	sort.Ints(ordered)

	score := make(map[int]float64, len(members))
	for _, id := range ordered {
		score[id] = 0
	}

	for _, source := range ordered {
		if !g.HasVertex(source) {
			continue
		}
		accumulate(g, inSet, source, score)
	}

	// Undirected graph: every pair is counted from both endpoints
	for id := range score {
		score[id] /= 2
	}
	return score
}

// accumulate runs one Brandes phase from source: a Dijkstra traversal that
// tracks shortest-path counts and predecessor lists, then a reverse sweep
// accumulating pair dependencies.
func accumulate(g *domain.Graph, inSet map[int]bool, source int, score map[int]float64) {
	dist := make(map[int]float64)
	sigma := make(map[int]float64)
	pred := make(map[int][]int)
	var stack []int

	dist[source] = 0
	sigma[source] = 1

	pq := make(priorityQueue, 0)
	heap.Init(&pq)
	heap.Push(&pq, &priorityQueueItem{node: source, distance: 0})

	settled := make(map[int]bool)

	for pq.Len() > 0 {
		current := heap.Pop(&pq).(*priorityQueueItem)
		u := current.node
		if settled[u] {
			continue
		}
		if current.distance > dist[u]+domain.Epsilon {
			continue
		}
		settled[u] = true
		stack = append(stack, u)

		for _, v := range g.Neighbors(u) {
			if !inSet[v] {
				continue
			}
			w, ok := g.Weight(u, v)
			if !ok {
				continue
			}
			newDist := dist[u] + w

			old, seen := dist[v]
			switch {
			case !seen || newDist < old-domain.Epsilon:
				dist[v] = newDist
				sigma[v] = sigma[u]
				pred[v] = append(pred[v][:0], u)
				heap.Push(&pq, &priorityQueueItem{node: v, distance: newDist})
			case domain.FloatEquals(newDist, old):
				sigma[v] += sigma[u]
				pred[v] = append(pred[v], u)
			}
		}
	}

	// Reverse sweep: dependency accumulation
	delta := make(map[int]float64, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		wv := stack[i]
		for _, u := range pred[wv] {
			delta[u] += sigma[u] / sigma[wv] * (1 + delta[wv])
		}
		if wv != source {
			score[wv] += delta[wv]
		}
	}
}

// Package shortestpath provides distance and path queries over the weighted
// undirected agent network, plus betweenness centrality restricted to an
// induced vertex subset.
//
// # Determinism
//
// All traversals iterate vertices and neighbors in ascending id order and
// break priority-queue ties by id, so repeated queries over the same graph
// produce identical results.
//
// # Caching
//
// The Oracle caches one single-source Dijkstra result per requested source.
// The cache is owned by the Oracle for the duration of a single run; the
// underlying graph must not change after construction.
package shortestpath

import (
	"container/heap"

	"taskmesh/pkg/domain"
)

// priorityQueueItem represents an element in the priority queue.
type priorityQueueItem struct {
	node     int
	distance float64
	index    int
}

// priorityQueue implements heap.Interface.
// It is a min-heap based on distance, with tie-breaking by node id for
// deterministic ordering.
type priorityQueue []*priorityQueueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].distance != pq[j].distance {
		return pq[i].distance < pq[j].distance
	}
	return pq[i].node < pq[j].node
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	n := len(*pq)
	item := x.(*priorityQueueItem)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // Avoid memory leak
	item.index = -1
	*pq = old[0 : n-1]
	return item
}

// sourceResult holds one cached single-source computation.
type sourceResult struct {
	dist   map[int]float64
	parent map[int]int
}

// Oracle answers Dist and Path queries over an immutable graph.
type Oracle struct {
	g     *domain.Graph
	cache map[int]*sourceResult
}

// NewOracle creates an oracle over the given graph.
func NewOracle(g *domain.Graph) *Oracle {
	return &Oracle{
		g:     g,
		cache: make(map[int]*sourceResult),
	}
}

// Dist returns the shortest-path weight between u and v, or Infinity when
// v is unreachable from u. Dist(u, u) is 0 even for isolated vertices.
func (o *Oracle) Dist(u, v int) float64 {
	if u == v {
		return 0
	}
	res := o.fromSource(u)
	if d, ok := res.dist[v]; ok {
		return d
	}
	return domain.Infinity
}

// Path returns the shortest path from u to v inclusive, or nil when v is
// unreachable. Callers treat nil as "skip this pair".
func (o *Oracle) Path(u, v int) []int {
	if u == v {
		return []int{u}
	}
	res := o.fromSource(u)
	if d, ok := res.dist[v]; !ok || domain.IsInf(d) {
		return nil
	}

	var reversed []int
	for at := v; at != -1; at = res.parent[at] {
		reversed = append(reversed, at)
	}
	path := make([]int, len(reversed))
	for i, node := range reversed {
		path[len(reversed)-1-i] = node
	}
	return path
}

// Precompute runs Dijkstra from every vertex once. Betweenness and the
// migration engines issue many distance queries; on dense batches it is
// cheaper to fill the cache upfront.
func (o *Oracle) Precompute() {
	for _, v := range o.g.Vertices() {
		o.fromSource(v)
	}
}

// fromSource returns the cached single-source result, computing it on demand.
func (o *Oracle) fromSource(source int) *sourceResult {
	if res, ok := o.cache[source]; ok {
		return res
	}
	res := dijkstra(o.g, source)
	o.cache[source] = res
	return res
}

// dijkstra computes shortest paths from source over the whole graph.
// Vertices absent from the graph yield an empty result: every query against
// it reports unreachable.
func dijkstra(g *domain.Graph, source int) *sourceResult {
	res := &sourceResult{
		dist:   make(map[int]float64),
		parent: make(map[int]int),
	}
	if !g.HasVertex(source) {
		return res
	}

	for _, v := range g.Vertices() {
		res.dist[v] = domain.Infinity
		res.parent[v] = -1
	}
	res.dist[source] = 0

	pq := make(priorityQueue, 0, g.VertexCount())
	heap.Init(&pq)
	heap.Push(&pq, &priorityQueueItem{node: source, distance: 0})

	for pq.Len() > 0 {
		current := heap.Pop(&pq).(*priorityQueueItem)
		u := current.node

		// Skip stale entries (already processed with a better distance)
		if current.distance > res.dist[u]+domain.Epsilon {
			continue
		}

		for _, v := range g.Neighbors(u) {
			w, ok := g.Weight(u, v)
			if !ok {
				continue
			}
			newDist := res.dist[u] + w
			if newDist < res.dist[v]-domain.Epsilon {
				res.dist[v] = newDist
				res.parent[v] = u
				heap.Push(&pq, &priorityQueueItem{node: v, distance: newDist})
			}
		}
	}

	return res
}

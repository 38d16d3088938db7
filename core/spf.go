package core

import (
	"container/heap"
	"math"
	"slices"

	"github.com/Hayser8/laboratorio3redes/state"
)

type spfItem struct {
	node state.Node
	dist float64
}

// spfQueue orders by distance, breaking ties by node id so that the result
// is reproducible for a fixed graph.
type spfQueue []spfItem

func (q spfQueue) Len() int { return len(q) }
func (q spfQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].node < q[j].node
}
func (q spfQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *spfQueue) Push(x any)   { *q = append(*q, x.(spfItem)) }
func (q *spfQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// edgeWeight treats an unmeasured or degenerate cost as a single hop so that
// a freshly discovered link is usable before its first probe completes.
func edgeWeight(w float64) float64 {
	if w <= 0 {
		return 1
	}
	return w
}

// shortestPaths runs single-source Dijkstra over the undirected graph.
// Neighbours are relaxed in lexicographic order; the first predecessor found
// at equal cost wins, so repeated runs yield identical results.
func shortestPaths(g state.Graph, src state.Node) (map[state.Node]float64, map[state.Node]state.Node) {
	dist := make(map[state.Node]float64, len(g))
	prev := make(map[state.Node]state.Node)
	for v := range g {
		dist[v] = math.Inf(1)
	}
	dist[src] = 0

	visited := make(map[state.Node]bool)
	pq := &spfQueue{{node: src, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		it := heap.Pop(pq).(spfItem)
		u := it.node
		if visited[u] {
			continue
		}
		visited[u] = true

		neighbours := make([]state.Node, 0, len(g[u]))
		for v := range g[u] {
			neighbours = append(neighbours, v)
		}
		slices.Sort(neighbours)

		for _, v := range neighbours {
			nd := it.dist + edgeWeight(g[u][v])
			if nd < dist[v] {
				dist[v] = nd
				prev[v] = u
				heap.Push(pq, spfItem{node: v, dist: nd})
			}
		}
	}
	return dist, prev
}

// walkPath reconstructs [src ... dst] from the predecessor map, or nil when
// dst is unreachable.
func walkPath(prev map[state.Node]state.Node, src, dst state.Node) []state.Node {
	if src == dst {
		return []state.Node{src}
	}
	path := []state.Node{dst}
	cur := dst
	for cur != src {
		p, ok := prev[cur]
		if !ok {
			return nil
		}
		path = append(path, p)
		cur = p
	}
	slices.Reverse(path)
	return path
}

// nextHopTable derives the forwarding table: for every reachable destination,
// the first router on the shortest path from src and the total path cost.
// Unreachable destinations are simply absent.
func nextHopTable(g state.Graph, src state.Node) (map[state.Node]state.NextHop, map[state.Node]state.Node) {
	dist, prev := shortestPaths(g, src)
	table := make(map[state.Node]state.NextHop)
	for dst, d := range dist {
		if dst == src || math.IsInf(d, 1) {
			continue
		}
		path := walkPath(prev, src, dst)
		if len(path) < 2 {
			continue
		}
		table[dst] = state.NextHop{Via: path[1], Cost: d}
	}
	return table, prev
}

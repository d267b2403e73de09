package graph

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// Cycles returns every simple cycle in g.
//
// Enumeration is Johnson's algorithm: for each start vertex s in sorted
// order, find the strongly connected component holding the least vertex
// of the subgraph induced by {s, ...}, and enumerate the circuits through
// it. Each cycle therefore starts at its smallest node, and rotations are
// never reported twice. Self-loops are ignored. The result is sorted and
// does not depend on insertion order.
func (g *Graph) Cycles() []Cycle {
	cycles, _ := g.CyclesWithLimit(0)
	return cycles
}

// CyclesWithLimit is Cycles with an upper bound on the number of cycles
// returned; truncated reports whether enumeration stopped early. A limit
// <= 0 means no bound.
func (g *Graph) CyclesWithLimit(limit int) (cycles []Cycle, truncated bool) {
	names := g.Nodes()
	adj := g.indexedAdjacency(names)

	cycles = make([]Cycle, 0)
	for s := 0; s < len(names); s++ {
		comp, least := leastComponent(adj, s)
		if comp == nil {
			break
		}
		j := &johnson{
			names:   names,
			adj:     adj,
			comp:    comp,
			start:   least,
			blocked: roaring.New(),
			b:       make(map[int]*roaring.Bitmap),
			limit:   limit,
			found:   len(cycles),
		}
		j.circuit(least)
		cycles = append(cycles, j.result...)
		if j.done {
			truncated = true
			break
		}
		s = least
	}

	slices.SortFunc(cycles, func(a, b Cycle) int {
		return slices.Compare(a, b)
	})
	return cycles, truncated
}

// HasCycle reports whether g contains a cycle of two or more nodes.
func (g *Graph) HasCycle() bool {
	names := g.Nodes()
	comp, _ := leastComponent(g.indexedAdjacency(names), 0)
	return comp != nil
}

// indexedAdjacency maps g onto indices of the sorted names, dropping self-loops.
func (g *Graph) indexedAdjacency(names []string) [][]int {
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}
	adj := make([][]int, len(names))
	for i, n := range names {
		for _, m := range g.Successors(n) {
			if m == n {
				continue
			}
			adj[i] = append(adj[i], index[m])
		}
	}
	return adj
}

// leastComponent runs Tarjan's algorithm on the subgraph induced by the
// vertices >= s and returns the non-trivial strongly connected component
// containing the smallest vertex, or nil if there is none.
func leastComponent(adj [][]int, s int) (*roaring.Bitmap, int) {
	t := &tarjan{
		adj:     adj,
		min:     s,
		index:   make(map[int]int),
		lowlink: make(map[int]int),
		onStack: roaring.New(),
		least:   -1,
	}
	for v := s; v < len(adj); v++ {
		if _, seen := t.index[v]; !seen {
			t.strongconnect(v)
		}
	}
	return t.best, t.least
}

type tarjan struct {
	adj     [][]int
	min     int
	next    int
	index   map[int]int
	lowlink map[int]int
	stack   []int
	onStack *roaring.Bitmap

	best  *roaring.Bitmap
	least int
}

func (t *tarjan) strongconnect(v int) {
	t.index[v] = t.next
	t.lowlink[v] = t.next
	t.next++
	t.stack = append(t.stack, v)
	t.onStack.Add(uint32(v))

	for _, w := range t.adj[v] {
		if w < t.min {
			continue
		}
		if _, seen := t.index[w]; !seen {
			t.strongconnect(w)
			t.lowlink[v] = min(t.lowlink[v], t.lowlink[w])
		} else if t.onStack.Contains(uint32(w)) {
			t.lowlink[v] = min(t.lowlink[v], t.index[w])
		}
	}

	if t.lowlink[v] != t.index[v] {
		return
	}

	comp := roaring.New()
	for {
		w := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack.Remove(uint32(w))
		comp.Add(uint32(w))
		if w == v {
			break
		}
	}
	if comp.GetCardinality() < 2 {
		return
	}
	if least := int(comp.Minimum()); t.best == nil || least < t.least {
		t.best = comp
		t.least = least
	}
}

// johnson enumerates the circuits through start inside comp.
type johnson struct {
	names   []string
	adj     [][]int
	comp    *roaring.Bitmap
	start   int
	blocked *roaring.Bitmap
	b       map[int]*roaring.Bitmap
	stack   []int
	result  []Cycle

	limit int
	found int
	done  bool
}

func (j *johnson) circuit(v int) bool {
	f := false
	j.stack = append(j.stack, v)
	j.blocked.Add(uint32(v))

	for _, w := range j.adj[v] {
		if j.done {
			break
		}
		if !j.comp.Contains(uint32(w)) {
			continue
		}
		if w == j.start {
			j.emit()
			f = true
		} else if !j.blocked.Contains(uint32(w)) {
			if j.circuit(w) {
				f = true
			}
		}
	}

	if f {
		j.unblock(v)
	} else {
		for _, w := range j.adj[v] {
			if !j.comp.Contains(uint32(w)) {
				continue
			}
			bs, ok := j.b[w]
			if !ok {
				bs = roaring.New()
				j.b[w] = bs
			}
			bs.Add(uint32(v))
		}
	}
	j.stack = j.stack[:len(j.stack)-1]
	return f
}

func (j *johnson) unblock(u int) {
	j.blocked.Remove(uint32(u))
	bs, ok := j.b[u]
	if !ok {
		return
	}
	for !bs.IsEmpty() {
		w := bs.Minimum()
		bs.Remove(w)
		if j.blocked.Contains(w) {
			j.unblock(int(w))
		}
	}
}

func (j *johnson) emit() {
	c := make(Cycle, len(j.stack))
	for i, v := range j.stack {
		c[i] = j.names[v]
	}
	j.result = append(j.result, c)
	j.found++
	if j.limit > 0 && j.found >= j.limit {
		j.done = true
	}
}

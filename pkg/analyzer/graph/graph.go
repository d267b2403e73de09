// Package graph holds the file-to-import dependency graph and finds
// circular dependencies in it.
package graph

import (
	"sort"
	"sync"
)

// Graph is a directed graph over bare strings: an adjacency map from
// node to its set of successors.
//
// Nodes are not normalized. A unit path such as "pkg/a.py" and an imported
// name such as "a" are different nodes, so a cycle across files is only
// found when one file's path string equals another file's import name
// byte for byte. Resolving imports to files is out of scope.
//
// A Graph is not safe for concurrent mutation; use a Builder.
type Graph struct {
	adj        map[string]map[string]struct{}
	files      map[string]bool
	imported   map[string]bool
	insertions int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		adj:      make(map[string]map[string]struct{}),
		files:    make(map[string]bool),
		imported: make(map[string]bool),
	}
}

// AddNode adds n with no edges. Adding an existing node is a no-op.
func (g *Graph) AddNode(n string) {
	if _, ok := g.adj[n]; !ok {
		g.adj[n] = make(map[string]struct{})
	}
}

// AddEdge records from -> to. Repeated insertions of the same pair are
// counted by Insertions but stored once.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.adj[from][to] = struct{}{}
	g.imported[to] = true
	g.insertions++
}

// AddUnit adds path as a file node and one edge per imported name.
// A unit without imports still becomes a node.
func (g *Graph) AddUnit(path string, names []string) {
	g.AddNode(path)
	g.files[path] = true
	for _, name := range names {
		g.AddEdge(path, name)
	}
}

// Has reports whether n is a node.
func (g *Graph) Has(n string) bool {
	_, ok := g.adj[n]
	return ok
}

// HasEdge reports whether from -> to exists.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.adj[from][to]
	return ok
}

// Kind reports whether n was added as a unit path, an imported name or both.
func (g *Graph) Kind(n string) NodeKind {
	switch {
	case g.files[n] && g.imported[n]:
		return NodeBoth
	case g.files[n]:
		return NodeFile
	default:
		return NodeImport
	}
}

// Nodes returns all nodes in sorted order.
func (g *Graph) Nodes() []string {
	nodes := make([]string, 0, len(g.adj))
	for n := range g.adj {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

// Successors returns the sorted successors of n.
func (g *Graph) Successors(n string) []string {
	succ := make([]string, 0, len(g.adj[n]))
	for m := range g.adj[n] {
		succ = append(succ, m)
	}
	sort.Strings(succ)
	return succ
}

// Edges returns every distinct edge sorted by (From, To).
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.EdgeCount())
	for _, from := range g.Nodes() {
		for _, to := range g.Successors(from) {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	return edges
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.adj)
}

// EdgeCount returns the number of distinct (from, to) pairs.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, succ := range g.adj {
		n += len(succ)
	}
	return n
}

// Insertions returns the number of AddEdge calls, duplicates included.
func (g *Graph) Insertions() int {
	return g.insertions
}

// FileCount returns the number of nodes added as unit paths.
func (g *Graph) FileCount() int {
	return len(g.files)
}

// Clone returns a deep copy.
func (g *Graph) Clone() *Graph {
	c := New()
	for n, succ := range g.adj {
		cs := make(map[string]struct{}, len(succ))
		for m := range succ {
			cs[m] = struct{}{}
		}
		c.adj[n] = cs
	}
	for n := range g.files {
		c.files[n] = true
	}
	for n := range g.imported {
		c.imported[n] = true
	}
	c.insertions = g.insertions
	return c
}

// Snapshot returns a serializable copy with degrees, nodes sorted.
func (g *Graph) Snapshot() *DependencyGraph {
	in := make(map[string]int, len(g.adj))
	for _, succ := range g.adj {
		for m := range succ {
			in[m]++
		}
	}
	dg := &DependencyGraph{
		Nodes: make([]Node, 0, len(g.adj)),
		Edges: g.Edges(),
	}
	for _, n := range g.Nodes() {
		dg.Nodes = append(dg.Nodes, Node{
			ID:        n,
			Kind:      g.Kind(n),
			InDegree:  in[n],
			OutDegree: len(g.adj[n]),
		})
	}
	return dg
}

// Builder accumulates edges from concurrent producers.
type Builder struct {
	mu sync.Mutex
	g  *Graph
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{g: New()}
}

// AddEdge records from -> to.
func (b *Builder) AddEdge(from, to string) {
	b.mu.Lock()
	b.g.AddEdge(from, to)
	b.mu.Unlock()
}

// AddUnit adds path and one edge per name, atomically.
func (b *Builder) AddUnit(path string, names []string) {
	b.mu.Lock()
	b.g.AddUnit(path, names)
	b.mu.Unlock()
}

// Graph returns a copy of the graph built so far. Call it after every
// producer has finished; later insertions do not affect the copy.
func (b *Builder) Graph() *Graph {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.g.Clone()
}

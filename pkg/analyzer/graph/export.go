package graph

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// gonumNode carries a node name through gonum graph types.
type gonumNode struct {
	id      int64
	name    string
	kind    NodeKind
	onCycle bool
}

func (n gonumNode) ID() int64 { return n.id }

// DOTID implements dot.Node.
func (n gonumNode) DOTID() string { return n.name }

// Attributes implements encoding.Attributer.
func (n gonumNode) Attributes() []encoding.Attribute {
	shape := "ellipse"
	if n.kind != NodeImport {
		shape = "box"
	}
	attrs := []encoding.Attribute{{Key: "shape", Value: shape}}
	if n.onCycle {
		attrs = append(attrs, encoding.Attribute{Key: "color", Value: "red"})
	}
	return attrs
}

// gonumGraph pairs directed and undirected views of a Graph. Node IDs are
// indices into the sorted node names.
type gonumGraph struct {
	directed   *simple.DirectedGraph
	undirected *simple.UndirectedGraph
	nodes      []gonumNode
	selfLoops  int
}

// toGonumGraph converts g to gonum graph types. gonum simple graphs do not
// support self-loops, so they are counted and dropped.
func (g *Graph) toGonumGraph(onCycle map[string]bool) *gonumGraph {
	names := g.Nodes()
	gg := &gonumGraph{
		directed:   simple.NewDirectedGraph(),
		undirected: simple.NewUndirectedGraph(),
		nodes:      make([]gonumNode, len(names)),
	}
	index := make(map[string]int64, len(names))
	for i, name := range names {
		n := gonumNode{id: int64(i), name: name, kind: g.Kind(name), onCycle: onCycle[name]}
		gg.nodes[i] = n
		index[name] = n.id
		gg.directed.AddNode(n)
		gg.undirected.AddNode(n)
	}

	for _, e := range g.Edges() {
		if e.From == e.To {
			gg.selfLoops++
			continue
		}
		from, to := gg.nodes[index[e.From]], gg.nodes[index[e.To]]
		gg.directed.SetEdge(simple.Edge{F: from, T: to})
		if !gg.undirected.HasEdgeBetween(from.id, to.id) {
			gg.undirected.SetEdge(simple.Edge{F: from, T: to})
		}
	}
	return gg
}

// Summarize computes aggregate statistics. cycles is the result of
// Cycles on the same graph.
func (g *Graph) Summarize(cycles []Cycle) Summary {
	gg := g.toGonumGraph(nil)
	n := g.NodeCount()
	e := g.EdgeCount()

	s := Summary{
		TotalNodes: n,
		FileNodes:  g.FileCount(),
		TotalEdges: e,
		Insertions: g.Insertions(),
		SelfLoops:  gg.selfLoops,
		CycleCount: len(cycles),
	}
	if n > 0 {
		s.AvgDegree = float64(e) / float64(n)
	}
	if n > 1 {
		s.Density = float64(e) / float64(n*(n-1))
	}

	sccs := topo.TarjanSCC(gg.directed)
	s.StronglyConnectedComponents = len(sccs)
	for _, scc := range sccs {
		if len(scc) < 2 {
			continue
		}
		for _, node := range scc {
			s.CycleNodes = append(s.CycleNodes, gg.nodes[node.ID()].name)
		}
	}
	sort.Strings(s.CycleNodes)
	s.IsCyclic = len(s.CycleNodes) > 0

	components := topo.ConnectedComponents(gg.undirected)
	s.Components = len(components)
	for _, c := range components {
		if len(c) > s.LargestComponent {
			s.LargestComponent = len(c)
		}
	}

	return s
}

// DOT renders g in graphviz DOT syntax. File nodes are boxes, imported
// names are ellipses, nodes on a cycle are red. Self-loops are omitted.
func (g *Graph) DOT(name string, cycles []Cycle) ([]byte, error) {
	gg := g.toGonumGraph(cycleNodeSet(cycles))
	out, err := dot.Marshal(gg.directed, name, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal dot: %w", err)
	}
	return out, nil
}

// Mermaid renders g as a Mermaid flowchart. Node IDs are positional
// ("n0", "n1", ...) so that distinct names never collide.
func (g *Graph) Mermaid(opts MermaidOptions, cycles []Cycle) string {
	var b strings.Builder
	direction := opts.Direction
	if direction == "" {
		direction = DirectionTD
	}
	b.WriteString("graph " + string(direction) + "\n")

	names := g.Nodes()
	if opts.MaxNodes > 0 && len(names) > opts.MaxNodes {
		names = names[:opts.MaxNodes]
	}
	ids := make(map[string]string, len(names))
	for i, name := range names {
		ids[name] = fmt.Sprintf("n%d", i)
	}

	onCycle := cycleNodeSet(cycles)
	for _, name := range names {
		label := EscapeMermaidLabel(name)
		if g.Kind(name) == NodeImport {
			fmt.Fprintf(&b, "    %s([\"%s\"])\n", ids[name], label)
		} else {
			fmt.Fprintf(&b, "    %s[\"%s\"]\n", ids[name], label)
		}
	}

	edges := 0
	for _, e := range g.Edges() {
		if opts.MaxEdges > 0 && edges >= opts.MaxEdges {
			break
		}
		from, okFrom := ids[e.From]
		to, okTo := ids[e.To]
		if !okFrom || !okTo {
			continue
		}
		fmt.Fprintf(&b, "    %s --> %s\n", from, to)
		edges++
	}

	if opts.HighlightCycles && len(onCycle) > 0 {
		b.WriteString("    classDef cycle stroke:#d33,stroke-width:2px\n")
		for _, name := range names {
			if onCycle[name] {
				fmt.Fprintf(&b, "    class %s cycle\n", ids[name])
			}
		}
	}

	return b.String()
}

func cycleNodeSet(cycles []Cycle) map[string]bool {
	set := make(map[string]bool)
	for _, c := range cycles {
		for _, n := range c {
			set[n] = true
		}
	}
	return set
}

package graph

import "strings"

// NodeKind tells where a node string came from. A string that is both a
// unit path and an imported name is NodeBoth.
type NodeKind string

const (
	NodeFile   NodeKind = "file"
	NodeImport NodeKind = "import"
	NodeBoth   NodeKind = "file+import"
)

// String returns the string representation.
func (k NodeKind) String() string {
	return string(k)
}

// Node is one vertex of an exported graph.
type Node struct {
	ID        string   `json:"id" toon:"id"`
	Kind      NodeKind `json:"kind" toon:"kind"`
	InDegree  int      `json:"in_degree" toon:"in_degree"`
	OutDegree int      `json:"out_degree" toon:"out_degree"`
}

// Edge is a dependency "From imports To". To is the literal imported name.
type Edge struct {
	From string `json:"from" toon:"from"`
	To   string `json:"to" toon:"to"`
}

// Cycle is a simple cycle of at least two distinct nodes. The first node
// is the lexicographically smallest; the edge back to it is implied.
type Cycle []string

// String renders the cycle closed, e.g. "a -> b -> a".
func (c Cycle) String() string {
	if len(c) == 0 {
		return ""
	}
	return strings.Join(c, " -> ") + " -> " + c[0]
}

// Contains reports whether node is on the cycle.
func (c Cycle) Contains(node string) bool {
	for _, n := range c {
		if n == node {
			return true
		}
	}
	return false
}

// DependencyGraph is a serializable snapshot of a Graph.
type DependencyGraph struct {
	Nodes []Node `json:"nodes" toon:"nodes"`
	Edges []Edge `json:"edges" toon:"edges"`
}

// Summary provides aggregate graph statistics.
type Summary struct {
	TotalNodes                  int      `json:"total_nodes" toon:"total_nodes"`
	FileNodes                   int      `json:"file_nodes" toon:"file_nodes"`
	TotalEdges                  int      `json:"total_edges" toon:"total_edges"`
	Insertions                  int      `json:"insertions" toon:"insertions"`
	SelfLoops                   int      `json:"self_loops,omitempty" toon:"self_loops,omitempty"`
	AvgDegree                   float64  `json:"avg_degree" toon:"avg_degree"`
	Density                     float64  `json:"density" toon:"density"`
	Components                  int      `json:"components" toon:"components"`
	LargestComponent            int      `json:"largest_component" toon:"largest_component"`
	StronglyConnectedComponents int      `json:"strongly_connected_components" toon:"strongly_connected_components"`
	CycleCount                  int      `json:"cycle_count" toon:"cycle_count"`
	CycleNodes                  []string `json:"cycle_nodes,omitempty" toon:"cycle_nodes,omitempty"`
	IsCyclic                    bool     `json:"is_cyclic" toon:"is_cyclic"`
}

// MermaidOptions configures Mermaid diagram generation.
type MermaidOptions struct {
	MaxNodes        int              `json:"max_nodes" toon:"max_nodes"`
	MaxEdges        int              `json:"max_edges" toon:"max_edges"`
	// HighlightCycles styles nodes that sit on a cycle.
	HighlightCycles bool             `json:"highlight_cycles" toon:"highlight_cycles"`
	Direction       MermaidDirection `json:"direction" toon:"direction"`
}

// MermaidDirection specifies the graph direction.
type MermaidDirection string

const (
	DirectionTD MermaidDirection = "TD" // Top-down
	DirectionLR MermaidDirection = "LR" // Left-right
	DirectionBT MermaidDirection = "BT" // Bottom-top
	DirectionRL MermaidDirection = "RL" // Right-left
)

// DefaultMermaidOptions returns sensible defaults.
func DefaultMermaidOptions() MermaidOptions {
	return MermaidOptions{
		MaxNodes:        200,
		MaxEdges:        500,
		HighlightCycles: true,
		Direction:       DirectionLR,
	}
}

// EscapeMermaidLabel escapes special characters in labels for Mermaid.
func EscapeMermaidLabel(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '&':
			b.WriteString("&amp;")
		case '"':
			b.WriteString("&quot;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '|':
			b.WriteString("&#124;")
		case '[':
			b.WriteString("&#91;")
		case ']':
			b.WriteString("&#93;")
		case '{':
			b.WriteString("&#123;")
		case '}':
			b.WriteString("&#125;")
		case '\n':
			b.WriteString("<br/>")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

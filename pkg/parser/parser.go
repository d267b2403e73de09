// Package parser wraps tree-sitter for parsing Python source units.
package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Parser wraps a tree-sitter parser configured for Python.
// A Parser is not safe for concurrent use; give each goroutine its own.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed AST and metadata.
type ParseResult struct {
	Tree   *sitter.Tree
	Source []byte
	Path   string
}

// Root returns the root node of the parse tree.
func (r *ParseResult) Root() *sitter.Node {
	return r.Tree.RootNode()
}

// Close releases the tree.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
	}
}

// ParseError reports a source unit that is not syntactically valid.
// Line and Column are 1-based and point at the first offending node.
type ParseError struct {
	Path   string
	Line   uint32
	Column uint32
	// Reason names the rejected construct when it is known.
	Reason string
}

func (e *ParseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s:%d:%d: invalid syntax: %s", e.Path, e.Line, e.Column, e.Reason)
	}
	return fmt.Sprintf("%s:%d:%d: invalid syntax", e.Path, e.Line, e.Column)
}

// New creates a new parser instance.
func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{parser: p}
}

// Parse parses source code and fails with a *ParseError if the tree
// contains syntax errors or constructs the grammar tolerates but Python 3
// rejects. No partial tree is returned in that case.
func (p *Parser) Parse(ctx context.Context, source []byte, path string) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	root := tree.RootNode()
	if root.HasError() {
		perr := &ParseError{Path: path, Line: root.StartPoint().Row + 1, Column: root.StartPoint().Column + 1}
		if bad := firstErrorNode(root); bad != nil {
			perr.Line = bad.StartPoint().Row + 1
			perr.Column = bad.StartPoint().Column + 1
		}
		tree.Close()
		return nil, perr
	}
	if bad := findRejection(root, source); bad != nil {
		tree.Close()
		return nil, &ParseError{
			Path:   path,
			Line:   bad.node.StartPoint().Row + 1,
			Column: bad.node.StartPoint().Column + 1,
			Reason: bad.reason,
		}
	}

	return &ParseResult{
		Tree:   tree,
		Source: source,
		Path:   path,
	}, nil
}

// firstErrorNode returns the first ERROR or MISSING node in document order.
func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := range int(node.ChildCount()) {
		if bad := firstErrorNode(node.Child(i)); bad != nil {
			return bad
		}
	}
	return node
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// NodeVisitor is a function that visits AST nodes.
// Returning false skips the node's children.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// TypedNodeVisitor visits AST nodes with pre-cached node type to avoid CGO overhead.
type TypedNodeVisitor func(node *sitter.Node, nodeType string, source []byte) bool

// Walk traverses the AST in pre-order calling visitor for each node.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}

	if !visitor(node, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), source, visitor)
	}
}

// WalkTyped traverses the AST with cached node types to reduce CGO overhead.
func WalkTyped(node *sitter.Node, source []byte, visitor TypedNodeVisitor) {
	if node == nil {
		return
	}

	nodeType := node.Type()
	if !visitor(node, nodeType, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		WalkTyped(node.Child(i), source, visitor)
	}
}

// FindNodesByType returns all nodes of a specific type in pre-order.
func FindNodesByType(root *sitter.Node, source []byte, nodeType string) []*sitter.Node {
	var results []*sitter.Node
	WalkTyped(root, source, func(node *sitter.Node, t string, _ []byte) bool {
		if t == nodeType {
			results = append(results, node)
		}
		return true
	})
	return results
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// SameNode reports whether a and b cover the same source span with the same type.
func SameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

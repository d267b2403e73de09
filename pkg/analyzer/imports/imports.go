// Package imports extracts the names referenced by Python import statements.
package imports

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/wisegam/codesleuth/pkg/analyzer"
	"github.com/wisegam/codesleuth/pkg/parser"
)

// Ensure Analyzer implements analyzer.ParsedAnalyzer.
var _ analyzer.ParsedAnalyzer[[]string] = (*Analyzer)(nil)

// Wildcard is emitted for "from m import *".
const Wildcard = "*"

// Analyzer extracts imported names from Python source.
type Analyzer struct{}

// New creates a new import extractor.
func New() *Analyzer {
	return &Analyzer{}
}

// AnalyzeParsed extracts names from an already parsed unit.
func (a *Analyzer) AnalyzeParsed(result *parser.ParseResult) []string {
	return Extract(result)
}

var importTypes = map[string]bool{
	"import_statement":        true,
	"import_from_statement":   true,
	"future_import_statement": true,
}

// Extract returns every imported name in occurrence order. Duplicates are
// kept. Statements nested in functions or conditionals are included.
//
//	import a.b as c          -> a.b
//	from m import x, y as z  -> x, y
//	from m import *          -> *
//	from __future__ import annotations -> annotations
func Extract(result *parser.ParseResult) []string {
	names := make([]string, 0)

	parser.WalkTyped(result.Root(), result.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if !importTypes[nodeType] {
			return true
		}
		names = append(names, statementNames(n, src)...)
		return false
	})

	return names
}

// statementNames lists the names one import statement binds. The source
// module of a from-import is not a name.
func statementNames(stmt *sitter.Node, source []byte) []string {
	module := stmt.ChildByFieldName("module_name")

	var names []string
	for i := range int(stmt.NamedChildCount()) {
		child := stmt.NamedChild(i)
		if module != nil && parser.SameNode(child, module) {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			names = append(names, dottedText(child, source))
		case "aliased_import":
			names = append(names, dottedText(child.ChildByFieldName("name"), source))
		case "wildcard_import":
			names = append(names, Wildcard)
		}
	}
	return names
}

// dottedText returns a dotted name without interior whitespace or
// line continuations.
func dottedText(node *sitter.Node, source []byte) string {
	text := parser.GetNodeText(node, source)
	text = strings.ReplaceAll(text, "\\", "")
	return strings.Join(strings.Fields(text), "")
}

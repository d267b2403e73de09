// Package complexity scores the cyclomatic complexity of Python functions.
package complexity

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/wisegam/codesleuth/pkg/analyzer"
	"github.com/wisegam/codesleuth/pkg/parser"
)

// Ensure Analyzer implements analyzer.ParsedAnalyzer.
var _ analyzer.ParsedAnalyzer[[]FunctionRecord] = (*Analyzer)(nil)

// Analyzer computes cyclomatic complexity per function.
type Analyzer struct{}

// New creates a new complexity analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// AnalyzeParsed scores an already parsed unit.
func (a *Analyzer) AnalyzeParsed(result *parser.ParseResult) []FunctionRecord {
	return Score(result)
}

// Score returns one record per function definition in result, in
// declaration (pre-order) order. Methods, async and nested functions are
// included; lambdas are not.
func Score(result *parser.ParseResult) []FunctionRecord {
	records := make([]FunctionRecord, 0)

	parser.WalkTyped(result.Root(), result.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if nodeType != "function_definition" {
			return true
		}
		name := parser.GetNodeText(n.ChildByFieldName("name"), src)
		records = append(records, FunctionRecord{
			Name:          name,
			QualifiedName: qualifiedName(n, name, src),
			Path:          result.Path,
			Line:          n.StartPoint().Row + 1,
			EndLine:       n.EndPoint().Row + 1,
			Async:         isAsync(n),
			Score:         1 + CountDecisionPoints(n.ChildByFieldName("body"), src),
		})
		// Keep descending: nested definitions get their own records.
		return true
	})

	return records
}

// decisionTypes are node types that add one path each. else and finally
// clauses are absent: they do not branch.
var decisionTypes = makeSet([]string{
	"if_statement",
	"elif_clause",
	"conditional_expression",
	"for_statement",
	"while_statement",
	"except_clause",
	"except_group_clause",
	"case_clause",
	"if_clause", // comprehension filter
})

// CountDecisionPoints counts decision points below node without entering
// nested function definitions. Lambdas are entered.
func CountDecisionPoints(node *sitter.Node, source []byte) int {
	if node == nil {
		return 0
	}
	count := 0
	parser.WalkTyped(node, source, func(n *sitter.Node, nodeType string, _ []byte) bool {
		if nodeType == "function_definition" {
			return false
		}
		if decisionTypes[nodeType] {
			count++
		}
		// Each "and"/"or" short-circuits; chains nest one operator per node.
		if nodeType == "boolean_operator" {
			if op := getOperator(n); op == "and" || op == "or" {
				count++
			}
		}
		return true
	})
	return count
}

// getOperator returns the operator token of a boolean_operator node.
func getOperator(node *sitter.Node) string {
	if op := node.ChildByFieldName("operator"); op != nil {
		return op.Type()
	}
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if t := child.Type(); t == "and" || t == "or" {
			return t
		}
	}
	return ""
}

func isAsync(fn *sitter.Node) bool {
	for i := range int(fn.ChildCount()) {
		child := fn.Child(i)
		if child.IsNamed() {
			return false
		}
		if child.Type() == "async" {
			return true
		}
	}
	return false
}

// qualifiedName builds the dotted path of enclosing classes and functions.
func qualifiedName(fn *sitter.Node, name string, source []byte) string {
	parts := []string{name}
	for p := fn.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "class_definition":
			parts = append(parts, parser.GetNodeText(p.ChildByFieldName("name"), source))
		case "function_definition":
			parts = append(parts, "<locals>", parser.GetNodeText(p.ChildByFieldName("name"), source))
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// makeSet converts a slice to a map for O(1) lookups.
func makeSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

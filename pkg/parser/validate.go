package parser

import (
	"bytes"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// rejection is a node the grammar accepts but Python 3 does not.
type rejection struct {
	node   *sitter.Node
	reason string
}

// findRejection returns the first construct, in document order, that the
// tree-sitter grammar tolerates but the Python 3 compiler rejects: empty or
// misaligned suites and Python 2 only syntax.
func findRejection(root *sitter.Node, source []byte) *rejection {
	var found *rejection
	WalkTyped(root, source, func(node *sitter.Node, nodeType string, src []byte) bool {
		if found != nil {
			return false
		}
		found = checkNode(node, nodeType, src)
		return found == nil
	})
	return found
}

func checkNode(node *sitter.Node, nodeType string, source []byte) *rejection {
	switch nodeType {
	case "module":
		var col uint32
		if bytes.HasPrefix(source, utf8BOM) {
			col = uint32(len(utf8BOM))
		}
		return checkAlignment(statements(node), col, true)
	case "block":
		stmts := statements(node)
		if len(stmts) == 0 || node.StartByte() == node.EndByte() {
			return &rejection{node: node, reason: "expected an indented block"}
		}
		return checkAlignment(stmts, stmts[0].StartPoint().Column, false)
	case "print_statement":
		if hasChildOfType(node, "chevron") {
			// print >> f, x is a valid Python 3 expression.
			return nil
		}
		return &rejection{node: node, reason: "print statement"}
	case "exec_statement":
		return &rejection{node: node, reason: "exec statement"}
	case "except_clause":
		if hasChildOfType(node, ",") || hasChildOfType(node, "expression_list") {
			return &rejection{node: node, reason: "comma in except clause"}
		}
	case "raise_statement":
		if hasChildOfType(node, "expression_list") {
			return &rejection{node: node, reason: "comma in raise statement"}
		}
	case "comparison_operator":
		if hasChildOfType(node, "<>") {
			return &rejection{node: node, reason: "<> operator"}
		}
	case "string":
		if start := node.Child(0); start != nil && start.Type() == "string_start" &&
			strings.HasSuffix(GetNodeText(start, source), "`") {
			return &rejection{node: node, reason: "backquote repr"}
		}
	case "integer":
		if reason := checkInteger(GetNodeText(node, source)); reason != "" {
			return &rejection{node: node, reason: reason}
		}
	}
	return nil
}

// statements returns the named, non-extra children of a suite.
func statements(node *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := range int(node.NamedChildCount()) {
		child := node.NamedChild(i)
		if child.IsExtra() {
			continue
		}
		out = append(out, child)
	}
	return out
}

// checkAlignment requires every statement that begins a line to start at
// col. For the module, col only applies after the first row.
func checkAlignment(stmts []*sitter.Node, col uint32, module bool) *rejection {
	prevRow := ^uint32(0)
	for _, stmt := range stmts {
		pos := stmt.StartPoint()
		if pos.Row == prevRow {
			continue
		}
		prevRow = pos.Row

		want := col
		if module && pos.Row > 0 {
			want = 0
		}
		if pos.Column != want {
			return &rejection{node: stmt, reason: "unexpected indent"}
		}
	}
	return nil
}

func hasChildOfType(node *sitter.Node, nodeType string) bool {
	for i := range int(node.ChildCount()) {
		if node.Child(i).Type() == nodeType {
			return true
		}
	}
	return false
}

// checkInteger rejects Python 2 long suffixes and octal literals written
// with a bare leading zero.
func checkInteger(text string) string {
	if text == "" {
		return ""
	}
	switch text[len(text)-1] {
	case 'j', 'J':
		return ""
	case 'l', 'L':
		return "long integer suffix"
	}
	if len(text) > 1 && text[0] == '0' && (text[1] == '_' || (text[1] >= '0' && text[1] <= '9')) {
		if strings.Trim(text, "0_") != "" {
			return "leading zeros in decimal integer literal"
		}
	}
	return ""
}

// Package analyzer holds the contracts shared by the per-file analyzers.
package analyzer

import "github.com/wisegam/codesleuth/pkg/parser"

// ParsedAnalyzer computes a per-file result from a parse tree. The
// pipeline parses each unit once and hands the same tree to every
// ParsedAnalyzer. Implementations hold no per-file state and are safe for
// concurrent use.
type ParsedAnalyzer[T any] interface {
	// AnalyzeParsed derives T from result. It must not retain result.
	AnalyzeParsed(result *parser.ParseResult) T
}

package mcpserver

// Tool descriptions are written for the model calling the tool: what it
// does, when to reach for it, and how to read the numbers.

func describeAnalyzeProject() string {
	return `Analyzes a Python project for oversized files, per-function cyclomatic complexity, and circular imports.

USE WHEN:
- Looking for functions that are hard to test or change
- Checking whether a module has grown too large
- Hunting for import cycles before restructuring packages

INTERPRETING RESULTS:
- Complexity starts at 1 and adds one per if/elif, loop, except clause, match case, conditional expression, comprehension filter, and each and/or operator
- Bands: ok (<= complexity_low), refactor-suggested (<= complexity_medium), refactor-required (above)
- Cycles are listed once each, starting at their alphabetically smallest node
- Import names are literal: a cycle between files is only found when a file path equals another file's import name
- errors lists files that could not be read or parsed; the rest of the report still covers every other file

METRICS RETURNED:
- large_files: path and line count of every file over max_lines
- files: functions per file with qualified name, line, and score
- report: band per function, band counts, total, max, and mean (empty=true when no functions were found)
- graph: node, edge, component, and cycle counts
- cycles and errors`
}

func describeDependencyGraph() string {
	return `Exports the import dependency graph of a Python project as Graphviz DOT, Mermaid, or a JSON node/edge list.

USE WHEN:
- Visualizing how modules depend on each other
- Explaining an import cycle found by analyze_project

INTERPRETING RESULTS:
- Box nodes are scanned files; ellipse nodes are imported names that are not files
- Nodes on a cycle are drawn in red
- Self-imports are counted in the summary but not drawn

METRICS RETURNED:
- The rendered graph, followed by its summary (nodes, edges, strongly connected components, cycles)`
}

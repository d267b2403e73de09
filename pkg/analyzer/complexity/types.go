package complexity

// FunctionRecord is the cyclomatic complexity of one function definition.
type FunctionRecord struct {
	// Name is the bare identifier after "def".
	Name string `json:"name" toon:"name"`
	// QualifiedName follows Python's __qualname__: "Class.method",
	// "outer.<locals>.inner".
	QualifiedName string `json:"qualified_name" toon:"qualified_name"`
	Path          string `json:"path" toon:"path"`
	Line          uint32 `json:"line" toon:"line"`
	EndLine       uint32 `json:"end_line" toon:"end_line"`
	Async         bool   `json:"async,omitempty" toon:"async,omitempty"`
	// Score is 1 plus the decision points in the function's own body.
	Score int `json:"score" toon:"score"`
}

// FileResult holds the records of one source unit in declaration order.
type FileResult struct {
	Path      string           `json:"path" toon:"path"`
	Functions []FunctionRecord `json:"functions" toon:"functions"`
}

// MaxScore returns the highest score in the file, or 0 without functions.
func (f FileResult) MaxScore() int {
	maxScore := 0
	for _, fn := range f.Functions {
		if fn.Score > maxScore {
			maxScore = fn.Score
		}
	}
	return maxScore
}

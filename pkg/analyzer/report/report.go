// Package report classifies complexity scores and computes project totals.
// It performs no I/O.
package report

import "github.com/wisegam/codesleuth/pkg/analyzer/complexity"

// Band is a complexity classification.
type Band string

const (
	BandOK        Band = "ok"
	BandSuggested Band = "refactor-suggested"
	BandRequired  Band = "refactor-required"
)

// Description is the long human-readable form of the band.
func (b Band) Description() string {
	switch b {
	case BandOK:
		return "Low Complexity - OK"
	case BandSuggested:
		return "Medium Complexity - Consider refactoring"
	case BandRequired:
		return "High Complexity - Needs refactoring"
	default:
		return string(b)
	}
}

// Thresholds separate the bands. Low < Medium by convention; it is not
// enforced.
type Thresholds struct {
	Low    int `json:"low" toon:"low"`
	Medium int `json:"medium" toon:"medium"`
}

// DefaultThresholds returns the standard 5/10 split.
func DefaultThresholds() Thresholds {
	return Thresholds{Low: 5, Medium: 10}
}

// Classify places score in exactly one band:
// score <= Low is ok, score <= Medium is refactor-suggested, anything
// above is refactor-required.
func Classify(score int, t Thresholds) Band {
	switch {
	case score <= t.Low:
		return BandOK
	case score <= t.Medium:
		return BandSuggested
	default:
		return BandRequired
	}
}

// Classified is a function record with its band.
type Classified struct {
	Function complexity.FunctionRecord `json:"function" toon:"function"`
	Band     Band                      `json:"band" toon:"band"`
}

// BandCounts counts functions per band.
type BandCounts struct {
	OK        int `json:"ok" toon:"ok"`
	Suggested int `json:"refactor_suggested" toon:"refactor_suggested"`
	Required  int `json:"refactor_required" toon:"refactor_required"`
}

func (c *BandCounts) add(b Band) {
	switch b {
	case BandOK:
		c.OK++
	case BandSuggested:
		c.Suggested++
	case BandRequired:
		c.Required++
	}
}

// Summary is the project-wide aggregate.
type Summary struct {
	Thresholds Thresholds   `json:"thresholds" toon:"thresholds"`
	Functions  []Classified `json:"functions" toon:"functions"`
	Counts     BandCounts   `json:"counts" toon:"counts"`
	Total      int          `json:"total" toon:"total"`
	Sum        int          `json:"sum" toon:"sum"`
	Max        int          `json:"max" toon:"max"`
	Mean       float64      `json:"mean" toon:"mean"`
	// Empty is set when no functions were analyzed; Mean is then 0 and
	// carries no meaning.
	Empty bool `json:"empty" toon:"empty"`
}

// Aggregate classifies every record and computes totals. The input order
// is preserved.
func Aggregate(records []complexity.FunctionRecord, t Thresholds) Summary {
	s := Summary{
		Thresholds: t,
		Functions:  make([]Classified, 0, len(records)),
		Total:      len(records),
	}
	if len(records) == 0 {
		s.Empty = true
		return s
	}

	for _, r := range records {
		band := Classify(r.Score, t)
		s.Functions = append(s.Functions, Classified{Function: r, Band: band})
		s.Counts.add(band)
		s.Sum += r.Score
		if r.Score > s.Max {
			s.Max = r.Score
		}
	}
	s.Mean = float64(s.Sum) / float64(s.Total)
	return s
}

// FileGroup is the classified functions of one file.
type FileGroup struct {
	Path      string       `json:"path" toon:"path"`
	Functions []Classified `json:"functions" toon:"functions"`
}

// ByFile groups the classified functions by path, in order of each
// path's first appearance.
func (s Summary) ByFile() []FileGroup {
	var groups []FileGroup
	index := make(map[string]int)
	for _, c := range s.Functions {
		i, ok := index[c.Function.Path]
		if !ok {
			i = len(groups)
			index[c.Function.Path] = i
			groups = append(groups, FileGroup{Path: c.Function.Path})
		}
		groups[i].Functions = append(groups[i].Functions, c)
	}
	return groups
}

// Package report turns accumulated measurements into scored reports and
// renders them as text, JSON, YAML or HTML plots.
package report

import (
	"sort"
	"strconv"
	"time"

	"github.com/Sumatoshi-tech/cognit/pkg/measure"
	"github.com/Sumatoshi-tech/cognit/pkg/safeconv"
)

// Risk buckets a cognitive complexity score.
type Risk string

const (
	// RiskLow marks functions that read linearly.
	RiskLow Risk = "low"
	// RiskModerate marks functions worth watching.
	RiskModerate Risk = "moderate"
	// RiskHigh marks functions that should be refactored.
	RiskHigh Risk = "high"
	// RiskSevere marks functions that resist understanding.
	RiskSevere Risk = "severe"
)

// Bucket boundaries. A score below moderateAt is low, below highAt is
// moderate, below severeAt is high, everything else severe.
const (
	moderateAt = 8
	highAt     = 15
	severeAt   = 25
)

// RiskOf buckets a score.
func RiskOf(score int) Risk {
	switch {
	case score < moderateAt:
		return RiskLow
	case score < highAt:
		return RiskModerate
	case score < severeAt:
		return RiskHigh
	default:
		return RiskSevere
	}
}

// Function is one scored function.
type Function struct {
	Name       string `json:"name"        yaml:"name"`
	File       string `json:"file"        yaml:"file"`
	StartLine  int    `json:"start_line"  yaml:"start_line"`
	EndLine    int    `json:"end_line"    yaml:"end_line"`
	Complexity int    `json:"complexity"  yaml:"complexity"`
	Recursion  int    `json:"recursion"   yaml:"recursion"`
	Risk       Risk   `json:"risk"        yaml:"risk"`
}

// Location formats the function's file position.
func (f Function) Location() string {
	return f.File + ":" + strconv.Itoa(f.StartLine)
}

// File is one scored source file.
type File struct {
	Path     string `json:"path"     yaml:"path"`
	Language string `json:"language" yaml:"language"`

	// TopLevel is the complexity accumulated outside any function.
	TopLevel int `json:"top_level" yaml:"top_level"`

	// Complexity is the file aggregate: top-level plus all functions.
	Complexity int `json:"complexity" yaml:"complexity"`

	Functions []Function `json:"functions" yaml:"functions"`
}

// FileFrom flattens one file's unit tree into a report file. Function
// units appear in document order; a definition nested inside another
// keeps its own row even though its score accumulated on the enclosing
// unit.
func FileFrom(path, language string, root *measure.Unit) File {
	file := File{Path: path, Language: language}

	root.Walk(func(u *measure.Unit) {
		score := u.Total(measure.MetricCognitive)
		file.Complexity += score

		switch u.Kind {
		case measure.UnitFile:
			file.TopLevel = score
		case measure.UnitFunction:
			file.Functions = append(file.Functions, Function{
				Name:       u.Name,
				File:       path,
				StartLine:  safeconv.SafeInt(uint64(u.Pos.StartLine)),
				EndLine:    safeconv.SafeInt(uint64(u.Pos.EndLine)),
				Complexity: score,
				Recursion:  u.Total(measure.MetricRecursion),
				Risk:       RiskOf(score),
			})
		}
	})

	return file
}

// RiskBreakdown counts functions per risk bucket.
type RiskBreakdown struct {
	Low      int `json:"low"      yaml:"low"`
	Moderate int `json:"moderate" yaml:"moderate"`
	High     int `json:"high"     yaml:"high"`
	Severe   int `json:"severe"   yaml:"severe"`
}

// Count returns the bucket counter for a risk.
func (b RiskBreakdown) Count(risk Risk) int {
	switch risk {
	case RiskLow:
		return b.Low
	case RiskModerate:
		return b.Moderate
	case RiskHigh:
		return b.High
	case RiskSevere:
		return b.Severe
	default:
		return 0
	}
}

func (b *RiskBreakdown) add(risk Risk) {
	switch risk {
	case RiskLow:
		b.Low++
	case RiskModerate:
		b.Moderate++
	case RiskHigh:
		b.High++
	case RiskSevere:
		b.Severe++
	}
}

// Summary aggregates a whole report.
type Summary struct {
	Files     int           `json:"files"            yaml:"files"`
	Functions int           `json:"functions"        yaml:"functions"`
	Total     int           `json:"total_complexity" yaml:"total_complexity"`
	Max       int           `json:"max_complexity"   yaml:"max_complexity"`
	Mean      float64       `json:"mean_complexity"  yaml:"mean_complexity"`
	Risk      RiskBreakdown `json:"risk"             yaml:"risk"`
}

// Report is a complete scoring run over one tree of files.
type Report struct {
	Root        string    `json:"root"         yaml:"root"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Files       []File    `json:"files"        yaml:"files"`
	Summary     Summary   `json:"summary"      yaml:"summary"`
}

// New assembles a report. Files are sorted by path; the summary is
// computed here and stays consistent with the file list.
func New(root string, files []File) *Report {
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	r := &Report{
		Root:        root,
		GeneratedAt: time.Now().UTC(),
		Files:       files,
	}

	for _, f := range files {
		r.Summary.Files++
		r.Summary.Total += f.Complexity

		for _, fn := range f.Functions {
			r.Summary.Functions++
			r.Summary.Risk.add(fn.Risk)

			if fn.Complexity > r.Summary.Max {
				r.Summary.Max = fn.Complexity
			}
		}
	}

	if r.Summary.Functions > 0 {
		r.Summary.Mean = float64(r.Summary.Total) / float64(r.Summary.Functions)
	}

	return r
}

// TopFunctions returns up to n functions ordered by descending
// complexity. Ties break by file path then start line, so output is
// stable across runs.
func (r *Report) TopFunctions(n int) []Function {
	all := r.allFunctions()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Complexity != all[j].Complexity {
			return all[i].Complexity > all[j].Complexity
		}

		if all[i].File != all[j].File {
			return all[i].File < all[j].File
		}

		return all[i].StartLine < all[j].StartLine
	})

	if n >= 0 && n < len(all) {
		all = all[:n]
	}

	return all
}

// Exceeds returns every function whose complexity is above the
// threshold, in TopFunctions order.
func (r *Report) Exceeds(threshold int) []Function {
	var out []Function

	for _, fn := range r.TopFunctions(-1) {
		if fn.Complexity <= threshold {
			break
		}

		out = append(out, fn)
	}

	return out
}

func (r *Report) allFunctions() []Function {
	out := make([]Function, 0, r.Summary.Functions)
	for _, f := range r.Files {
		out = append(out, f.Functions...)
	}

	return out
}

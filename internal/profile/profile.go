// Package profile computes per-column preview intelligence for uploaded
// tables: inferred kind, fill counts, and summary statistics for numeric
// columns. Profiles inform the UI and CLI only; they never feed a prompt.
package profile

import (
	"github.com/montanaflynn/stats"

	"tablecast/domain/table"
)

// Kind classifies a column by its non-empty cells
type Kind string

const (
	KindNumeric Kind = "numeric"
	KindText    Kind = "text"
	KindEmpty   Kind = "empty"
)

// numericShare is the fraction of non-empty cells that must be numbers for
// a column to profile as numeric
const numericShare = 0.8

// NumericSummary holds summary statistics for a numeric column
type NumericSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

// Column is the profile of one table column
type Column struct {
	Name     string          `json:"name"`
	Kind     Kind            `json:"kind"`
	NonEmpty int             `json:"non_empty"`
	Distinct int             `json:"distinct"`
	Numeric  *NumericSummary `json:"numeric,omitempty"`
}

// Columns profiles every column of t, in header order. Ragged rows read as
// empty past their end; columns with no non-empty cells profile as empty.
func Columns(t *table.Table) []Column {
	if t == nil {
		return nil
	}

	out := make([]Column, len(t.Headers))
	for i, name := range t.Headers {
		out[i] = profileColumn(name, t.Column(i))
	}
	return out
}

func profileColumn(name string, values []table.Value) Column {
	col := Column{Name: name, Kind: KindEmpty}

	distinct := make(map[string]bool)
	var numbers []float64
	for _, v := range values {
		if v == nil {
			continue
		}
		col.NonEmpty++
		distinct[table.ValueString(v)] = true
		if n, ok := v.(float64); ok {
			numbers = append(numbers, n)
		}
	}
	col.Distinct = len(distinct)

	if col.NonEmpty == 0 {
		return col
	}

	if float64(len(numbers)) >= numericShare*float64(col.NonEmpty) {
		col.Kind = KindNumeric
		col.Numeric = summarize(numbers)
	} else {
		col.Kind = KindText
	}
	return col
}

// summarize computes the numeric summary, tolerating the library's
// errors on degenerate input by returning a zero summary
func summarize(numbers []float64) *NumericSummary {
	if len(numbers) == 0 {
		return &NumericSummary{}
	}

	s := &NumericSummary{}
	if v, err := stats.Mean(numbers); err == nil {
		s.Mean = v
	}
	if v, err := stats.Median(numbers); err == nil {
		s.Median = v
	}
	if v, err := stats.Min(numbers); err == nil {
		s.Min = v
	}
	if v, err := stats.Max(numbers); err == nil {
		s.Max = v
	}
	if v, err := stats.StandardDeviation(numbers); err == nil {
		s.StdDev = v
	}
	return s
}

package models

import (
	"fmt"
	"strings"
)

// Column names of a result table, as produced by the confidence computation.
const (
	PointEstimate         = "point_estimate"
	Difference            = "difference"
	CILower               = "ci_lower"
	CIUpper               = "ci_upper"
	AdjustedLower         = "adjusted ci_lower"
	AdjustedUpper         = "adjusted ci_upper"
	PValue                = "p-value"
	AdjustedPValue        = "adjusted p-value"
	NullHypothesis        = "null_hypothesis"
	PreferenceColumn      = "preference"
	Level1                = "level_1"
	Level2                = "level_2"
	OriginalPointEstimate = "original_point_estimate"
	Sfx1                  = "_1"
)

type Preference string

const (
	PreferenceIncrease Preference = "increase"
	PreferenceDecrease Preference = "decrease"
	PreferenceTwoSided Preference = "two-sided"
)

// ParsePreference принимает текстовое значение колонки preference.
func ParsePreference(s string) (Preference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "increase":
		return PreferenceIncrease, nil
	case "decrease":
		return PreferenceDecrease, nil
	case "", "two-sided", "two_sided", "twosided":
		return PreferenceTwoSided, nil
	}
	return "", fmt.Errorf("unknown preference %q", s)
}

// ComparisonRow is one single-arm or pairwise result.
type ComparisonRow struct {
	Groups  map[string]string
	Ordinal float64

	Level1 string
	Level2 string

	Center        float64
	Lower         float64
	Upper         float64
	AdjustedLower float64
	AdjustedUpper float64

	NullHypothesis *float64
	Preference     Preference

	PValue         float64
	AdjustedPValue float64

	ReferenceLevel      string
	ReferenceLevelValue float64
}

// Bounds returns the interval to plot, adjusted or not.
func (r ComparisonRow) Bounds(adjusted bool) (float64, float64) {
	if adjusted {
		return r.AdjustedLower, r.AdjustedUpper
	}
	return r.Lower, r.Upper
}

// GroupValue returns the level of a grouping column; level_1 and level_2 are
// treated as ordinary group columns.
func (r ComparisonRow) GroupValue(column string) string {
	switch column {
	case Level1:
		return r.Level1
	case Level2:
		return r.Level2
	}
	return r.Groups[column]
}

// GroupLabel joins the levels of several grouping columns.
func (r ComparisonRow) GroupLabel(columns []string) string {
	values := make([]string, 0, len(columns))
	for _, c := range columns {
		values = append(values, r.GroupValue(c))
	}
	return strings.Join(values, ", ")
}

// Schema lists the optional columns present in a table. Optional columns are
// table-wide.
type Schema struct {
	Center               string
	HasNullHypothesis    bool
	HasPValue            bool
	HasAdjustedPValue    bool
	HasReferenceLevel    bool
	HasAdjustedIntervals bool
	HasLevels            bool
	OrdinalIsTime        bool
}

type ResultTable struct {
	Schema Schema
	Rows   []ComparisonRow
}

// IsDifference is true for tables of pairwise differences.
func (t ResultTable) IsDifference() bool {
	return t.Schema.Center == Difference
}

// WithRows returns a table sharing the schema.
func (t ResultTable) WithRows(rows []ComparisonRow) ResultTable {
	return ResultTable{Schema: t.Schema, Rows: rows}
}

// AnyNullHypothesis reports whether at least one row has a defined null hypothesis.
func (t ResultTable) AnyNullHypothesis() bool {
	if !t.Schema.HasNullHypothesis {
		return false
	}
	for _, r := range t.Rows {
		if r.NullHypothesis != nil {
			return true
		}
	}
	return false
}

// TableLevel is one slice of a table split by grouping columns.
type TableLevel struct {
	Name  string
	Table ResultTable
}

// SplitBy groups rows by the given columns, keeping the order in which levels were
// first seen.
func (t ResultTable) SplitBy(columns []string) []TableLevel {
	if len(columns) == 0 {
		return []TableLevel{{Table: t}}
	}
	index := map[string]int{}
	var levels []TableLevel
	for _, r := range t.Rows {
		name := r.GroupLabel(columns)
		i, ok := index[name]
		if !ok {
			i = len(levels)
			index[name] = i
			levels = append(levels, TableLevel{Name: name, Table: t.WithRows(nil)})
		}
		levels[i].Table.Rows = append(levels[i].Table.Rows, r)
	}
	return levels
}

// Package report prints result tables as text.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pivolan/confidence_charts/domain/models"
	"github.com/pivolan/confidence_charts/significance"
	"github.com/pivolan/confidence_charts/tooltip"
)

const numberFormat = "0.0000"

// GenerateTable renders the rows of a result table with their outcome.
func GenerateTable(t models.ResultTable, outcomes map[int]significance.Outcome) string {
	return newWriter(t, outcomes).Render()
}

// GenerateTableMarkdown is GenerateTable for chats and README files.
func GenerateTableMarkdown(t models.ResultTable, outcomes map[int]significance.Outcome) string {
	return newWriter(t, outcomes).RenderMarkdown()
}

func newWriter(t models.ResultTable, outcomes map[int]significance.Outcome) table.Writer {
	w := table.NewWriter()
	hasNim := t.AnyNullHypothesis()
	header := table.Row{"group"}
	if t.Schema.HasLevels {
		header = append(header, "levels")
	}
	header = append(header, centerName(t), "ci")
	if t.Schema.HasPValue {
		header = append(header, "p-value")
	}
	if t.Schema.HasAdjustedPValue {
		header = append(header, "adjusted p-value")
	}
	if hasNim {
		header = append(header, "null hypothesis", "outcome")
	}
	w.AppendHeader(header)

	for i, r := range t.Rows {
		row := table.Row{groupLabel(r)}
		if t.Schema.HasLevels {
			row = append(row, fmt.Sprintf("%s → %s", r.Level1, r.Level2))
		}
		row = append(row, format(r.Center), fmt.Sprintf("(%s, %s)", format(r.Lower), format(r.Upper)))
		if t.Schema.HasPValue {
			row = append(row, format(r.PValue))
		}
		if t.Schema.HasAdjustedPValue {
			row = append(row, format(r.AdjustedPValue))
		}
		if hasNim {
			if r.NullHypothesis == nil {
				row = append(row, "", "")
			} else {
				row = append(row, format(*r.NullHypothesis), string(outcomes[i]))
			}
		}
		w.AppendRow(row)
	}
	w.SetStyle(table.StyleDefault)
	return w
}

func centerName(t models.ResultTable) string {
	if t.Schema.Center == "" {
		return models.PointEstimate
	}
	return t.Schema.Center
}

func format(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return tooltip.FormatNumber(v, numberFormat)
}

// groupLabel lists the group levels ordered by column name.
func groupLabel(r models.ComparisonRow) string {
	keys := make([]string, 0, len(r.Groups))
	for k := range r.Groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+r.Groups[k])
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, ", ")
}

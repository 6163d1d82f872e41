// Package tableio reads result tables from CSV files (plain or compressed) and
// from database tables.
package tableio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pivolan/go_utils"

	"github.com/pivolan/confidence_charts/domain/models"
)

const SEPARATOR = ','

type Options struct {
	// GroupColumns restricts the grouping columns; every unknown column is a
	// group column when empty.
	GroupColumns  []string
	OrdinalColumn string
}

var knownColumns = []string{
	models.Level1, models.Level2,
	models.PointEstimate, models.Difference,
	models.CILower, models.CIUpper,
	models.AdjustedLower, models.AdjustedUpper,
	models.PValue, models.AdjustedPValue,
	models.NullHypothesis, models.PreferenceColumn,
	models.OriginalPointEstimate + models.Sfx1,
}

// headerAliases maps cleaned header names back to the column names of results.
var headerAliases = map[string]string{
	"adjusted_ci_lower": models.AdjustedLower,
	"adjusted_ci_upper": models.AdjustedUpper,
	"p_value":           models.PValue,
	"adjusted_p_value":  models.AdjustedPValue,
	"pvalue":            models.PValue,
}

var ErrNoRows = errors.New("no data rows")

// ReadCSV parses a results table. The header row is required.
func ReadCSV(r io.Reader, opts Options) (models.ResultTable, error) {
	reader := csv.NewReader(r)
	reader.Comma = SEPARATOR
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return models.ResultTable{}, ErrNoRows
		}
		return models.ResultTable{}, fmt.Errorf("error reading header: %w", err)
	}
	if HeaderLooksLikeData(headers) {
		return models.ResultTable{}, fmt.Errorf("first row %v looks like data, a header row is required", headers)
	}
	records, err := reader.ReadAll()
	if err != nil {
		return models.ResultTable{}, fmt.Errorf("error reading rows: %w", err)
	}
	return BuildTable(headers, records, opts)
}

// NormalizeHeaders trims and lower-cases header names, restores spelling of
// well-known result columns and makes the names unique.
func NormalizeHeaders(headers []string) []string {
	res := make([]string, len(headers))
	for i, h := range headers {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if alias, ok := headerAliases[replaceSpecialSymbols(h)]; ok {
			h = alias
		}
		if h == "" {
			h = generateColumnName(i)
		}
		res[i] = h
	}
	return ValidateHeaders(res)
}

// BuildTable turns string records into a result table.
func BuildTable(headers []string, records [][]string, opts Options) (models.ResultTable, error) {
	if len(records) == 0 {
		return models.ResultTable{}, ErrNoRows
	}
	headers = NormalizeHeaders(headers)
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[h] = i
	}
	has := func(col string) bool {
		_, ok := index[col]
		return ok
	}

	var table models.ResultTable
	switch {
	case has(models.Difference):
		table.Schema.Center = models.Difference
	case has(models.PointEstimate):
		table.Schema.Center = models.PointEstimate
	default:
		return table, fmt.Errorf("table has neither %q nor %q column", models.Difference, models.PointEstimate)
	}
	for _, col := range []string{models.CILower, models.CIUpper} {
		if !has(col) {
			return table, fmt.Errorf("table has no %q column", col)
		}
	}
	ordinal := strings.ToLower(strings.TrimSpace(opts.OrdinalColumn))
	if ordinal != "" && !has(ordinal) {
		return table, fmt.Errorf("ordinal column %q not found", ordinal)
	}

	table.Schema.HasNullHypothesis = has(models.NullHypothesis)
	table.Schema.HasPValue = has(models.PValue)
	table.Schema.HasAdjustedPValue = has(models.AdjustedPValue)
	table.Schema.HasAdjustedIntervals = has(models.AdjustedLower) && has(models.AdjustedUpper)
	table.Schema.HasLevels = has(models.Level1) && has(models.Level2)
	table.Schema.HasReferenceLevel = has(models.Level1)

	groupColumns, err := groupColumnsOf(headers, opts, ordinal)
	if err != nil {
		return table, err
	}
	if ordinal != "" {
		table.Schema.OrdinalIsTime = isDateData(column(records, index[ordinal]))
	}

	for n, record := range records {
		line := n + 2
		get := func(col string) string {
			if i, ok := index[col]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}
		num := func(col string) (float64, error) {
			v, err := parseNumber(get(col))
			if err != nil {
				return 0, fmt.Errorf("line %d, column %q: %w", line, col, err)
			}
			return v, nil
		}

		row := models.ComparisonRow{
			Groups:              make(map[string]string, len(groupColumns)+1),
			Level1:              get(models.Level1),
			Level2:              get(models.Level2),
			ReferenceLevel:      get(models.Level1),
			ReferenceLevelValue: math.NaN(),
		}
		for _, g := range groupColumns {
			row.Groups[g] = get(g)
		}
		if row.Center, err = num(table.Schema.Center); err != nil {
			return table, err
		}
		if row.Lower, err = num(models.CILower); err != nil {
			return table, err
		}
		if row.Upper, err = num(models.CIUpper); err != nil {
			return table, err
		}
		row.AdjustedLower, row.AdjustedUpper = row.Lower, row.Upper
		if table.Schema.HasAdjustedIntervals {
			if row.AdjustedLower, err = num(models.AdjustedLower); err != nil {
				return table, err
			}
			if row.AdjustedUpper, err = num(models.AdjustedUpper); err != nil {
				return table, err
			}
		}
		if row.PValue, err = num(models.PValue); err != nil {
			return table, err
		}
		if row.AdjustedPValue, err = num(models.AdjustedPValue); err != nil {
			return table, err
		}
		if row.ReferenceLevelValue, err = num(models.OriginalPointEstimate + models.Sfx1); err != nil {
			return table, err
		}
		if table.Schema.HasNullHypothesis {
			v, err := num(models.NullHypothesis)
			if err != nil {
				return table, err
			}
			if !math.IsNaN(v) {
				row.NullHypothesis = &v
			}
		}
		if row.Preference, err = models.ParsePreference(get(models.PreferenceColumn)); err != nil {
			return table, fmt.Errorf("line %d: %w", line, err)
		}
		if ordinal != "" {
			raw := get(ordinal)
			row.Groups[ordinal] = raw
			if row.Ordinal, err = parseOrdinal(raw, table.Schema.OrdinalIsTime); err != nil {
				return table, fmt.Errorf("line %d, column %q: %w", line, ordinal, err)
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func groupColumnsOf(headers []string, opts Options, ordinal string) ([]string, error) {
	if len(opts.GroupColumns) > 0 {
		var res []string
		for _, g := range opts.GroupColumns {
			g = strings.ToLower(strings.TrimSpace(g))
			if !go_utils.InArray(g, headers) {
				return nil, fmt.Errorf("group column %q not found", g)
			}
			res = append(res, g)
		}
		return res, nil
	}
	var res []string
	for _, h := range headers {
		if h == ordinal || go_utils.InArray(h, knownColumns) {
			continue
		}
		res = append(res, h)
	}
	return res, nil
}

func column(records [][]string, i int) []string {
	values := make([]string, 0, len(records))
	for _, r := range records {
		if i < len(r) {
			values = append(values, r[i])
		}
	}
	return values
}

// parseNumber accepts empty cells and nan as NaN, inf and -inf as infinities.
func parseNumber(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "", "nan", "null", "none":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02.01.2006",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999",
	time.RFC3339,
}

func parseOrdinal(s string, isTime bool) (float64, error) {
	if !isTime {
		return strconv.ParseFloat(s, 64)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return float64(t.Unix()), nil
		}
	}
	return 0, fmt.Errorf("cannot parse %q as date", s)
}

// Package tooltip assembles the hover text of comparison charts.
//
// A Spec is an ordered list of (label, template) entries. Templates reference
// per-point fields as @name or @{name with spaces}, optionally followed by a
// numeral format in braces: "@difference{0.00%}". The chart surface resolves
// them per point with Render.
package tooltip

import (
	"strconv"
	"strings"

	"github.com/pivolan/confidence_charts/domain/models"
)

// Field names of a chart data point.
const (
	FieldGroup             = "color"
	FieldPValue            = "p_value"
	FieldAdjustedP         = "adjusted_p"
	FieldNullHypothesis    = "null_hyp"
	FieldReferenceLevel    = "reference_level"
	FieldReferenceLevelAvg = "reference_level_avg"

	PValueFormat = "0.0000"
)

type Entry struct {
	Label string
	Field string
}

type Spec []Entry

type Options struct {
	HasGroup          bool
	HasReferenceLevel bool
	Ordinal           bool
	OrdinalColumn     string
	CenterField       string
	RowCount          int
	HasNullHypothesis bool
	NumericFormat     string
	// ReferenceFormat formats the reference level average, NumericFormat when empty.
	ReferenceFormat   string
	AdjustedIntervals bool
}

// BuildSpec returns the tooltip entries in display order: group, reference
// level, ordinal value, centre, interval, p-values and null hypothesis.
func BuildSpec(o Options) Spec {
	refFormat := o.ReferenceFormat
	if refFormat == "" {
		refFormat = o.NumericFormat
	}
	lower, upper := models.CILower, models.CIUpper
	intervalLabel := "confidence interval"
	if o.AdjustedIntervals {
		lower, upper = models.AdjustedLower, models.AdjustedUpper
		intervalLabel = "adjusted " + intervalLabel
	}

	var spec Spec
	if o.HasGroup {
		spec = append(spec, Entry{"group", "@" + FieldGroup})
	}
	if o.HasReferenceLevel {
		spec = append(spec, Entry{"reference level",
			"@" + FieldReferenceLevel + ": @" + FieldReferenceLevelAvg + "{" + refFormat + "}"})
	}
	if o.Ordinal {
		spec = append(spec, Entry{o.OrdinalColumn, ref(o.OrdinalColumn, "")})
	}
	spec = append(spec, Entry{o.CenterField, ref(o.CenterField, o.NumericFormat)})
	spec = append(spec, Entry{intervalLabel,
		"(" + braced(lower, o.NumericFormat) + ", " + braced(upper, o.NumericFormat) + ")"})
	if o.CenterField == models.Difference {
		spec = append(spec, Entry{"p-value", ref(FieldPValue, PValueFormat)})
		if o.RowCount > 1 {
			spec = append(spec, Entry{"adjusted p-value", ref(FieldAdjustedP, PValueFormat)})
		}
	}
	if o.HasNullHypothesis {
		spec = append(spec, Entry{"null hypothesis", ref(FieldNullHypothesis, o.NumericFormat)})
	}
	return spec
}

// ref builds a field reference, bracing names that are not plain identifiers.
func ref(name, format string) string {
	s := "@" + name
	if !isIdent(name) {
		s = "@{" + name + "}"
	}
	if format != "" {
		s += "{" + format + "}"
	}
	return s
}

func braced(name, format string) string {
	return "@{" + name + "}{" + format + "}"
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isIdentRune(r) {
			return false
		}
	}
	return true
}

func isIdentRune(r rune) bool {
	return r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

// Fields are the values of one chart point, float64 or string.
type Fields map[string]interface{}

type Line struct {
	Label string
	Text  string
}

// Render resolves every entry against the fields of one point.
func (s Spec) Render(fields Fields) []Line {
	lines := make([]Line, 0, len(s))
	for _, e := range s {
		lines = append(lines, Line{Label: e.Label, Text: expand(e.Field, fields)})
	}
	return lines
}

// Labels returns the entry labels in order.
func (s Spec) Labels() []string {
	labels := make([]string, 0, len(s))
	for _, e := range s {
		labels = append(labels, e.Label)
	}
	return labels
}

func expand(template string, fields Fields) string {
	var b strings.Builder
	for i := 0; i < len(template); {
		if template[i] != '@' {
			b.WriteByte(template[i])
			i++
			continue
		}
		name, format, next := parseRef(template, i+1)
		if name == "" {
			b.WriteByte('@')
			i++
			continue
		}
		b.WriteString(formatValue(fields[name], format))
		i = next
	}
	return b.String()
}

// parseRef reads "name{format}" or "{name}{format}" starting at i.
func parseRef(t string, i int) (name, format string, next int) {
	if i < len(t) && t[i] == '{' {
		end := strings.IndexByte(t[i:], '}')
		if end < 0 {
			return "", "", i
		}
		name, i = t[i+1:i+end], i+end+1
	} else {
		start := i
		for i < len(t) && isIdentRune(rune(t[i])) {
			i++
		}
		name = t[start:i]
	}
	if i < len(t) && t[i] == '{' {
		if end := strings.IndexByte(t[i:], '}'); end >= 0 {
			format, i = t[i+1:i+end], i+end+1
		}
	}
	return name, format, i
}

func formatValue(v interface{}, format string) string {
	switch x := v.(type) {
	case nil:
		if format != "" {
			return "NaN"
		}
		return ""
	case float64:
		if format == "" {
			return strconv.FormatFloat(x, 'g', -1, 64)
		}
		return FormatNumber(x, format)
	case string:
		return x
	}
	return ""
}

// Text joins rendered lines as "label: text" rows.
func Text(lines []Line, sep string) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, l.Label+": "+l.Text)
	}
	return strings.Join(parts, sep)
}

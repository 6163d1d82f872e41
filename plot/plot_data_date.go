package plot

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/wcharczuk/go-chart/v2"
)

type dataDateForGraph struct {
	figure Figure
	style  Style
}

func NewDataDateForGraph(f Figure, style Style) dataDateForGraph {
	return dataDateForGraph{figure: f, style: style}
}

func (d dataDateForGraph) GetNameGraph() string {
	return d.figure.FullTitle()
}
func (d dataDateForGraph) getNameYAxis() string {
	return d.figure.YLabel
}
func (d dataDateForGraph) hasLegend() bool {
	return len(d.figure.Groups) > 1
}

// getTypeRequest returns the granularity of the time axis.
func (d dataDateForGraph) getTypeRequest() string {
	var xs []float64
	for _, g := range d.figure.Groups {
		for _, p := range g.Points {
			xs = append(xs, p.X)
		}
	}
	return TimeGranularity(xs)
}

// TimeGranularity is "day" when every unix time falls on midnight, "hour"
// otherwise.
func TimeGranularity(values []float64) string {
	for _, v := range values {
		if int64(v)%86400 != 0 {
			return "hour"
		}
	}
	return "day"
}

func (d dataDateForGraph) formatX(v float64) string {
	if !d.figure.TimeAxis {
		return strconv.FormatFloat(v, 'g', 6, 64)
	}
	return FormatOrdinalTime(v, d.getTypeRequest())
}

// FormatOrdinalTime formats unix seconds at the given granularity.
func FormatOrdinalTime(v float64, typeRequest string) string {
	t := time.Unix(int64(v), 0).UTC()
	switch typeRequest {
	case "year":
		return t.Format("2006")
	case "month":
		return t.Format("2006-01")
	case "hour":
		return t.Format("2006-01-02 15:04")
	}
	return t.Format("2006-01-02")
}

func (d dataDateForGraph) xRange() (float64, float64) {
	first := true
	var min, max float64
	for _, g := range d.figure.Groups {
		for _, p := range g.Points {
			if first || p.X < min {
				min = p.X
			}
			if first || p.X > max {
				max = p.X
			}
			first = false
		}
	}
	return min, max
}

func (d dataDateForGraph) generateSeries() []chart.Series {
	var series []chart.Series
	for i, g := range d.figure.Groups {
		if len(g.Points) == 0 {
			continue
		}
		points := append([]Point(nil), g.Points...)
		sort.SliceStable(points, func(a, b int) bool { return points[a].X < points[b].X })

		color := d.style.color(i)
		name := g.Name
		if name == "" {
			name = "estimate"
		}
		var center, lower, upper, nim lineValues
		for _, p := range points {
			center.add(p.X, p.Center)
			lower.add(p.X, p.Lower)
			upper.add(p.X, p.Upper)
			if v, ok := p.nullHypothesis(); ok {
				nim.add(p.X, v)
			}
		}

		// Границы интервала тонкими линиями
		bound := chart.Style{StrokeColor: color.WithAlpha(110), StrokeWidth: 1, StrokeDashArray: []float64{2, 2}}
		series = lower.appendTo(series, name+" ci", bound)
		series = upper.appendTo(series, name+" ci", bound)
		series = center.appendTo(series, name, chart.Style{StrokeColor: color, StrokeWidth: 2})
		series = nim.appendTo(series, name+" null hypothesis",
			chart.Style{StrokeColor: color, StrokeWidth: 1, StrokeDashArray: []float64{6, 4}})
	}
	if d.figure.ZeroLine && len(series) > 0 {
		min, max := d.xRange()
		series = append(series, zeroLine(min, max))
	}
	return series
}

// lineValues collects one line of a series; NaN points are skipped, go-chart
// hangs on them.
type lineValues struct {
	xs, ys []float64
}

func (l *lineValues) add(x, y float64) {
	if math.IsNaN(y) {
		return
	}
	l.xs = append(l.xs, x)
	l.ys = append(l.ys, y)
}

func (l lineValues) appendTo(series []chart.Series, name string, style chart.Style) []chart.Series {
	if len(l.xs) == 0 {
		return series
	}
	return append(series, &chart.ContinuousSeries{Name: name, XValues: l.xs, YValues: l.ys, Style: style})
}

func (d dataDateForGraph) generateXAxis() chart.XAxis {
	var xRange chart.Range
	// go-chart отказывается рисовать при нулевом диапазоне по X
	if min, max := d.xRange(); min == max {
		pad := 1.0
		if d.figure.TimeAxis {
			pad = 86400
		}
		xRange = &chart.ContinuousRange{Min: min - pad, Max: max + pad}
	}
	return chart.XAxis{
		Range: xRange,
		Name:  d.figure.XLabel,
		Style: chart.Style{TextRotationDegrees: 45},
		ValueFormatter: func(v interface{}) string {
			if vf, isFloat := v.(float64); isFloat {
				return d.formatX(vf)
			}
			return ""
		},
	}
}

package plot

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/pivolan/confidence_charts/significance"
	"github.com/pivolan/confidence_charts/tooltip"
)

type htmlChart interface {
	components.Charter
	Render(w io.Writer) error
}

// RenderHTMLPage writes all figures into one page.
func RenderHTMLPage(w io.Writer, title string, figures []Figure, style Style) error {
	page := components.NewPage()
	page.PageTitle = title
	for _, f := range figures {
		c, err := newHTMLChart(f, style.WithDefaults())
		if err != nil {
			return err
		}
		page.AddCharts(c)
	}
	return page.Render(w)
}

func newHTMLChart(f Figure, style Style) (htmlChart, error) {
	switch f.Kind {
	case FigureOrdinal:
		return ordinalHTML(f, style), nil
	case FigureInterval, FigureWhisker:
		return categoricalHTML(f, style), nil
	}
	return nil, fmt.Errorf("unsupported figure kind: %s", f.Kind)
}

func globalOptions(f Figure, style Style, texts [][]string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: f.FullTitle(),
			Width:     fmt.Sprintf("%dpx", style.Width),
			Height:    fmt.Sprintf("%dpx", style.Height),
		}),
		charts.WithTitleOpts(opts.Title{Title: f.Title, Subtitle: f.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: opts.FuncOpts(tooltipFormatter(texts)),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(f.Groups) > 1)}),
		charts.WithXAxisOpts(opts.XAxis{Name: f.XLabel}),
		charts.WithYAxisOpts(opts.YAxis{Name: f.YLabel, Min: f.YMin, Max: f.YMax}),
	}
}

func ordinalHTML(f Figure, style Style) *charts.Line {
	d := NewDataDateForGraph(f, style)

	var xs []float64
	seen := map[float64]bool{}
	for _, g := range f.Groups {
		for _, p := range g.Points {
			if !seen[p.X] {
				seen[p.X] = true
				xs = append(xs, p.X)
			}
		}
	}
	sort.Float64s(xs)
	position := make(map[float64]int, len(xs))
	labels := make([]string, len(xs))
	for i, x := range xs {
		position[x] = i
		labels[i] = d.formatX(x)
	}

	line := charts.NewLine()
	line.SetXAxis(labels)
	var texts [][]string
	for i, g := range f.Groups {
		name := g.Name
		if name == "" {
			name = "estimate"
		}
		color := style.hex(i)
		center, lower, upper, nim := emptyLine(len(xs)), emptyLine(len(xs)), emptyLine(len(xs)), emptyLine(len(xs))
		text, nimText := make([]string, len(xs)), make([]string, len(xs))
		hasNim := false
		for _, p := range g.Points {
			j := position[p.X]
			center[j] = lineData(p.Center)
			lower[j] = lineData(p.Lower)
			upper[j] = lineData(p.Upper)
			text[j] = tooltip.Text(p.Tooltip, "<br/>")
			if v, ok := p.nullHypothesis(); ok {
				hasNim = true
				nim[j] = opts.LineData{Value: v}
				nimText[j] = text[j]
			}
		}
		bound := charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 1, Type: "dotted"})
		line.AddSeries(name, center,
			charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 2}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}))
		line.AddSeries(name+" ci", lower, bound, charts.WithItemStyleOpts(opts.ItemStyle{Color: color}))
		line.AddSeries(name+" ci", upper, bound, charts.WithItemStyleOpts(opts.ItemStyle{Color: color}))
		texts = append(texts, text, make([]string, len(xs)), make([]string, len(xs)))
		if hasNim {
			line.AddSeries(name+" null hypothesis", nim,
				charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 1, Type: "dashed"}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: color}))
			texts = append(texts, nimText)
		}
	}
	if f.ZeroLine {
		zero := make([]opts.LineData, len(xs))
		for i := range zero {
			zero[i] = opts.LineData{Value: 0}
		}
		line.AddSeries("zero", zero, charts.WithLineStyleOpts(opts.LineStyle{Color: "#000000", Width: 1}))
		texts = append(texts, make([]string, len(xs)))
	}
	line.SetGlobalOptions(globalOptions(f, style, texts)...)
	return line
}

// lineData is "-" for NaN, echarts draws it as a gap and encoding/json can't
// marshal NaN.
func lineData(v float64) opts.LineData {
	if math.IsNaN(v) {
		return opts.LineData{Value: "-"}
	}
	return opts.LineData{Value: v}
}

func emptyLine(n int) []opts.LineData {
	data := make([]opts.LineData, n)
	for i := range data {
		data[i] = opts.LineData{Value: "-"}
	}
	return data
}

// categoricalHTML draws intervals as degenerate box plots, the estimate and the
// null hypothesis markers as overlapped scatter series.
func categoricalHTML(f Figure, style Style) *charts.BoxPlot {
	n := len(f.Categories)
	box := charts.NewBoxPlot()
	box.SetXAxis(f.Categories)
	scatter := charts.NewScatter()
	scatter.SetXAxis(f.Categories)

	var boxTexts, centerTexts [][]string
	nimData := map[significance.Outcome][]opts.ScatterData{}
	nimTexts := map[significance.Outcome][]string{}
	for _, o := range []significance.Outcome{significance.Adverse, significance.Neutral} {
		nimData[o] = emptyScatter(n)
		nimTexts[o] = make([]string, n)
	}

	for i, g := range f.Groups {
		boxes := make([]opts.BoxPlotData, n)
		centers := emptyScatter(n)
		text := make([]string, n)
		for j := range boxes {
			boxes[j] = opts.BoxPlotData{Value: "-"}
		}
		for _, p := range g.Points {
			j := int(p.X)
			if j < 0 || j >= n {
				continue
			}
			if p.hasInterval() {
				median := p.Center
				if !p.hasCenter() {
					median = p.Lower
				}
				boxes[j] = opts.BoxPlotData{Value: []float64{p.Lower, p.Lower, median, p.Upper, p.Upper}}
			}
			if p.hasCenter() {
				centers[j] = opts.ScatterData{Value: p.Center, SymbolSize: 10}
			}
			text[j] = tooltip.Text(p.Tooltip, "<br/>")
			if v, ok := p.nullHypothesis(); ok {
				outcome := p.Outcome
				if outcome != significance.Adverse {
					outcome = significance.Neutral
				}
				nimData[outcome][j] = opts.ScatterData{Value: v, Symbol: "rect", SymbolSize: 14}
				nimTexts[outcome][j] = text[j]
			}
		}
		name := g.Name
		if name == "" {
			name = "estimate"
		}
		color := style.hex(i)
		box.AddSeries(name, boxes, charts.WithItemStyleOpts(opts.ItemStyle{Color: color}))
		scatter.AddSeries(name, centers, charts.WithItemStyleOpts(opts.ItemStyle{Color: color}))
		boxTexts = append(boxTexts, text)
		centerTexts = append(centerTexts, text)
	}

	texts := append(boxTexts, centerTexts...)
	for _, o := range []significance.Outcome{significance.Adverse, significance.Neutral} {
		if !hasScatterValue(nimData[o]) {
			continue
		}
		scatter.AddSeries("null hypothesis ("+string(o)+")", nimData[o],
			charts.WithItemStyleOpts(opts.ItemStyle{Color: o.Color()}))
		texts = append(texts, nimTexts[o])
	}
	box.SetGlobalOptions(globalOptions(f, style, texts)...)
	box.Overlap(scatter)
	return box
}

func emptyScatter(n int) []opts.ScatterData {
	data := make([]opts.ScatterData, n)
	for i := range data {
		data[i] = opts.ScatterData{Value: "-"}
	}
	return data
}

func hasScatterValue(data []opts.ScatterData) bool {
	for _, d := range data {
		if d.Value != "-" {
			return true
		}
	}
	return false
}

// tooltipFormatter builds a formatter looking up the pre-rendered hover text by
// series and data index.
func tooltipFormatter(texts [][]string) string {
	var b strings.Builder
	b.WriteString("function (params) { var t = [")
	for i, series := range texts {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("[")
		for j, text := range series {
			if j > 0 {
				b.WriteString(",")
			}
			b.WriteString("'" + jsEscape(text) + "'")
		}
		b.WriteString("]")
	}
	b.WriteString("]; var s = t[params.seriesIndex] || []; return s[params.dataIndex] || ''; }")
	return b.String()
}

var jsReplacer = strings.NewReplacer(`\`, "", `'`, "’", "\n", "<br/>", "\r", "")

func jsEscape(s string) string {
	return jsReplacer.Replace(s)
}

package plot

import (
	"github.com/wcharczuk/go-chart/v2"
)

type dataXStringsForGraph struct {
	figure Figure
	style  Style
}

func NewDataXStringsForGraph(f Figure, style Style) dataXStringsForGraph {
	return dataXStringsForGraph{figure: f, style: style}
}

func (d dataXStringsForGraph) GetNameGraph() string {
	return d.figure.FullTitle()
}
func (d dataXStringsForGraph) getNameYAxis() string {
	return d.figure.YLabel
}
func (d dataXStringsForGraph) getXValues() []string {
	return d.figure.Categories
}
func (d dataXStringsForGraph) lenXValues() int {
	return len(d.figure.Categories)
}
func (d dataXStringsForGraph) hasLegend() bool {
	return false
}

func segment(x0, x1, y0, y1 float64, style chart.Style) chart.Series {
	return &chart.ContinuousSeries{
		XValues: []float64{x0, x1},
		YValues: []float64{y0, y1},
		Style:   style,
	}
}

func (d dataXStringsForGraph) generateSeries() []chart.Series {
	var series []chart.Series
	for i, g := range d.figure.Groups {
		for _, p := range g.Points {
			color := d.style.color(i)
			if d.figure.Kind == FigureWhisker {
				color = d.style.color(int(p.X))
			}
			line := chart.Style{StrokeColor: color, StrokeWidth: 3}
			if p.hasInterval() {
				series = append(series, segment(p.X, p.X, p.Lower, p.Upper, line))
				if d.figure.Kind == FigureWhisker {
					// Усы сверху и снизу
					series = append(series,
						segment(p.X-0.15, p.X+0.15, p.Lower, p.Lower, line),
						segment(p.X-0.15, p.X+0.15, p.Upper, p.Upper, line))
				}
			}
			if p.hasCenter() {
				series = append(series, &chart.ContinuousSeries{
					XValues: []float64{p.X},
					YValues: []float64{p.Center},
					Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 6, DotColor: color},
				})
			}
			if nim, ok := p.nullHypothesis(); ok {
				series = append(series, segment(p.X-0.3, p.X+0.3, nim, nim,
					chart.Style{StrokeColor: outcomeColor(p.Outcome), StrokeWidth: 3}))
			}
		}
	}
	if d.figure.ZeroLine && len(series) > 0 {
		series = append(series, zeroLine(-0.5, float64(d.lenXValues())-0.5))
	}
	return series
}

func (d dataXStringsForGraph) generateTicks() []chart.Tick {
	var ticks []chart.Tick
	for i, v := range d.getXValues() {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: v})
	}
	return ticks
}

func (d dataXStringsForGraph) generateXAxis() chart.XAxis {
	rotation := 0.0
	if d.lenXValues() > 6 {
		rotation = 45
	}
	return chart.XAxis{
		Name:  d.figure.XLabel,
		Style: chart.Style{TextRotationDegrees: rotation},
		Range: &chart.ContinuousRange{Min: -0.5, Max: float64(d.lenXValues()) - 0.5},
		Ticks: d.generateTicks(),
	}
}

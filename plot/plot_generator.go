package plot

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pivolan/confidence_charts/tooltip"
)

func zeroLine(xMin, xMax float64) chart.Series {
	if xMin == xMax {
		xMin, xMax = xMin-0.5, xMax+0.5
	}
	return &chart.ContinuousSeries{
		Name:    "zero",
		XValues: []float64{xMin, xMax},
		YValues: []float64{0, 0},
		Style:   chart.Style{StrokeColor: drawing.ColorBlack, StrokeWidth: 1},
	}
}

// DrawPNG renders a figure as PNG.
func DrawPNG(f Figure, style Style) ([]byte, error) {
	style = style.WithDefaults()
	data, err := newDataForGraph(f, style)
	if err != nil {
		return nil, err
	}
	series := data.generateSeries()
	if len(series) == 0 {
		return nil, fmt.Errorf("figure %q has no points", f.Title)
	}

	yMin, yMax := f.YMin, f.YMax
	if yMin >= yMax {
		yMin, yMax = PaddedRange(yMin, yMax)
	}
	axisFormat := f.AxisFormat
	graph := chart.Chart{
		Title:  data.GetNameGraph(),
		Width:  style.Width,
		Height: style.Height,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
			FillColor: drawing.ColorWhite,
		},
		XAxis: data.generateXAxis(),
		YAxis: chart.YAxis{
			Name:  data.getNameYAxis(),
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax},
			ValueFormatter: func(v interface{}) string {
				if vf, isFloat := v.(float64); isFloat {
					return tooltip.FormatNumber(vf, axisFormat)
				}
				return ""
			},
			GridMajorStyle: chart.Style{
				StrokeColor:     drawing.ColorFromHex("efefef"),
				StrokeWidth:     1,
				StrokeDashArray: []float64{5.0, 5.0}, // Пунктирная линия
			},
		},
		Series: series,
	}
	if data.hasLegend() {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}
	graph.Background.StrokeWidth = 1
	graph.Background.StrokeColor = drawing.ColorFromHex("efefef")

	buffer := bytes.NewBuffer([]byte{})
	// Отрисовываем график в формате PNG
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering chart %q: %w", f.Title, err)
	}
	return buffer.Bytes(), nil
}

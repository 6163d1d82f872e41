package plot

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
)

type dataForGraph interface {
	GetNameGraph() string
	getNameYAxis() string
	generateSeries() []chart.Series
	generateXAxis() chart.XAxis
	hasLegend() bool
}

// newDataForGraph выбирает представление по виду графика.
func newDataForGraph(f Figure, style Style) (dataForGraph, error) {
	switch f.Kind {
	case FigureOrdinal:
		return NewDataDateForGraph(f, style), nil
	case FigureInterval, FigureWhisker:
		return NewDataXStringsForGraph(f, style), nil
	}
	return nil, fmt.Errorf("unsupported figure kind: %s", f.Kind)
}

package plot

import (
	"fmt"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pivolan/confidence_charts/significance"
	"github.com/pivolan/confidence_charts/tooltip"
)

type FigureKind int

const (
	// FigureOrdinal: estimate line, interval bounds and dashed null hypothesis
	// over an ordered x axis (dates or numbers).
	FigureOrdinal FigureKind = iota + 1
	// FigureInterval: one interval per category with the null hypothesis
	// marker coloured by significance outcome.
	FigureInterval
	// FigureWhisker: summary estimates per category with whisker caps.
	FigureWhisker
)

func (k FigureKind) String() string {
	switch k {
	case FigureOrdinal:
		return "ordinal"
	case FigureInterval:
		return "interval"
	case FigureWhisker:
		return "whisker"
	}
	return fmt.Sprintf("FigureKind(%d)", int(k))
}

type Point struct {
	// X is the ordinal value, or the category index for categorical figures.
	X              float64
	Center         float64
	Lower          float64
	Upper          float64
	NullHypothesis *float64
	Outcome        significance.Outcome
	Tooltip        []tooltip.Line
}

// NaN values are missing and leave a gap on both surfaces.
func (p Point) hasInterval() bool {
	return !math.IsNaN(p.Lower) && !math.IsNaN(p.Upper)
}

func (p Point) hasCenter() bool {
	return !math.IsNaN(p.Center)
}

func (p Point) nullHypothesis() (float64, bool) {
	if p.NullHypothesis == nil || math.IsNaN(*p.NullHypothesis) {
		return 0, false
	}
	return *p.NullHypothesis, true
}

type Group struct {
	Name   string
	Points []Point
}

type Figure struct {
	Kind       FigureKind
	Title      string
	Subtitle   string
	XLabel     string
	YLabel     string
	AxisFormat string
	YMin       float64
	YMax       float64
	TimeAxis   bool
	ZeroLine   bool
	Categories []string
	Groups     []Group
}

// FullTitle joins title and subtitle on one line.
func (f Figure) FullTitle() string {
	title := strings.ReplaceAll(f.Title, "\n", " ")
	if f.Subtitle == "" {
		return title
	}
	return title + " (" + f.Subtitle + ")"
}

// MissingValues counts points with a NaN centre or bound.
func (f Figure) MissingValues() int {
	n := 0
	for _, g := range f.Groups {
		for _, p := range g.Points {
			if !p.hasCenter() || !p.hasInterval() {
				n++
			}
		}
	}
	return n
}

type Style struct {
	Width   int      `yaml:"width"`
	Height  int      `yaml:"height"`
	Palette []string `yaml:"palette"`
}

// DefaultStyle is the Category10 palette on a 1024x576 canvas.
func DefaultStyle() Style {
	return Style{
		Width:  1024,
		Height: 576,
		Palette: []string{
			"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
			"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
		},
	}
}

// WithDefaults fills zero fields from DefaultStyle.
func (s Style) WithDefaults() Style {
	d := DefaultStyle()
	if s.Width <= 0 {
		s.Width = d.Width
	}
	if s.Height <= 0 {
		s.Height = d.Height
	}
	if len(s.Palette) == 0 {
		s.Palette = d.Palette
	}
	return s
}

func (s Style) hex(i int) string {
	palette := s.WithDefaults().Palette
	return palette[i%len(palette)]
}

func (s Style) color(i int) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s.hex(i), "#"))
}

func outcomeColor(o significance.Outcome) drawing.Color {
	if o == significance.Adverse {
		return drawing.ColorRed
	}
	return drawing.ColorFromHex("2ca02c")
}

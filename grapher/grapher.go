// Package grapher turns result tables into chart grids: summary estimates,
// pairwise differences and multiple comparisons, split by group levels.
package grapher

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pivolan/confidence_charts/domain/models"
	"github.com/pivolan/confidence_charts/plot"
	"github.com/pivolan/confidence_charts/significance"
	"github.com/pivolan/confidence_charts/tooltip"
)

var ErrEmptyTable = errors.New("result table has no rows")

type Options struct {
	Numerator               string
	Denominator             string
	CategoricalGroupColumns []string
	OrdinalGroupColumn      string
}

type Grapher struct {
	opts            Options
	allGroupColumns []string
}

func New(o Options) *Grapher {
	all := append([]string(nil), o.CategoricalGroupColumns...)
	if o.OrdinalGroupColumn != "" {
		all = append(all, o.OrdinalGroupColumn)
	}
	return &Grapher{opts: o, allGroupColumns: all}
}

type DiffOptions struct {
	Absolute             bool
	Groupby              []string
	LevelAsReference     bool
	UseAdjustedIntervals bool
	SplitByGroups        bool
}

// PlotSummary draws one chart per level of groupby, or a single chart when
// groupby is empty.
func (g *Grapher) PlotSummary(t models.ResultTable, groupby []string) (ChartGrid, error) {
	if len(t.Rows) == 0 {
		return ChartGrid{}, ErrEmptyTable
	}
	var grid ChartGrid
	for _, level := range t.SplitBy(groupby) {
		grid.add(g.summaryPlot(level.Name, level.Table, groupby))
	}
	return grid, nil
}

// PlotDifference draws the difference between two levels, one chart per
// categorical group level when SplitByGroups is set.
func (g *Grapher) PlotDifference(t models.ResultTable, o DiffOptions) (ChartGrid, error) {
	return g.splitPlot(t, o, func(level models.ResultTable) ChartGrid {
		return g.differenceGroup(level, o.Groupby, o)
	})
}

// PlotDifferences draws all pairwise differences; level_1 and level_2 become
// grouping columns.
func (g *Grapher) PlotDifferences(t models.ResultTable, o DiffOptions) (ChartGrid, error) {
	return g.splitPlot(t, o, func(level models.ResultTable) ChartGrid {
		columns := addLevelColumns(g.remainingGroups(o.Groupby, g.opts.OrdinalGroupColumn))
		return g.differenceGroup(level, columns, o, o.Groupby...)
	})
}

// PlotMultipleDifference draws every level compared to one reference level.
func (g *Grapher) PlotMultipleDifference(t models.ResultTable, o DiffOptions) (ChartGrid, error) {
	return g.splitPlot(t, o, func(level models.ResultTable) ChartGrid {
		var grid ChartGrid
		title := multipleDifferenceTitle(level, o.LevelAsReference)
		if g.isOrdinal(o.Groupby) {
			remaining := g.remainingGroups(o.Groupby, g.opts.OrdinalGroupColumn)
			columns := addLevelColumn(remaining, o.LevelAsReference)
			grid.add(g.ordinalDifferencePlot(level, columns, title, o))
			return grid
		}
		columns := addLevelColumn(o.Groupby, o.LevelAsReference)
		grid.add(g.categoricalDifferenceChart(level, columns, title, strings.Join(o.Groupby, ", "), o))
		return grid
	})
}

func (g *Grapher) splitPlot(t models.ResultTable, o DiffOptions, plotGroup func(models.ResultTable) ChartGrid) (ChartGrid, error) {
	if len(t.Rows) == 0 {
		return ChartGrid{}, ErrEmptyTable
	}
	categorical := g.remainingGroups(o.Groupby, g.opts.OrdinalGroupColumn)
	if len(categorical) == 0 || !o.SplitByGroups {
		return plotGroup(t), nil
	}
	var grid ChartGrid
	for _, level := range t.SplitBy(categorical) {
		grid.Charts = append(grid.Charts, plotGroup(level.Table).Charts...)
	}
	return grid, nil
}

// differenceGroup picks the ordinal or categorical chart. ordinalHint holds the
// columns checked for the ordinal group when they differ from groupby.
func (g *Grapher) differenceGroup(t models.ResultTable, groupby []string, o DiffOptions, ordinalHint ...string) ChartGrid {
	var grid ChartGrid
	check := groupby
	if len(ordinalHint) > 0 {
		check = ordinalHint
	}
	title := differenceTitle(t, groupby)
	if g.isOrdinal(check) {
		remaining := g.remainingGroups(groupby, g.opts.OrdinalGroupColumn)
		grid.add(g.ordinalDifferencePlot(t, remaining, title, o))
		return grid
	}
	grid.add(g.categoricalDifferenceChart(t, groupby, title, strings.Join(groupby, ", "), o))
	return grid
}

func (g *Grapher) summaryPlot(levelName string, t models.ResultTable, groupby []string) plot.Figure {
	remaining := g.remainingGroups(g.allGroupColumns, groupby...)
	if g.opts.OrdinalGroupColumn != "" && contains(remaining, g.opts.OrdinalGroupColumn) {
		colors := g.remainingGroups(remaining, g.opts.OrdinalGroupColumn)
		f := g.ordinalPlot(t, colors, false, true)
		f.Title = g.estimateTitle()
		f.YLabel = g.ratio()
		if len(groupby) > 0 {
			f.Subtitle = fmt.Sprintf("%s: %s", strings.Join(groupby, ", "), levelName)
		}
		return f
	}
	return g.categoricalSummaryPlot(levelName, t, remaining, groupby)
}

func (g *Grapher) ordinalDifferencePlot(t models.ResultTable, colors []string, title string, o DiffOptions) plot.Figure {
	f := g.ordinalPlot(t, colors, o.UseAdjustedIntervals, o.Absolute)
	f.Title = title
	f.YLabel = g.differenceLabel(o.Absolute)
	f.ZeroLine = true
	return f
}

// ordinalPlot builds the line chart over the ordinal column, one line per level
// of the colour columns.
func (g *Grapher) ordinalPlot(t models.ResultTable, colors []string, adjusted, absolute bool) plot.Figure {
	numbers := chartNumbers(t, adjusted)
	axisFormat, yMin, yMax := plot.AxisFormatPrecision(numbers, absolute, 0)
	spec := g.tooltipSpec(t, numbers, absolute, adjusted, len(colors) > 0, true)

	f := plot.Figure{
		Kind:       plot.FigureOrdinal,
		XLabel:     g.opts.OrdinalGroupColumn,
		AxisFormat: axisFormat,
		TimeAxis:   t.Schema.OrdinalIsTime,
	}
	f.YMin, f.YMax = plot.PaddedRange(yMin, yMax)

	po := pointOptions{spec: spec, yMin: yMin, yMax: yMax, adjusted: adjusted, granularity: timeGranularity(t)}
	for _, level := range t.SplitBy(colors) {
		group := plot.Group{Name: level.Name}
		outcomes := significance.Outcomes(level.Table.Rows, yMin, yMax, adjusted)
		for i, r := range level.Table.Rows {
			p := g.point(t, r, r.Ordinal, level.Name, po)
			p.Outcome = outcomes[i]
			group.Points = append(group.Points, p)
		}
		f.Groups = append(f.Groups, group)
	}
	return f
}

func (g *Grapher) categoricalSummaryPlot(levelName string, t models.ResultTable, remaining, groupby []string) plot.Figure {
	if len(remaining) == 0 {
		remaining = groupby
	}
	numbers := chartNumbers(t, false)
	axisFormat, yMin, yMax := plot.AxisFormatPrecision(numbers, true, 0)
	spec := g.tooltipSpec(t, numbers, true, false, true, false)

	f := plot.Figure{
		Kind:       plot.FigureWhisker,
		Title:      g.estimateTitle(),
		XLabel:     strings.Join(remaining, ", "),
		YLabel:     g.ratio(),
		AxisFormat: axisFormat,
	}
	if len(groupby) > 0 {
		f.Subtitle = fmt.Sprintf("%s: %s", strings.Join(groupby, ", "), levelName)
	}
	f.YMin, f.YMax = plot.PaddedRange(yMin, yMax)
	f.Categories, f.Groups = g.categoricalPoints(t, remaining, spec, yMin, yMax, false)
	return f
}

func (g *Grapher) categoricalDifferenceChart(t models.ResultTable, groupby []string, title, xLabel string, o DiffOptions) plot.Figure {
	numbers := chartNumbers(t, o.UseAdjustedIntervals)
	axisFormat, yMin, yMax := plot.AxisFormatPrecision(numbers, o.Absolute, 0)
	spec := g.tooltipSpec(t, numbers, o.Absolute, o.UseAdjustedIntervals, true, false)

	f := plot.Figure{
		Kind:       plot.FigureInterval,
		Title:      title,
		XLabel:     xLabel,
		YLabel:     g.differenceLabel(o.Absolute),
		AxisFormat: axisFormat,
		ZeroLine:   true,
	}
	f.YMin, f.YMax = plot.PaddedRange(yMin, yMax)
	f.Categories, f.Groups = g.categoricalPoints(t, groupby, spec, yMin, yMax, o.UseAdjustedIntervals)
	return f
}

// categoricalPoints places rows on a category axis sorted by label.
func (g *Grapher) categoricalPoints(t models.ResultTable, columns []string, spec tooltip.Spec, yMin, yMax float64, adjusted bool) ([]string, []plot.Group) {
	rows := append([]models.ComparisonRow(nil), t.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		return categoryLabel(rows[i], columns) < categoryLabel(rows[j], columns)
	})
	outcomes := significance.Outcomes(rows, yMin, yMax, adjusted)

	po := pointOptions{spec: spec, yMin: yMin, yMax: yMax, adjusted: adjusted, granularity: timeGranularity(t)}
	var categories []string
	index := map[string]int{}
	group := plot.Group{}
	for ri, r := range rows {
		label := categoryLabel(r, columns)
		i, ok := index[label]
		if !ok {
			i = len(categories)
			index[label] = i
			categories = append(categories, label)
		}
		p := g.point(t, r, float64(i), label, po)
		p.Outcome = outcomes[ri]
		group.Points = append(group.Points, p)
	}
	return categories, []plot.Group{group}
}

// pointOptions is shared by all points of one chart.
type pointOptions struct {
	spec        tooltip.Spec
	yMin, yMax  float64
	adjusted    bool
	granularity string
}

func (g *Grapher) point(t models.ResultTable, r models.ComparisonRow, x float64, groupLabel string, po pointOptions) plot.Point {
	lower, upper := r.Bounds(po.adjusted)
	p := plot.Point{
		X:      x,
		Center: r.Center,
		Lower:  significance.ToFinite(lower, po.yMin, po.yMax),
		Upper:  significance.ToFinite(upper, po.yMin, po.yMax),
	}
	if t.Schema.HasNullHypothesis && r.NullHypothesis != nil {
		v := *r.NullHypothesis
		p.NullHypothesis = &v
	}
	p.Tooltip = po.spec.Render(g.fields(t, r, groupLabel, po.adjusted, po.granularity))
	return p
}

func (g *Grapher) tooltipSpec(t models.ResultTable, numbers []float64, absolute, adjusted, hasGroup, ordinal bool) tooltip.Spec {
	numericFormat, _, _ := plot.AxisFormatPrecision(numbers, absolute, 2)
	referenceFormat, _, _ := plot.AxisFormatPrecision(numbers, true, 2)
	return tooltip.BuildSpec(tooltip.Options{
		HasGroup:          hasGroup,
		HasReferenceLevel: t.Schema.HasReferenceLevel && t.IsDifference(),
		Ordinal:           ordinal,
		OrdinalColumn:     g.opts.OrdinalGroupColumn,
		CenterField:       centerField(t),
		RowCount:          len(t.Rows),
		HasNullHypothesis: t.Schema.HasNullHypothesis,
		NumericFormat:     numericFormat,
		ReferenceFormat:   referenceFormat,
		AdjustedIntervals: adjusted,
	})
}

func (g *Grapher) fields(t models.ResultTable, r models.ComparisonRow, groupLabel string, adjusted bool, granularity string) tooltip.Fields {
	lowerName, upperName := models.CILower, models.CIUpper
	if adjusted {
		lowerName, upperName = models.AdjustedLower, models.AdjustedUpper
	}
	lower, upper := r.Bounds(adjusted)
	f := tooltip.Fields{
		tooltip.FieldGroup: groupLabel,
		centerField(t):     r.Center,
		lowerName:          lower,
		upperName:          upper,
	}
	if t.Schema.HasPValue {
		f[tooltip.FieldPValue] = r.PValue
	}
	if t.Schema.HasAdjustedPValue {
		f[tooltip.FieldAdjustedP] = r.AdjustedPValue
	}
	if t.Schema.HasReferenceLevel {
		ref := r.ReferenceLevel
		if ref == "" {
			ref = r.Level1
		}
		f[tooltip.FieldReferenceLevel] = ref
		f[tooltip.FieldReferenceLevelAvg] = r.ReferenceLevelValue
	}
	if r.NullHypothesis != nil {
		f[tooltip.FieldNullHypothesis] = *r.NullHypothesis
	}
	if col := g.opts.OrdinalGroupColumn; col != "" {
		if t.Schema.OrdinalIsTime {
			f[col] = plot.FormatOrdinalTime(r.Ordinal, granularity)
		} else {
			f[col] = r.Ordinal
		}
	}
	return f
}

func (g *Grapher) isOrdinal(groupby []string) bool {
	return g.opts.OrdinalGroupColumn != "" && contains(groupby, g.opts.OrdinalGroupColumn)
}

// remainingGroups returns groups without the excluded columns.
func (g *Grapher) remainingGroups(groups []string, exclude ...string) []string {
	var res []string
	for _, c := range groups {
		if !contains(exclude, c) {
			res = append(res, c)
		}
	}
	return res
}

func (g *Grapher) ratio() string {
	return fmt.Sprintf("%s / %s", g.opts.Numerator, g.opts.Denominator)
}

func (g *Grapher) estimateTitle() string {
	return "Estimate of " + g.ratio()
}

func (g *Grapher) differenceLabel(absolute bool) string {
	changeType := "Relative"
	if absolute {
		changeType = "Absolute"
	}
	return changeType + " change in " + g.ratio()
}

func differenceTitle(t models.ResultTable, groupby []string) string {
	if contains(groupby, models.Level1) && contains(groupby, models.Level2) {
		return "Change from level_1 to level_2"
	}
	return fmt.Sprintf("Change from %s to %s", t.Rows[0].Level1, t.Rows[0].Level2)
}

func multipleDifferenceTitle(t models.ResultTable, levelAsReference bool) string {
	reference := t.Rows[0].Level2
	if levelAsReference {
		reference = t.Rows[0].Level1
	}
	return "Comparison to " + reference
}

func addLevelColumn(groupby []string, levelAsReference bool) []string {
	level := models.Level1
	if levelAsReference {
		level = models.Level2
	}
	return append(append([]string(nil), groupby...), level)
}

func addLevelColumns(groupby []string) []string {
	return append(append([]string(nil), groupby...), models.Level1, models.Level2)
}

func categoryLabel(r models.ComparisonRow, columns []string) string {
	if len(columns) == 0 {
		return "Difference"
	}
	return r.GroupLabel(columns)
}

func centerField(t models.ResultTable) string {
	if t.Schema.Center == "" {
		return models.PointEstimate
	}
	return t.Schema.Center
}

// chartNumbers collects bounds, centres and null hypotheses for the axis format.
func chartNumbers(t models.ResultTable, adjusted bool) []float64 {
	numbers := make([]float64, 0, len(t.Rows)*4)
	for _, r := range t.Rows {
		lower, upper := r.Bounds(adjusted)
		numbers = append(numbers, lower, r.Center, upper)
		if t.Schema.HasNullHypothesis && r.NullHypothesis != nil {
			numbers = append(numbers, *r.NullHypothesis)
		}
	}
	return numbers
}

// timeGranularity matches the time axis, so tooltips show the hour when the
// axis does.
func timeGranularity(t models.ResultTable) string {
	ordinals := make([]float64, 0, len(t.Rows))
	for _, r := range t.Rows {
		ordinals = append(ordinals, r.Ordinal)
	}
	return plot.TimeGranularity(ordinals)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

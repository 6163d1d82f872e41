package grapher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivolan/confidence_charts/domain/models"
	"github.com/pivolan/confidence_charts/plot"
	"github.com/pivolan/confidence_charts/significance"
)

func f64(v float64) *float64 { return &v }

func testGrapher() *Grapher {
	return New(Options{
		Numerator:               "clicks",
		Denominator:             "users",
		CategoricalGroupColumns: []string{"country"},
		OrdinalGroupColumn:      "date",
	})
}

func differenceTable() models.ResultTable {
	row := func(country string, day, lower, center, upper float64) models.ComparisonRow {
		return models.ComparisonRow{
			Groups:              map[string]string{"country": country, "date": day2date(day)},
			Ordinal:             1704067200 + day*86400,
			Level1:              "control",
			Level2:              "treatment",
			Center:              center,
			Lower:               lower,
			Upper:               upper,
			AdjustedLower:       lower - 0.01,
			AdjustedUpper:       upper + 0.01,
			NullHypothesis:      f64(0),
			Preference:          models.PreferenceIncrease,
			PValue:              0.01,
			AdjustedPValue:      0.02,
			ReferenceLevel:      "control",
			ReferenceLevelValue: 0.1,
		}
	}
	return models.ResultTable{
		Schema: models.Schema{
			Center:               models.Difference,
			HasNullHypothesis:    true,
			HasPValue:            true,
			HasAdjustedPValue:    true,
			HasReferenceLevel:    true,
			HasAdjustedIntervals: true,
			HasLevels:            true,
			OrdinalIsTime:        true,
		},
		Rows: []models.ComparisonRow{
			row("us", 0, 0.01, 0.03, 0.05),
			row("se", 0, -0.01, 0.02, 0.05),
			row("us", 1, 0.02, 0.04, 0.06),
			row("se", 1, -0.02, 0.01, 0.04),
		},
	}
}

func summaryTable() models.ResultTable {
	row := func(variant string, day, center float64) models.ComparisonRow {
		return models.ComparisonRow{
			Groups:  map[string]string{"country": variant, "date": day2date(day)},
			Ordinal: 1704067200 + day*86400,
			Center:  center,
			Lower:   center - 0.02,
			Upper:   center + 0.02,
		}
	}
	return models.ResultTable{
		Schema: models.Schema{Center: models.PointEstimate, OrdinalIsTime: true},
		Rows: []models.ComparisonRow{
			row("us", 0, 0.1), row("se", 0, 0.12),
			row("us", 1, 0.11), row("se", 1, 0.13),
		},
	}
}

func day2date(day float64) string {
	return plot.FormatOrdinalTime(1704067200+day*86400, "day")
}

func firstDay(t models.ResultTable) models.ResultTable {
	return t.WithRows(t.Rows[:2])
}

func labels(p plot.Point) []string {
	var res []string
	for _, l := range p.Tooltip {
		res = append(res, l.Label)
	}
	return res
}

func TestPlotDifferenceCategorical(t *testing.T) {
	grid, err := testGrapher().PlotDifference(firstDay(differenceTable()), DiffOptions{Groupby: []string{"country"}})
	require.NoError(t, err)
	require.Len(t, grid.Charts, 1)

	f := grid.Charts[0].Figure
	assert.Equal(t, plot.FigureInterval, f.Kind)
	assert.Equal(t, "Change from control to treatment", f.Title)
	assert.Equal(t, "Relative change in clicks / users", f.YLabel)
	assert.Equal(t, "country", f.XLabel)
	assert.True(t, f.ZeroLine)
	assert.Equal(t, []string{"se", "us"}, f.Categories)

	points := f.Groups[0].Points
	require.Len(t, points, 2)
	assert.Equal(t, 0.0, points[0].X)
	assert.Equal(t, significance.Adverse, points[0].Outcome)
	assert.Equal(t, significance.Neutral, points[1].Outcome)
	assert.Equal(t, []string{"group", "reference level", "difference", "confidence interval",
		"p-value", "adjusted p-value", "null hypothesis"}, labels(points[0]))
	assert.Equal(t, "se", points[0].Tooltip[0].Text)
	assert.Equal(t, "control: 0.10000", points[0].Tooltip[1].Text)
}

func TestPlotDifferenceAbsoluteAdjusted(t *testing.T) {
	grid, err := testGrapher().PlotDifference(firstDay(differenceTable()), DiffOptions{
		Groupby:              []string{"country"},
		Absolute:             true,
		UseAdjustedIntervals: true,
	})
	require.NoError(t, err)
	f := grid.Charts[0].Figure
	assert.Equal(t, "Absolute change in clicks / users", f.YLabel)
	p := f.Groups[0].Points[1]
	assert.InDelta(t, 0.0, p.Lower, 1e-12)
	assert.InDelta(t, 0.06, p.Upper, 1e-12)
	assert.Equal(t, "adjusted confidence interval", p.Tooltip[3].Label)
}

func TestPlotDifferenceClampsInfiniteBounds(t *testing.T) {
	table := firstDay(differenceTable())
	table.Rows[0].Upper = math.Inf(1)
	grid, err := testGrapher().PlotDifference(table, DiffOptions{Groupby: []string{"country"}})
	require.NoError(t, err)
	us := grid.Charts[0].Figure.Groups[0].Points[1]
	assert.Equal(t, 0.05, us.Upper)
}

func TestPlotDifferenceSplit(t *testing.T) {
	grid, err := testGrapher().PlotDifference(firstDay(differenceTable()), DiffOptions{
		Groupby:       []string{"country"},
		SplitByGroups: true,
	})
	require.NoError(t, err)
	require.Len(t, grid.Charts, 2)
	assert.Equal(t, []string{"us"}, grid.Charts[0].Figure.Categories)
	assert.Equal(t, []string{"se"}, grid.Charts[1].Figure.Categories)
}

func TestPlotDifferenceOrdinal(t *testing.T) {
	g := testGrapher()
	grid, err := g.PlotDifference(differenceTable(), DiffOptions{Groupby: []string{"date", "country"}})
	require.NoError(t, err)
	require.Len(t, grid.Charts, 1)

	f := grid.Charts[0].Figure
	assert.Equal(t, plot.FigureOrdinal, f.Kind)
	assert.Equal(t, "date", f.XLabel)
	assert.True(t, f.TimeAxis)
	assert.True(t, f.ZeroLine)
	require.Len(t, f.Groups, 2)
	assert.Equal(t, "us", f.Groups[0].Name)
	assert.Equal(t, "se", f.Groups[1].Name)
	assert.Len(t, f.Groups[0].Points, 2)
	assert.Equal(t, "date", f.Groups[0].Points[0].Tooltip[2].Label)
	assert.Equal(t, "2024-01-01", f.Groups[0].Points[0].Tooltip[2].Text)

	grid, err = g.PlotDifference(differenceTable(), DiffOptions{Groupby: []string{"date", "country"}, SplitByGroups: true})
	require.NoError(t, err)
	assert.Len(t, grid.Charts, 2)
}

func TestPlotDifferenceHourlyTooltip(t *testing.T) {
	table := differenceTable()
	for i := range table.Rows {
		table.Rows[i].Ordinal += 3600
	}
	grid, err := testGrapher().PlotDifference(table, DiffOptions{Groupby: []string{"date", "country"}})
	require.NoError(t, err)
	p := grid.Charts[0].Figure.Groups[0].Points[0]
	assert.Equal(t, "date", p.Tooltip[2].Label)
	assert.Equal(t, "2024-01-01 01:00", p.Tooltip[2].Text)
}

func TestPlotDifferences(t *testing.T) {
	grid, err := testGrapher().PlotDifferences(firstDay(differenceTable()), DiffOptions{Groupby: []string{"country"}})
	require.NoError(t, err)
	f := grid.Charts[0].Figure
	assert.Equal(t, "Change from level_1 to level_2", f.Title)
	assert.Equal(t, []string{"se, control, treatment", "us, control, treatment"}, f.Categories)

	grid, err = testGrapher().PlotDifferences(differenceTable(), DiffOptions{Groupby: []string{"date"}})
	require.NoError(t, err)
	f = grid.Charts[0].Figure
	assert.Equal(t, plot.FigureOrdinal, f.Kind)
	require.Len(t, f.Groups, 1)
	assert.Equal(t, "control, treatment", f.Groups[0].Name)
}

func TestPlotMultipleDifference(t *testing.T) {
	g := testGrapher()
	grid, err := g.PlotMultipleDifference(firstDay(differenceTable()), DiffOptions{Groupby: []string{"country"}})
	require.NoError(t, err)
	f := grid.Charts[0].Figure
	assert.Equal(t, "Comparison to treatment", f.Title)
	assert.Equal(t, []string{"se, control", "us, control"}, f.Categories)

	grid, err = g.PlotMultipleDifference(firstDay(differenceTable()), DiffOptions{
		Groupby:          []string{"country"},
		LevelAsReference: true,
	})
	require.NoError(t, err)
	f = grid.Charts[0].Figure
	assert.Equal(t, "Comparison to control", f.Title)
	assert.Equal(t, []string{"se, treatment", "us, treatment"}, f.Categories)

	grid, err = g.PlotMultipleDifference(differenceTable(), DiffOptions{Groupby: []string{"date", "country"}})
	require.NoError(t, err)
	f = grid.Charts[0].Figure
	assert.Equal(t, plot.FigureOrdinal, f.Kind)
	assert.Equal(t, "us, control", f.Groups[0].Name)
}

func TestPlotSummary(t *testing.T) {
	g := testGrapher()
	grid, err := g.PlotSummary(summaryTable(), nil)
	require.NoError(t, err)
	require.Len(t, grid.Charts, 1)
	f := grid.Charts[0].Figure
	assert.Equal(t, plot.FigureOrdinal, f.Kind)
	assert.Equal(t, "Estimate of clicks / users", f.Title)
	assert.Equal(t, "clicks / users", f.YLabel)
	assert.Len(t, f.Groups, 2)
	assert.Equal(t, []string{"group", "date", "point_estimate", "confidence interval"}, labels(f.Groups[0].Points[0]))

	grid, err = g.PlotSummary(summaryTable(), []string{"date"})
	require.NoError(t, err)
	require.Len(t, grid.Charts, 2)
	f = grid.Charts[0].Figure
	assert.Equal(t, plot.FigureWhisker, f.Kind)
	assert.Equal(t, "date: 2024-01-01", f.Subtitle)
	assert.Equal(t, []string{"se", "us"}, f.Categories)
}

func TestPlotSummaryCategorical(t *testing.T) {
	g := New(Options{Numerator: "clicks", Denominator: "users", CategoricalGroupColumns: []string{"country"}})
	grid, err := g.PlotSummary(firstDay(summaryTable()), nil)
	require.NoError(t, err)
	f := grid.Charts[0].Figure
	assert.Equal(t, plot.FigureWhisker, f.Kind)
	assert.Empty(t, f.Subtitle)
	assert.Equal(t, []string{"se", "us"}, f.Categories)
	assert.Equal(t, 0.12, f.Groups[0].Points[0].Center)
}

func TestPlotEmptyTable(t *testing.T) {
	g := testGrapher()
	_, err := g.PlotSummary(models.ResultTable{}, nil)
	assert.ErrorIs(t, err, ErrEmptyTable)
	_, err = g.PlotDifference(models.ResultTable{}, DiffOptions{})
	assert.ErrorIs(t, err, ErrEmptyTable)
}

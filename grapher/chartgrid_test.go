package grapher

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivolan/confidence_charts/plot"
)

type fakePublisher struct {
	names    []string
	captions []string
	err      error
}

func (p *fakePublisher) SendChart(fileName string, data []byte, caption string) error {
	p.names = append(p.names, fileName)
	p.captions = append(p.captions, caption)
	return p.err
}

func testGrid(t *testing.T) ChartGrid {
	grid, err := testGrapher().PlotDifference(differenceTable(), DiffOptions{
		Groupby:       []string{"date", "country"},
		SplitByGroups: true,
	})
	require.NoError(t, err)
	return grid
}

func TestShowPNG(t *testing.T) {
	dir := t.TempDir()
	rc, err := NewRenderContext(filepath.Join(dir, "charts"), plot.Style{Width: 400, Height: 300}, nil)
	require.NoError(t, err)
	pub := &fakePublisher{err: errors.New("chat not found")}
	rc.Publisher = pub

	paths, err := testGrid(t).Show(rc, FormatPNG)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	for _, p := range paths {
		assert.True(t, strings.HasSuffix(p, ".png"))
		assert.True(t, strings.HasPrefix(filepath.Base(p), "change_from_control_to_treatment_"))
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
	assert.Len(t, pub.names, 2)
	assert.Equal(t, "Change from control to treatment", pub.captions[0])
}

func TestShowHTML(t *testing.T) {
	rc, err := NewRenderContext(t.TempDir(), plot.Style{}, nil)
	require.NoError(t, err)
	paths, err := testGrid(t).Show(rc, FormatHTML)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "Change from control to treatment")
}

func TestShowMissingValues(t *testing.T) {
	table := differenceTable()
	table.Rows[0].Lower = math.NaN()
	table.Rows[3].Center = math.NaN()
	g := testGrapher()
	ordinal, err := g.PlotDifference(table, DiffOptions{Groupby: []string{"date", "country"}})
	require.NoError(t, err)
	categorical, err := g.PlotDifference(firstDay(table), DiffOptions{Groupby: []string{"country"}})
	require.NoError(t, err)
	grid := ChartGrid{Charts: append(ordinal.Charts, categorical.Charts...)}

	for _, format := range []Format{FormatPNG, FormatHTML} {
		t.Run(string(format), func(t *testing.T) {
			var logs bytes.Buffer
			rc, err := NewRenderContext(t.TempDir(), plot.Style{Width: 400, Height: 300}, log.New(&logs))
			require.NoError(t, err)
			paths, err := grid.Show(rc, format)
			require.NoError(t, err)
			require.NotEmpty(t, paths)
			data, err := os.ReadFile(paths[0])
			require.NoError(t, err)
			assert.NotEmpty(t, data)
			if format == FormatHTML {
				assert.Contains(t, string(data), "</html>")
			}
			assert.Contains(t, logs.String(), "chart has missing values")
		})
	}
}

func TestShowErrors(t *testing.T) {
	rc, err := NewRenderContext(t.TempDir(), plot.Style{}, nil)
	require.NoError(t, err)

	_, err = testGrid(t).Show(rc, Format("svg"))
	assert.EqualError(t, err, `unknown output format "svg"`)

	paths, err := ChartGrid{}.Show(rc, FormatPNG)
	assert.NoError(t, err)
	assert.Empty(t, paths)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)
	f, err = ParseFormat(" HTML ")
	require.NoError(t, err)
	assert.Equal(t, FormatHTML, f)
	_, err = ParseFormat("bokeh")
	assert.Error(t, err)
}

func TestChartFileName(t *testing.T) {
	name := chartFileName("Сравнение с control (date: 2024)", "png")
	assert.True(t, strings.HasPrefix(name, "sravnenie_s_control_date_2024_"), name)
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.Len(t, name, len("sravnenie_s_control_date_2024_")+8+len(".png"))

	assert.True(t, strings.HasPrefix(chartFileName("???", "html"), "chart_"))
}

func TestRemoveOldFiles(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "sub", "old.png")
	fresh := filepath.Join(dir, "fresh.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(old), os.ModePerm))
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o644))
	past := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	require.NoError(t, RemoveOldFiles(dir, time.Now().Add(-2*time.Hour)))
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
}

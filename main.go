package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pivolan/confidence_charts/config"
	"github.com/pivolan/confidence_charts/domain/models"
	"github.com/pivolan/confidence_charts/grapher"
	"github.com/pivolan/confidence_charts/report"
	"github.com/pivolan/confidence_charts/significance"
	"github.com/pivolan/confidence_charts/tableio"
	"github.com/pivolan/confidence_charts/telegram"
)

var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: false,
})

var version = "dev"

// loadConfig is config.GetConfig in the binary; tests swap in config.Load so
// every run reads its own env file.
var loadConfig = config.GetConfig

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type plotKind string

const (
	plotSummary    plotKind = "summary"
	plotDifference plotKind = "difference"
	plotDiffs      plotKind = "differences"
	plotMultiple   plotKind = "multiple"
)

// plotParams holds the parsed flags shared by all plot commands.
type plotParams struct {
	input            string
	dbTable          string
	numerator        string
	denominator      string
	groups           []string
	ordinal          string
	groupby          []string
	absolute         bool
	adjusted         bool
	split            bool
	levelAsReference bool
	format           string
	out              string
	style            string
	telegram         bool
	markdown         bool
	maxAge           time.Duration
	envFile          string
	stdout           io.Writer
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "confidence_charts",
		Short: "Charts of confidence intervals for experiment results",
		Long: `confidence_charts reads a table of estimates or differences with
confidence intervals and draws summary, difference and comparison charts
as PNG files or an interactive HTML page.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	for _, kind := range []plotKind{plotSummary, plotDifference, plotDiffs, plotMultiple} {
		root.AddCommand(newPlotCmd(kind, stdout))
	}
	return root
}

var plotShort = map[plotKind]string{
	plotSummary:    "Plot point estimates per group",
	plotDifference: "Plot the difference between two levels",
	plotDiffs:      "Plot all pairwise differences",
	plotMultiple:   "Plot every level compared to a reference level",
}

func newPlotCmd(kind plotKind, stdout io.Writer) *cobra.Command {
	p := plotParams{stdout: stdout}
	cmd := &cobra.Command{
		Use:   string(kind),
		Short: plotShort[kind],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(kind, p)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&p.input, "input", "i", "", "results CSV file (.csv, .gz, .lz4 or .zip)")
	f.StringVar(&p.dbTable, "db-table", "", "read results from this table of DB_DSN instead of a file")
	f.StringVar(&p.numerator, "numerator", "numerator", "numerator name used in titles")
	f.StringVar(&p.denominator, "denominator", "denominator", "denominator name used in titles")
	f.StringSliceVar(&p.groups, "groups", nil, "categorical group columns")
	f.StringVar(&p.ordinal, "ordinal", "", "ordinal group column, e.g. a date")
	f.StringSliceVar(&p.groupby, "groupby", nil, "columns to group the chart by")
	f.StringVar(&p.format, "format", "", "output format: png or html (default OUTPUT_FORMAT)")
	f.StringVarP(&p.out, "out", "o", "", "output directory (default OUTPUT_DIR)")
	f.StringVar(&p.style, "style", "", "YAML chart style file (default CHART_STYLE)")
	f.StringVar(&p.envFile, "env", ".env", "dotenv file")
	f.BoolVar(&p.telegram, "telegram", false, "send PNG charts to TG_CHAT_ID")
	f.BoolVar(&p.markdown, "markdown", false, "print the results table as markdown")
	f.DurationVar(&p.maxAge, "max-age", 0, "remove files older than this from the output directory, e.g. 24h")
	if kind != plotSummary {
		f.BoolVar(&p.absolute, "absolute", false, "differences are absolute, not relative")
		f.BoolVar(&p.adjusted, "adjusted", false, "plot adjusted confidence intervals")
		f.BoolVar(&p.split, "split", false, "one chart per categorical group level")
	}
	if kind == plotMultiple {
		f.BoolVar(&p.levelAsReference, "level-as-reference", false, "level_1 is the reference level")
	}
	return cmd
}

// runPlot is the testable body of the plot commands.
func runPlot(kind plotKind, p plotParams) error {
	cfg, err := loadConfig(p.envFile)
	if err != nil {
		return err
	}
	if p.format == "" {
		p.format = cfg.OutputFormat
	}
	if p.out == "" {
		p.out = cfg.OutputDir
	}
	if p.style == "" {
		p.style = cfg.ChartStyle
	}
	// колонки в таблице приводятся к нижнему регистру
	p.groups, p.groupby = lowerAll(p.groups), lowerAll(p.groupby)
	p.ordinal = strings.ToLower(strings.TrimSpace(p.ordinal))

	format, err := grapher.ParseFormat(p.format)
	if err != nil {
		return err
	}
	style, err := config.LoadStyle(p.style)
	if err != nil {
		return err
	}

	table, err := loadTable(p, cfg)
	if err != nil {
		return err
	}
	if p.adjusted && !table.Schema.HasAdjustedIntervals {
		return fmt.Errorf("table has no adjusted confidence intervals")
	}
	if kind != plotSummary && !table.IsDifference() {
		return fmt.Errorf("%s needs a table of differences", kind)
	}
	logger.Info("table loaded", "rows", len(table.Rows), "center", table.Schema.Center)

	g := grapher.New(grapher.Options{
		Numerator:               p.numerator,
		Denominator:             p.denominator,
		CategoricalGroupColumns: p.groups,
		OrdinalGroupColumn:      p.ordinal,
	})
	opts := grapher.DiffOptions{
		Absolute:             p.absolute,
		Groupby:              p.groupby,
		LevelAsReference:     p.levelAsReference,
		UseAdjustedIntervals: p.adjusted,
		SplitByGroups:        p.split,
	}
	var grid grapher.ChartGrid
	switch kind {
	case plotSummary:
		grid, err = g.PlotSummary(table, p.groupby)
	case plotDifference:
		grid, err = g.PlotDifference(table, opts)
	case plotDiffs:
		grid, err = g.PlotDifferences(table, opts)
	case plotMultiple:
		grid, err = g.PlotMultipleDifference(table, opts)
	default:
		return fmt.Errorf("unknown plot %q", kind)
	}
	if err != nil {
		return err
	}

	rc, err := grapher.NewRenderContext(p.out, style, logger)
	if err != nil {
		return err
	}
	if p.telegram {
		if cfg.TgToken == "" || cfg.TgChatID == 0 {
			return fmt.Errorf("TG_TOKEN and TG_CHAT_ID are required to send charts")
		}
		sender, err := telegram.NewSender(cfg.TgToken, cfg.TgChatID, logger)
		if err != nil {
			return err
		}
		rc.Publisher = sender
	}
	if p.maxAge > 0 {
		if err := grapher.RemoveOldFiles(rc.OutputDir, time.Now().Add(-p.maxAge)); err != nil {
			return fmt.Errorf("error removing old charts: %w", err)
		}
	}
	paths, err := grid.Show(rc, format)
	if err != nil {
		return err
	}
	logger.Info("charts rendered", "charts", len(grid.Charts), "files", len(paths))

	outcomes := significance.Outcomes(table.Rows, math.Inf(-1), math.Inf(1), p.adjusted)
	if p.markdown {
		fmt.Fprintln(p.stdout, report.GenerateTableMarkdown(table, outcomes))
	} else {
		fmt.Fprintln(p.stdout, report.GenerateTable(table, outcomes))
	}
	for _, path := range paths {
		fmt.Fprintln(p.stdout, path)
	}
	return nil
}

func loadTable(p plotParams, cfg *config.Config) (models.ResultTable, error) {
	opts := tableio.Options{OrdinalColumn: p.ordinal}
	if len(p.groups) > 0 {
		opts.GroupColumns = p.groups
	}
	switch {
	case p.input != "" && p.dbTable != "":
		return models.ResultTable{}, fmt.Errorf("--input and --db-table are mutually exclusive")
	case p.dbTable != "":
		if cfg.DbDsn == "" {
			return models.ResultTable{}, fmt.Errorf("DB_DSN is required with --db-table")
		}
		db, err := tableio.OpenDB(cfg.DbDsn)
		if err != nil {
			return models.ResultTable{}, err
		}
		logger.Info("reading table", "table", p.dbTable)
		return tableio.LoadFromDB(db, p.dbTable, opts)
	case p.input != "":
		r, err := tableio.Open(p.input)
		if err != nil {
			return models.ResultTable{}, err
		}
		defer r.Close()
		logger.Info("reading file", "path", p.input)
		table, err := tableio.ReadCSV(r, opts)
		if err != nil {
			return models.ResultTable{}, fmt.Errorf("%s: %w", p.input, err)
		}
		return table, nil
	}
	return models.ResultTable{}, fmt.Errorf("either --input or --db-table is required")
}

func lowerAll(columns []string) []string {
	res := make([]string, 0, len(columns))
	for _, c := range columns {
		res = append(res, strings.ToLower(strings.TrimSpace(c)))
	}
	return res
}

package grapher

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mozillazg/go-unidecode"
	uuid "github.com/satori/go.uuid"

	"github.com/pivolan/confidence_charts/plot"
)

type Format string

const (
	FormatPNG  Format = "png"
	FormatHTML Format = "html"
)

// ParseFormat accepts "png" and "html"; empty means png.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Chart is one figure of a grid. The figure kind selects how it is drawn.
type Chart struct {
	Figure plot.Figure
}

func (c Chart) Title() string {
	return c.Figure.FullTitle()
}

// ChartGrid is an ordered collection of charts produced by one plot call.
type ChartGrid struct {
	Charts []Chart
}

func (g *ChartGrid) add(f plot.Figure) {
	g.Charts = append(g.Charts, Chart{Figure: f})
}

func (g ChartGrid) Figures() []plot.Figure {
	figures := make([]plot.Figure, 0, len(g.Charts))
	for _, c := range g.Charts {
		figures = append(figures, c.Figure)
	}
	return figures
}

// Publisher sends a rendered PNG chart somewhere, e.g. a Telegram chat.
type Publisher interface {
	SendChart(fileName string, data []byte, caption string) error
}

// RenderContext carries everything needed to put charts on a surface.
type RenderContext struct {
	OutputDir string
	Style     plot.Style
	Logger    *log.Logger
	Publisher Publisher
}

func NewRenderContext(outputDir string, style plot.Style, logger *log.Logger) (*RenderContext, error) {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("error creating output dir %s: %w", outputDir, err)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &RenderContext{OutputDir: outputDir, Style: style.WithDefaults(), Logger: logger}, nil
}

// Show renders the grid and returns the written file paths: one PNG per chart,
// or one HTML page holding all charts.
func (g ChartGrid) Show(rc *RenderContext, format Format) ([]string, error) {
	if len(g.Charts) == 0 {
		return nil, nil
	}
	for _, c := range g.Charts {
		if n := c.Figure.MissingValues(); n > 0 {
			rc.Logger.Warn("chart has missing values", "title", c.Title(), "points", n)
		}
	}
	switch format {
	case FormatPNG:
		return g.showPNG(rc)
	case FormatHTML:
		return g.showHTML(rc)
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

func (g ChartGrid) showPNG(rc *RenderContext) ([]string, error) {
	var paths []string
	for _, c := range g.Charts {
		data, err := plot.DrawPNG(c.Figure, rc.Style)
		if err != nil {
			return paths, err
		}
		fileName := chartFileName(c.Title(), string(FormatPNG))
		path := filepath.Join(rc.OutputDir, fileName)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("error writing chart %s: %w", path, err)
		}
		rc.Logger.Info("chart written", "path", path, "bytes", len(data))
		paths = append(paths, path)

		if rc.Publisher != nil {
			if err := rc.Publisher.SendChart(fileName, data, c.Title()); err != nil {
				rc.Logger.Error("chart not sent", "title", c.Title(), "err", err)
			}
		}
	}
	return paths, nil
}

func (g ChartGrid) showHTML(rc *RenderContext) ([]string, error) {
	title := g.Charts[0].Title()
	var buf bytes.Buffer
	if err := plot.RenderHTMLPage(&buf, title, g.Figures(), rc.Style); err != nil {
		return nil, fmt.Errorf("error rendering page %q: %w", title, err)
	}
	path := filepath.Join(rc.OutputDir, chartFileName(title, string(FormatHTML)))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("error writing page %s: %w", path, err)
	}
	rc.Logger.Info("page written", "path", path, "charts", len(g.Charts))
	return []string{path}, nil
}

// RemoveOldFiles deletes rendered files older than maxAge under dirPath.
func RemoveOldFiles(dirPath string, maxAge time.Time) error {
	files, err := os.ReadDir(dirPath)
	if err != nil {
		return err
	}
	for _, file := range files {
		filePath := filepath.Join(dirPath, file.Name())
		if file.IsDir() {
			if err := RemoveOldFiles(filePath, maxAge); err != nil {
				return err
			}
			continue
		}
		info, err := file.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(maxAge) {
			if err := os.Remove(filePath); err != nil {
				return err
			}
		}
	}
	return nil
}

var nonAlphanumeric = regexp.MustCompile("[^a-zA-Z0-9]+")

func replaceSpecialSymbols(input string) string {
	// Заменяем все не буквенно-цифровые символы на подчеркивание
	processed := nonAlphanumeric.ReplaceAllString(input, "_")
	return strings.Trim(processed, "_")
}

// chartFileName builds an ascii file name from a title with a short random suffix.
func chartFileName(title, ext string) string {
	slug := strings.ToLower(replaceSpecialSymbols(unidecode.Unidecode(title)))
	if slug == "" {
		slug = "chart"
	}
	return fmt.Sprintf("%s_%s.%s", slug, uuid.NewV4().String()[:8], ext)
}

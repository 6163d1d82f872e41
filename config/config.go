package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pivolan/confidence_charts/plot"
)

type Config struct {
	DbDsn        string
	TgToken      string
	TgChatID     int64
	OutputDir    string
	OutputFormat string
	ChartStyle   string
}

var (
	config    *Config
	configErr error
	once      sync.Once
)

// GetConfig возвращает singleton экземпляр конфигурации. Файлы читаются только
// при первом вызове, ошибка первой загрузки возвращается и дальше.
func GetConfig(paths ...string) (*Config, error) {
	once.Do(func() {
		config, configErr = Load(paths...)
	})
	if configErr != nil {
		return nil, configErr
	}
	return config, nil
}

// Load reads .env files (missing files are skipped) and the environment.
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	c := &Config{
		DbDsn:        os.Getenv("DB_DSN"),
		TgToken:      os.Getenv("TG_TOKEN"),
		OutputDir:    os.Getenv("OUTPUT_DIR"),
		OutputFormat: os.Getenv("OUTPUT_FORMAT"),
		ChartStyle:   os.Getenv("CHART_STYLE"),
	}
	if c.OutputDir == "" {
		c.OutputDir = "charts"
	}
	if c.OutputFormat == "" {
		c.OutputFormat = "png"
	}
	if s := os.Getenv("TG_CHAT_ID"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TG_CHAT_ID %q: %w", s, err)
		}
		c.TgChatID = id
	}
	return c, nil
}

// LoadStyle reads a YAML chart style; an empty path gives the default style.
func LoadStyle(path string) (plot.Style, error) {
	if path == "" {
		return plot.DefaultStyle(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return plot.Style{}, fmt.Errorf("error reading chart style: %w", err)
	}
	var style plot.Style
	if err := yaml.Unmarshal(data, &style); err != nil {
		return plot.Style{}, fmt.Errorf("error parsing chart style %s: %w", path, err)
	}
	return style.WithDefaults(), nil
}

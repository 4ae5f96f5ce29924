// Package config loads the report configuration from config.yaml, an optional
// .env file and REPORT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Source kinds understood by the fetch layer.
const (
	SourceSheets = "sheets"
	SourceGCS    = "gcs"
	SourceS3     = "s3"
)

// Config stores all configuration for the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	LogLevel  string        `mapstructure:"log_level"`
	LogFormat string        `mapstructure:"log_format"`
	Server    ServerConfig  `mapstructure:"server"`
	Source    SourceConfig  `mapstructure:"source"`
	Sheets    []string      `mapstructure:"sheets"`
	Columns   ColumnsConfig `mapstructure:"columns"`
	Report    ReportConfig  `mapstructure:"report"`
	Theme     ThemeConfig   `mapstructure:"theme"`
}

// ServerConfig defines the HTTP API settings.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// SourceConfig defines where the CSV export for a sheet label is fetched from.
type SourceConfig struct {
	Kind            string        `mapstructure:"kind"`
	SpreadsheetID   string        `mapstructure:"spreadsheet_id"`
	BaseURL         string        `mapstructure:"base_url"`
	Bucket          string        `mapstructure:"bucket"`
	Prefix          string        `mapstructure:"prefix"`
	Region          string        `mapstructure:"region"`
	CredentialsFile string        `mapstructure:"credentials_file"`
	Anonymous       bool          `mapstructure:"anonymous"`
	Timeout         time.Duration `mapstructure:"timeout"`
	UserAgent       string        `mapstructure:"user_agent"`
}

// ColumnsConfig maps the header names of the source sheet to record fields.
type ColumnsConfig struct {
	Date     string `mapstructure:"date"`
	Time     string `mapstructure:"time"`
	Matchup  string `mapstructure:"matchup"`
	Method   string `mapstructure:"method"`
	Realized string `mapstructure:"realized"`
	Profit   string `mapstructure:"profit"`
}

// ReportConfig defines the report-level constants.
type ReportConfig struct {
	StakeValue     float64 `mapstructure:"stake_value"`
	PageSize       int     `mapstructure:"page_size"`
	CurrencySymbol string  `mapstructure:"currency_symbol"`
	TitlePrefix    string  `mapstructure:"title_prefix"`
}

// ThemeConfig defines the chart styling handed to the presentation layer.
type ThemeConfig struct {
	Template      string  `mapstructure:"template"`
	LineColor     string  `mapstructure:"line_color"`
	FontColor     string  `mapstructure:"font_color"`
	LineWidth     float64 `mapstructure:"line_width"`
	MarkerSize    float64 `mapstructure:"marker_size"`
	TitleFontSize int     `mapstructure:"title_font_size"`
	TickAngle     int     `mapstructure:"tick_angle"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "console",
		Server:    ServerConfig{Port: 8080},
		Source: SourceConfig{
			Kind:          SourceSheets,
			SpreadsheetID: "1u0CPINUTdbYaL4tzsZ-wYWVgGO2Rq3zJkRsR5dpVvAU",
			BaseURL:       "https://docs.google.com",
			Timeout:       15 * time.Second,
			UserAgent:     "profit-report/1.0",
		},
		Sheets: []string{"CSCorito_Abril", "CSCorito_Maio"},
		Columns: ColumnsConfig{
			Date:     "DATA",
			Time:     "HR",
			Matchup:  "CONFRONTO",
			Method:   "Método",
			Realized: "REALIZADA?",
			Profit:   "PROFIT",
		},
		Report: ReportConfig{
			StakeValue:     1000.0,
			PageSize:       20,
			CurrencySymbol: "R$",
			TitlePrefix:    "CSCorito",
		},
		Theme: ThemeConfig{
			Template:      "plotly_dark",
			LineColor:     "#39FF14",
			FontColor:     "white",
			LineWidth:     2,
			MarkerSize:    8,
			TitleFontSize: 14,
			TickAngle:     -45,
		},
	}
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error; defaults and env apply.
func LoadConfig(path string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(filepath.Join(path, ".env"))

	v := viper.New()
	setDefaults(v, Default())

	v.AddConfigPath(path)
	v.AddConfigPath(filepath.Join(path, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("REPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("LoadConfig: reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("LoadConfig: decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("server.port", d.Server.Port)

	v.SetDefault("source.kind", d.Source.Kind)
	v.SetDefault("source.spreadsheet_id", d.Source.SpreadsheetID)
	v.SetDefault("source.base_url", d.Source.BaseURL)
	v.SetDefault("source.bucket", d.Source.Bucket)
	v.SetDefault("source.prefix", d.Source.Prefix)
	v.SetDefault("source.region", d.Source.Region)
	v.SetDefault("source.credentials_file", d.Source.CredentialsFile)
	v.SetDefault("source.anonymous", d.Source.Anonymous)
	v.SetDefault("source.timeout", d.Source.Timeout)
	v.SetDefault("source.user_agent", d.Source.UserAgent)

	v.SetDefault("sheets", d.Sheets)

	v.SetDefault("columns.date", d.Columns.Date)
	v.SetDefault("columns.time", d.Columns.Time)
	v.SetDefault("columns.matchup", d.Columns.Matchup)
	v.SetDefault("columns.method", d.Columns.Method)
	v.SetDefault("columns.realized", d.Columns.Realized)
	v.SetDefault("columns.profit", d.Columns.Profit)

	v.SetDefault("report.stake_value", d.Report.StakeValue)
	v.SetDefault("report.page_size", d.Report.PageSize)
	v.SetDefault("report.currency_symbol", d.Report.CurrencySymbol)
	v.SetDefault("report.title_prefix", d.Report.TitlePrefix)

	v.SetDefault("theme.template", d.Theme.Template)
	v.SetDefault("theme.line_color", d.Theme.LineColor)
	v.SetDefault("theme.font_color", d.Theme.FontColor)
	v.SetDefault("theme.line_width", d.Theme.LineWidth)
	v.SetDefault("theme.marker_size", d.Theme.MarkerSize)
	v.SetDefault("theme.title_font_size", d.Theme.TitleFontSize)
	v.SetDefault("theme.tick_angle", d.Theme.TickAngle)
}

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if len(c.Sheets) == 0 {
		return fmt.Errorf("at least one sheet must be configured")
	}
	for i, s := range c.Sheets {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("sheet %d cannot be empty", i)
		}
	}

	switch c.Source.Kind {
	case SourceSheets:
		if c.Source.SpreadsheetID == "" {
			return fmt.Errorf("source.spreadsheet_id cannot be empty for kind %q", c.Source.Kind)
		}
		if c.Source.BaseURL == "" {
			return fmt.Errorf("source.base_url cannot be empty for kind %q", c.Source.Kind)
		}
	case SourceGCS, SourceS3:
		if c.Source.Bucket == "" {
			return fmt.Errorf("source.bucket cannot be empty for kind %q", c.Source.Kind)
		}
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}

	if c.Source.Timeout <= 0 {
		return fmt.Errorf("source.timeout must be greater than 0")
	}
	if c.Columns.Date == "" || c.Columns.Profit == "" {
		return fmt.Errorf("columns.date and columns.profit cannot be empty")
	}
	if c.Report.StakeValue <= 0 {
		return fmt.Errorf("report.stake_value must be greater than 0")
	}
	if c.Report.PageSize <= 0 {
		return fmt.Errorf("report.page_size must be greater than 0")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d", c.Server.Port)
	}

	return nil
}

package presentation

import "github.com/dvloznov/profit-report/internal/config"

// Theme is the chart styling handed to the renderer. It is a plain value
// supplied at construction; nothing in this package holds global style state.
type Theme struct {
	Template      string  `json:"template" yaml:"template"`
	LineColor     string  `json:"line_color" yaml:"line_color"`
	MarkerColor   string  `json:"marker_color" yaml:"marker_color"`
	FontColor     string  `json:"font_color" yaml:"font_color"`
	LineWidth     float64 `json:"line_width" yaml:"line_width"`
	MarkerSize    float64 `json:"marker_size" yaml:"marker_size"`
	TitleFontSize int     `json:"title_font_size" yaml:"title_font_size"`
	TickAngle     int     `json:"x_tick_angle" yaml:"x_tick_angle"`
}

// DarkTheme is the default dark chart style with neon-green lines.
func DarkTheme() Theme {
	return Theme{
		Template:      "plotly_dark",
		LineColor:     "#39FF14",
		MarkerColor:   "#39FF14",
		FontColor:     "white",
		LineWidth:     2,
		MarkerSize:    8,
		TitleFontSize: 14,
		TickAngle:     -45,
	}
}

// ThemeFromConfig builds a theme from configuration, falling back to the
// dark theme for unset fields.
func ThemeFromConfig(cfg config.ThemeConfig) Theme {
	t := DarkTheme()
	if cfg.Template != "" {
		t.Template = cfg.Template
	}
	if cfg.LineColor != "" {
		t.LineColor = cfg.LineColor
		t.MarkerColor = cfg.LineColor
	}
	if cfg.FontColor != "" {
		t.FontColor = cfg.FontColor
	}
	if cfg.LineWidth > 0 {
		t.LineWidth = cfg.LineWidth
	}
	if cfg.MarkerSize > 0 {
		t.MarkerSize = cfg.MarkerSize
	}
	if cfg.TitleFontSize > 0 {
		t.TitleFontSize = cfg.TitleFontSize
	}
	if cfg.TickAngle != 0 {
		t.TickAngle = cfg.TickAngle
	}
	return t
}

package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format selects a view encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("ParseFormat: unknown format %q", s)
	}
}

// Encode writes the view to w in the given format.
func Encode(w io.Writer, v View, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("Encode: json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("Encode: yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("Encode: yaml: %w", err)
		}
	case FormatText:
		if err := WriteText(w, v); err != nil {
			return fmt.Errorf("Encode: text: %w", err)
		}
	default:
		return fmt.Errorf("Encode: unknown format %q", format)
	}
	return nil
}

// WriteText renders the view as a plain-text report: title, table page,
// caption, headline and the cumulative series.
func WriteText(w io.Writer, v View) error {
	var b strings.Builder
	b.WriteString(v.Title + "\n\n")

	if v.Empty {
		b.WriteString(v.Message + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(v.Columns, "\t")))
	for _, row := range v.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	b.WriteString("\n" + v.Caption + "\n")
	fmt.Fprintf(&b, "Page %d of %d\n\n", v.Page.Number, v.Page.TotalPages)

	if v.Headline != "" {
		b.WriteString(v.Headline + "\n")
	} else if v.Message != "" {
		b.WriteString(v.Message + "\n")
	}

	for _, chart := range v.Charts {
		fmt.Fprintf(&b, "\n%s\n", chart.Title)
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(tw, "%s\t%s\t\n", chart.XTitle, chart.YTitle)
		for _, pt := range chart.Points {
			fmt.Fprintf(tw, "%s\t%s\t\n", pt.X, strconv.FormatFloat(pt.Y, 'f', 2, 64))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(v.Issues) > 0 {
		fmt.Fprintf(&b, "\n%d field(s) could not be parsed and were left empty.\n", len(v.Issues))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

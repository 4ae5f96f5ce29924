package fetch

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dvloznov/profit-report/internal/config"
)

// Target is the addressable resource a sheet label resolves to.
type Target struct {
	Sheet string `json:"sheet"`
	Month string `json:"month"`
	URI   string `json:"uri"`
}

// Resolver maps the selectable sheet labels to fetch targets.
type Resolver struct {
	source config.SourceConfig
	sheets []string
}

// NewResolver creates a resolver over the configured source and sheet labels.
func NewResolver(source config.SourceConfig, sheets []string) *Resolver {
	return &Resolver{
		source: source,
		sheets: append([]string(nil), sheets...),
	}
}

// Sheets returns the selectable labels in configured order.
func (r *Resolver) Sheets() []string {
	return append([]string(nil), r.sheets...)
}

// Default returns the first selectable label.
func (r *Resolver) Default() string {
	if len(r.sheets) == 0 {
		return ""
	}
	return r.sheets[0]
}

// Resolve validates the label and builds its target URI.
func (r *Resolver) Resolve(sheet string) (Target, error) {
	if !r.known(sheet) {
		return Target{}, fmt.Errorf("Resolve: %w: %q", ErrUnknownSheet, sheet)
	}

	t := Target{Sheet: sheet, Month: MonthLabel(sheet)}

	switch r.source.Kind {
	case config.SourceSheets:
		// e.g. https://docs.google.com/spreadsheets/d/<id>/gviz/tq?tqx=out:csv&sheet=<label>
		base := strings.TrimRight(r.source.BaseURL, "/")
		q := url.Values{}
		q.Set("tqx", "out:csv")
		q.Set("sheet", sheet)
		t.URI = fmt.Sprintf("%s/spreadsheets/d/%s/gviz/tq?%s", base, url.PathEscape(r.source.SpreadsheetID), q.Encode())
	case config.SourceGCS:
		t.URI = fmt.Sprintf("gs://%s/%s%s.csv", r.source.Bucket, r.source.Prefix, sheet)
	case config.SourceS3:
		t.URI = fmt.Sprintf("s3://%s/%s%s.csv", r.source.Bucket, r.source.Prefix, sheet)
	default:
		return Target{}, fmt.Errorf("Resolve: unknown source kind %q", r.source.Kind)
	}

	return t, nil
}

func (r *Resolver) known(sheet string) bool {
	for _, s := range r.sheets {
		if s == sheet {
			return true
		}
	}
	return false
}

// MonthLabel returns the part of a sheet label after its last underscore,
// e.g. "CSCorito_Maio" -> "Maio". Labels without an underscore are returned as is.
func MonthLabel(sheet string) string {
	if idx := strings.LastIndex(sheet, "_"); idx != -1 {
		return sheet[idx+1:]
	}
	return sheet
}

package presentation

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/profit-report/internal/config"
	"github.com/dvloznov/profit-report/internal/domain"
)

// User-facing messages for the empty states.
const (
	NoRecordsMessage     = "No records to display."
	NoMonthlyDataMessage = "No monthly data to display."
)

// Chart identifiers.
const (
	ChartCumulativeUnits = "cumulative_units"
	ChartCumulativeValue = "cumulative_value"
)

// View is everything a renderer needs for one cycle: the table page, the
// headline and the two chart specs.
type View struct {
	CycleID  string              `json:"cycle_id" yaml:"cycle_id"`
	Title    string              `json:"title" yaml:"title"`
	Sheet    string              `json:"sheet" yaml:"sheet"`
	Month    string              `json:"month" yaml:"month"`
	Empty    bool                `json:"empty" yaml:"empty"`
	Message  string              `json:"message,omitempty" yaml:"message,omitempty"`
	Columns  []string            `json:"columns" yaml:"columns"`
	Rows     [][]string          `json:"rows" yaml:"rows"`
	Page     PageInfo            `json:"page" yaml:"page"`
	Caption  string              `json:"caption,omitempty" yaml:"caption,omitempty"`
	Headline string              `json:"headline,omitempty" yaml:"headline,omitempty"`
	Charts   []ChartSpec         `json:"charts" yaml:"charts"`
	Issues   []domain.FieldIssue `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// PageInfo describes the selected table page.
type PageInfo struct {
	Number     int `json:"number" yaml:"number"`
	Size       int `json:"size" yaml:"size"`
	TotalPages int `json:"total_pages" yaml:"total_pages"`
	TotalRows  int `json:"total_rows" yaml:"total_rows"`
	StartRow   int `json:"start_row" yaml:"start_row"`
	EndRow     int `json:"end_row" yaml:"end_row"`
}

// ChartSpec is a renderer-agnostic line chart description.
type ChartSpec struct {
	ID     string  `json:"id" yaml:"id"`
	Title  string  `json:"title" yaml:"title"`
	XTitle string  `json:"x_title" yaml:"x_title"`
	YTitle string  `json:"y_title" yaml:"y_title"`
	Theme  Theme   `json:"theme" yaml:"theme"`
	Points []Point `json:"points" yaml:"points"`
}

// Point is one chart sample; X is an ISO date.
type Point struct {
	X string  `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Presenter turns finalized reports into views.
type Presenter struct {
	theme          Theme
	titlePrefix    string
	currencySymbol string
}

// NewPresenter creates a presenter with an explicit theme.
func NewPresenter(theme Theme, titlePrefix, currencySymbol string) *Presenter {
	return &Presenter{
		theme:          theme,
		titlePrefix:    titlePrefix,
		currencySymbol: currencySymbol,
	}
}

// NewPresenterFromConfig creates a presenter from the report and theme settings.
func NewPresenterFromConfig(cfg *config.Config) *Presenter {
	return NewPresenter(ThemeFromConfig(cfg.Theme), cfg.Report.TitlePrefix, cfg.Report.CurrencySymbol)
}

// Build renders the report into a view. An empty report yields only the
// title and the "no records" message.
func (p *Presenter) Build(r *domain.Report) View {
	v := View{
		CycleID: r.CycleID,
		Title:   fmt.Sprintf("Report %s - Month %s", p.titlePrefix, r.Month),
		Sheet:   r.Sheet,
		Month:   r.Month,
		Columns: r.Columns,
		Rows:    [][]string{},
		Charts:  []ChartSpec{},
		Issues:  r.Issues,
		Page: PageInfo{
			Number:     r.Page.Number,
			Size:       r.Page.Size,
			TotalPages: r.Page.TotalPages,
			TotalRows:  r.Page.TotalRows,
			StartRow:   r.Page.StartRow,
			EndRow:     r.Page.EndRow,
		},
	}

	if r.Empty {
		v.Empty = true
		v.Message = NoRecordsMessage
		return v
	}

	for _, rec := range r.Page.Records {
		v.Rows = append(v.Rows, rowCells(rec, r.Columns))
	}
	v.Caption = fmt.Sprintf("Showing rows %d to %d of %d.", r.Page.StartRow, r.Page.EndRow, r.Page.TotalRows)

	if r.LatestMonth != nil {
		v.Headline = p.Headline(*r.LatestMonth, r.StakeValue)
	} else {
		v.Message = NoMonthlyDataMessage
	}

	v.Charts = p.Charts(r.Daily)
	return v
}

// Headline formats the current month standing in units and currency, e.g.
// "In month 2025-05 you are at 1.50 units (R$ 1,500.00).". Units round half
// away from zero on their shortest decimal form, so 1.005 shows as 1.01.
func (p *Presenter) Headline(m domain.MonthlyAggregate, stakeValue float64) string {
	units := decimal.NewFromFloat(m.MonthlyUnits)
	value := units.Mul(decimal.NewFromFloat(stakeValue))
	return fmt.Sprintf("In month %s you are at %s units (%s).",
		m.YearMonth, units.StringFixed(2), p.FormatCurrency(value))
}

// FormatCurrency renders an amount with thousands grouping and two decimals.
func (p *Presenter) FormatCurrency(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	s := humanize.FormatFloat("#,###.##", f)
	if p.currencySymbol == "" {
		return s
	}
	return p.currencySymbol + " " + s
}

// Charts builds the cumulative units and cumulative currency line charts.
func (p *Presenter) Charts(daily []domain.DailyAggregate) []ChartSpec {
	units := make([]Point, 0, len(daily))
	values := make([]Point, 0, len(daily))
	for _, d := range daily {
		x := d.Date.String()
		units = append(units, Point{X: x, Y: d.CumulativeUnits})
		values = append(values, Point{X: x, Y: d.CumulativeValue})
	}

	symbol := p.currencySymbolOr("currency")

	return []ChartSpec{
		{
			ID:     ChartCumulativeUnits,
			Title:  "Profit Evolution (Daily Cumulative) - Units",
			XTitle: "Date",
			YTitle: "Cumulative Units",
			Theme:  p.theme,
			Points: units,
		},
		{
			ID:     ChartCumulativeValue,
			Title:  "Profit Evolution (Daily Cumulative) in " + symbol,
			XTitle: "Date",
			YTitle: fmt.Sprintf("Value (%s)", symbol),
			Theme:  p.theme,
			Points: values,
		},
	}
}

func (p *Presenter) currencySymbolOr(fallback string) string {
	if p.currencySymbol == "" {
		return fallback
	}
	return p.currencySymbol
}

func rowCells(rec domain.Record, columns []string) []string {
	cells := make([]string, 0, len(columns))
	for _, col := range columns {
		switch col {
		case domain.ColumnDate:
			if rec.Date.Valid {
				cells = append(cells, rec.Date.Date.String())
			} else {
				cells = append(cells, "")
			}
		case domain.ColumnTime:
			cells = append(cells, rec.Time)
		case domain.ColumnMatchup:
			cells = append(cells, rec.Matchup)
		case domain.ColumnMethod:
			cells = append(cells, rec.Method)
		case domain.ColumnUnits:
			if rec.Units.Valid {
				cells = append(cells, strconv.FormatFloat(rec.Units.Float64, 'f', -1, 64))
			} else {
				cells = append(cells, "")
			}
		default:
			cells = append(cells, "")
		}
	}
	return cells
}

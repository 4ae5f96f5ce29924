package domain

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// Display column identifiers, in display order.
const (
	ColumnDate    = "date"
	ColumnTime    = "time"
	ColumnMatchup = "matchup"
	ColumnMethod  = "method"
	ColumnUnits   = "units"
)

// RawRecord is one CSV row as received from the source, before any typed
// parsing. Duplicate rows may occur.
type RawRecord struct {
	Date     string // day-first date, e.g. "01/04/2025"
	Time     string // time of day, opaque
	Matchup  string // free-text matchup description
	Method   string // method/category label
	Realized string // realization flag, read but discarded
	Profit   string // comma-decimal profit, e.g. "-2,5"
}

// Record is the canonical row after transformation.
// Date and Units are null when the source value could not be parsed.
type Record struct {
	Date    bigquery.NullDate    `json:"date"`
	Time    string               `json:"time"`
	Matchup string               `json:"matchup"`
	Method  string               `json:"method"`
	Units   bigquery.NullFloat64 `json:"units"`
}

// DailyAggregate is one entry per distinct calendar date in the dataset.
type DailyAggregate struct {
	Date            civil.Date `json:"date"`
	DailyUnits      float64    `json:"daily_units"`
	CumulativeUnits float64    `json:"cumulative_units"`
	CumulativeValue float64    `json:"cumulative_value"` // CumulativeUnits * stake value
}

// MonthlyAggregate is one entry per distinct year-month in the dataset.
type MonthlyAggregate struct {
	YearMonth    string  `json:"year_month"` // "YYYY-MM"
	MonthlyUnits float64 `json:"monthly_units"`
}

// Page is one fixed-size slice of the display-ordered records.
// StartRow and EndRow are 1-based and inclusive; both are 0 when empty.
type Page struct {
	Number     int      `json:"number"`
	Size       int      `json:"size"`
	TotalRows  int      `json:"total_rows"`
	TotalPages int      `json:"total_pages"`
	StartRow   int      `json:"start_row"`
	EndRow     int      `json:"end_row"`
	Records    []Record `json:"records"`
}

// FieldIssue describes a single field value that could not be converted and
// was replaced by null.
type FieldIssue struct {
	Row   int    `json:"row"` // 1-based position after deduplication
	Field string `json:"field"`
	Value string `json:"value"`
	Error string `json:"error"`
}

// Report is the finalized snapshot produced by one fetch-transform cycle.
type Report struct {
	CycleID      string             `json:"cycle_id"`
	Sheet        string             `json:"sheet"`
	Month        string             `json:"month"`
	Target       string             `json:"target"`
	FetchedAt    time.Time          `json:"fetched_at"`
	StakeValue   float64            `json:"stake_value"`
	Columns      []string           `json:"columns"`
	Records      []Record           `json:"-"` // all records in display order
	Page         Page               `json:"page"`
	Daily        []DailyAggregate   `json:"daily"`
	Monthly      []MonthlyAggregate `json:"monthly"`
	LatestMonth  *MonthlyAggregate  `json:"latest_month,omitempty"`
	Issues       []FieldIssue       `json:"issues,omitempty"`
	UndatedCount int                `json:"undated_count"`
	Empty        bool               `json:"empty"`
}

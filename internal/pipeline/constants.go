package pipeline

// Default values for report building.
// These can be overridden via configuration.
const (
	// DefaultPageSize is the number of records shown per table page.
	DefaultPageSize = 20

	// DefaultStakeValue is the currency value of one unit.
	DefaultStakeValue = 1000.0

	// yearMonthLayout formats the monthly grouping key, e.g. "2025-04".
	yearMonthLayout = "2006-01"
)

// Record field names used in FieldParseError.
const (
	FieldDate  = "date"
	FieldUnits = "units"
)

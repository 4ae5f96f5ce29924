package pipeline

import (
	"errors"
	"fmt"

	"github.com/dvloznov/profit-report/internal/domain"
)

var (
	// ErrEmptyValue is returned by the field parsers for blank input.
	ErrEmptyValue = errors.New("empty value")
	// ErrNotFinite is returned by ParseCommaDecimal for NaN and infinities.
	ErrNotFinite = errors.New("value is not a finite number")
)

// FieldParseError reports a single field that could not be converted.
// It is recovered: the field becomes null and the cycle continues.
type FieldParseError struct {
	Row   int // 1-based position after deduplication
	Field string
	Value string
	Err   error
}

func (e *FieldParseError) Error() string {
	return fmt.Sprintf("row %d: %s %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *FieldParseError) Unwrap() error {
	return e.Err
}

// Issue converts the error into its report representation.
func (e *FieldParseError) Issue() domain.FieldIssue {
	return domain.FieldIssue{
		Row:   e.Row,
		Field: e.Field,
		Value: e.Value,
		Error: e.Err.Error(),
	}
}

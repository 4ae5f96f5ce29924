package pipeline

import (
	"sort"
	"strings"

	"github.com/dvloznov/profit-report/internal/domain"
)

// Deduplicate removes raw records that are field-wise identical to an earlier
// one, keeping the first occurrence and the original order.
func Deduplicate(raws []domain.RawRecord) []domain.RawRecord {
	seen := make(map[domain.RawRecord]struct{}, len(raws))
	out := make([]domain.RawRecord, 0, len(raws))
	for _, r := range raws {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// ToRecords converts raw records into typed records, dropping the raw date,
// profit and realization fields. Blank dates and profits become null quietly;
// non-blank values that fail to parse become null and are returned as
// FieldParseErrors.
func ToRecords(raws []domain.RawRecord) ([]domain.Record, []*FieldParseError) {
	records := make([]domain.Record, 0, len(raws))
	var issues []*FieldParseError

	for i, raw := range raws {
		rec := domain.Record{
			Time:    raw.Time,
			Matchup: raw.Matchup,
			Method:  raw.Method,
		}

		if strings.TrimSpace(raw.Date) != "" {
			d, err := ParseDayFirstDate(raw.Date)
			if err != nil {
				issues = append(issues, &FieldParseError{Row: i + 1, Field: FieldDate, Value: raw.Date, Err: err})
			} else {
				rec.Date.Date = d
				rec.Date.Valid = true
			}
		}

		if strings.TrimSpace(raw.Profit) != "" {
			v, err := ParseCommaDecimal(raw.Profit)
			if err != nil {
				issues = append(issues, &FieldParseError{Row: i + 1, Field: FieldUnits, Value: raw.Profit, Err: err})
			} else {
				rec.Units.Float64 = v
				rec.Units.Valid = true
			}
		}

		records = append(records, rec)
	}

	return records, issues
}

// SortForDisplay returns a copy of records ordered by date descending, with
// undated records last. Records sharing a date keep their relative order.
func SortForDisplay(records []domain.Record) []domain.Record {
	out := append([]domain.Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Date, out[j].Date
		switch {
		case a.Valid && b.Valid:
			return a.Date.After(b.Date)
		case a.Valid:
			return true
		default:
			return false
		}
	})
	return out
}

// CountUndated returns how many records have a null date.
func CountUndated(records []domain.Record) int {
	n := 0
	for _, r := range records {
		if !r.Date.Valid {
			n++
		}
	}
	return n
}

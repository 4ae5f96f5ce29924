package fetch

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dvloznov/profit-report/internal/config"
	"github.com/dvloznov/profit-report/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Header records which configured columns the CSV header contains and where.
type Header struct {
	Names    []string
	Date     int
	Time     int
	Matchup  int
	Method   int
	Realized int
	Profit   int
}

func (h Header) has(idx int) bool { return idx >= 0 }

// HasDate reports whether the date column is present.
func (h Header) HasDate() bool { return h.has(h.Date) }

// HasProfit reports whether the profit column is present.
func (h Header) HasProfit() bool { return h.has(h.Profit) }

// DisplayColumns returns the record display columns backed by the header, in
// fixed display order. Date and units are always shown.
func (h Header) DisplayColumns() []string {
	cols := []string{domain.ColumnDate}
	if h.has(h.Time) {
		cols = append(cols, domain.ColumnTime)
	}
	if h.has(h.Matchup) {
		cols = append(cols, domain.ColumnMatchup)
	}
	if h.has(h.Method) {
		cols = append(cols, domain.ColumnMethod)
	}
	return append(cols, domain.ColumnUnits)
}

// DecodeCSV parses a CSV export into raw records using header-named columns.
// A body with a header but no rows yields no records and no error.
func DecodeCSV(data []byte, columns config.ColumnsConfig) ([]domain.RawRecord, Header, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, Header{}, newFetchError(KindMalformed, "", errors.New("empty body"))
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	names, err := r.Read()
	if err != nil {
		return nil, Header{}, newFetchError(KindMalformed, "", fmt.Errorf("reading header: %w", err))
	}

	header := newHeader(names, columns)

	var records []domain.RawRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, Header{}, newFetchError(KindMalformed, "", fmt.Errorf("reading row %d: %w", line, err))
		}
		records = append(records, domain.RawRecord{
			Date:     field(row, header.Date),
			Time:     field(row, header.Time),
			Matchup:  field(row, header.Matchup),
			Method:   field(row, header.Method),
			Realized: field(row, header.Realized),
			Profit:   field(row, header.Profit),
		})
	}

	return records, header, nil
}

func newHeader(names []string, columns config.ColumnsConfig) Header {
	index := make(map[string]int, len(names))
	for i, n := range names {
		key := normalizeHeader(n)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	lookup := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := index[normalizeHeader(name)]; ok {
			return i
		}
		return -1
	}

	return Header{
		Names:    names,
		Date:     lookup(columns.Date),
		Time:     lookup(columns.Time),
		Matchup:  lookup(columns.Matchup),
		Method:   lookup(columns.Method),
		Realized: lookup(columns.Realized),
		Profit:   lookup(columns.Profit),
	}
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

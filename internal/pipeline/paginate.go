package pipeline

import (
	"github.com/dvloznov/profit-report/internal/domain"
)

// TotalPages returns max(ceil(totalRows/pageSize), 1).
func TotalPages(totalRows, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := (totalRows + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate returns the requested page of display-ordered records. The page
// number is clamped to [1, TotalPages].
func Paginate(records []domain.Record, page, pageSize int) domain.Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := len(records)
	totalPages := TotalPages(total, pageSize)
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	p := domain.Page{
		Number:     page,
		Size:       pageSize,
		TotalRows:  total,
		TotalPages: totalPages,
		Records:    []domain.Record{},
	}
	if total == 0 {
		return p
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}

	p.StartRow = start + 1
	p.EndRow = end
	p.Records = append(p.Records, records[start:end]...)
	return p
}

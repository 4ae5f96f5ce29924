package pipeline

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"gonum.org/v1/gonum/floats"

	"github.com/dvloznov/profit-report/internal/domain"
)

// DailyAggregates groups dated records by calendar date in ascending order,
// summing units per day (null units count as zero) and carrying a running
// cumulative total in units and in currency.
func DailyAggregates(records []domain.Record, stakeValue float64) []domain.DailyAggregate {
	sums := make(map[civil.Date]float64)
	for _, r := range records {
		if !r.Date.Valid {
			continue
		}
		sums[r.Date.Date] += unitsOrZero(r)
	}
	if len(sums) == 0 {
		return []domain.DailyAggregate{}
	}

	dates := make([]civil.Date, 0, len(sums))
	for d := range sums {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	daily := make([]float64, len(dates))
	for i, d := range dates {
		daily[i] = sums[d]
	}
	cumulative := make([]float64, len(daily))
	floats.CumSum(cumulative, daily)

	out := make([]domain.DailyAggregate, len(dates))
	for i, d := range dates {
		out[i] = domain.DailyAggregate{
			Date:            d,
			DailyUnits:      daily[i],
			CumulativeUnits: cumulative[i],
			CumulativeValue: cumulative[i] * stakeValue,
		}
	}
	return out
}

// MonthlyAggregates groups dated records by "YYYY-MM" in ascending order,
// summing units per month.
func MonthlyAggregates(records []domain.Record) []domain.MonthlyAggregate {
	groups := make(map[string][]float64)
	for _, r := range records {
		if !r.Date.Valid {
			continue
		}
		key := r.Date.Date.In(time.UTC).Format(yearMonthLayout)
		groups[key] = append(groups[key], unitsOrZero(r))
	}

	months := make([]string, 0, len(groups))
	for m := range groups {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]domain.MonthlyAggregate, len(months))
	for i, m := range months {
		out[i] = domain.MonthlyAggregate{YearMonth: m, MonthlyUnits: floats.Sum(groups[m])}
	}
	return out
}

// LatestMonth returns the aggregate with the greatest year-month label, or nil
// when there are none.
func LatestMonth(monthly []domain.MonthlyAggregate) *domain.MonthlyAggregate {
	var latest *domain.MonthlyAggregate
	for i := range monthly {
		if latest == nil || monthly[i].YearMonth > latest.YearMonth {
			m := monthly[i]
			latest = &m
		}
	}
	return latest
}

func unitsOrZero(r domain.Record) float64 {
	if !r.Units.Valid {
		return 0
	}
	return r.Units.Float64
}

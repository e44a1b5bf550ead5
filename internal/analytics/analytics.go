// Package analytics derives summary statistics from the expense
// collection. Every function is pure: inputs are never mutated and results
// are recomputed on each call.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type Direction string

const (
	Up     Direction = "up"
	Down   Direction = "down"
	Stable Direction = "stable"
)

// trendThreshold is the percentage change beyond which a month-over-month
// difference counts as a trend.
const trendThreshold = 5

type TrendResult struct {
	Direction Direction `json:"direction"`
	// Percentage is the absolute change, unrounded.
	Percentage float64 `json:"percentage"`
}

type CategoryShare struct {
	Category core.Category `json:"category"`
	Amount   core.Money    `json:"amount"`
	// Percent of the grand total, rounded to a whole number.
	Percent int `json:"percent"`
}

type MonthAmount struct {
	Month  string     `json:"month"`
	Amount core.Money `json:"amount"`
}

// Total sums every record.
func Total(records []core.Expense) core.Money {
	var total core.Money
	for _, e := range records {
		total = total.Add(e.Amount)
	}
	return total
}

// MonthlyTotal sums records dated in now's calendar year and month.
func MonthlyTotal(records []core.Expense, now time.Time) core.Money {
	return monthTotal(records, now.Year(), now.Month())
}

// PriorMonthTotal sums records dated in the calendar month before now's.
// January rolls back to December of the previous year.
func PriorMonthTotal(records []core.Expense, now time.Time) core.Money {
	y, m := priorMonth(now)
	return monthTotal(records, y, m)
}

func priorMonth(now time.Time) (int, time.Month) {
	if now.Month() == time.January {
		return now.Year() - 1, time.December
	}
	return now.Year(), now.Month() - 1
}

func monthTotal(records []core.Expense, year int, month time.Month) core.Money {
	var total core.Money
	for _, e := range records {
		if e.Date.Year() == year && e.Date.Month() == int(month) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// WeeklyTotal sums records dated within the inclusive civil-date range
// [today - 7 days, today].
func WeeklyTotal(records []core.Expense, now time.Time) core.Money {
	today := core.DateOf(now)
	from := today.AddDays(-7)
	var total core.Money
	for _, e := range records {
		if !e.Date.Before(from.Time) && !e.Date.After(today.Time) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// CategoryTotals groups amounts by category. Categories without records
// are absent, not zero.
func CategoryTotals(records []core.Expense) map[core.Category]core.Money {
	totals := make(map[core.Category]core.Money)
	for _, e := range records {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}
	return totals
}

// MonthlyBreakdown groups amounts by "YYYY-MM".
func MonthlyBreakdown(records []core.Expense) map[string]core.Money {
	totals := make(map[string]core.Money)
	for _, e := range records {
		k := e.Date.YearMonth()
		totals[k] = totals[k].Add(e.Amount)
	}
	return totals
}

// SortedBreakdown is MonthlyBreakdown in ascending month order.
func SortedBreakdown(records []core.Expense) []MonthAmount {
	totals := MonthlyBreakdown(records)
	out := make([]MonthAmount, 0, len(totals))
	for month, amount := range totals {
		out = append(out, MonthAmount{Month: month, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// Trend compares this month's total with the prior month's. A prior total
// of zero is reported as stable at 0%.
func Trend(records []core.Expense, now time.Time) TrendResult {
	current := MonthlyTotal(records, now)
	prior := PriorMonthTotal(records, now)
	if prior.IsZero() {
		return TrendResult{Direction: Stable, Percentage: 0}
	}

	pct := decimal.NewFromInt(current.Cents - prior.Cents).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(prior.Cents))
	limit := decimal.NewFromInt(trendThreshold)

	dir := Stable
	switch {
	case pct.GreaterThan(limit):
		dir = Up
	case pct.LessThan(limit.Neg()):
		dir = Down
	}
	return TrendResult{Direction: dir, Percentage: pct.Abs().InexactFloat64()}
}

// DailyAverage divides the grand total by the number of days the
// collection spans, counting both the earliest record date and today, at
// least one. The result is rounded half away from zero to the cent.
func DailyAverage(records []core.Expense, now time.Time) core.Money {
	if len(records) == 0 {
		return core.Money{}
	}
	oldest := records[0].Date
	for _, e := range records[1:] {
		if e.Date.Before(oldest.Time) {
			oldest = e.Date
		}
	}
	days := oldest.DaysUntil(core.DateOf(now)) + 1
	if days < 1 {
		days = 1
	}
	avg := Total(records).Decimal().Div(decimal.NewFromInt(int64(days)))
	return core.MoneyFromDecimal(avg)
}

// TopCategories returns up to n categories by amount, largest first, ties
// broken by name. n <= 0 returns all of them.
func TopCategories(records []core.Expense, n int) []CategoryShare {
	totals := CategoryTotals(records)
	grand := Total(records)

	out := make([]CategoryShare, 0, len(totals))
	for c, amount := range totals {
		out = append(out, CategoryShare{Category: c, Amount: amount, Percent: percentOf(amount, grand)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Category < out[j].Category
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func percentOf(part, whole core.Money) int {
	if whole.IsZero() {
		return 0
	}
	return int(decimal.NewFromInt(part.Cents).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(whole.Cents)).
		Round(0).IntPart())
}

// Recent returns up to n records, most recent date first, then most
// recently created. The input order is ignored.
func Recent(records []core.Expense, n int) []core.Expense {
	out := append([]core.Expense(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

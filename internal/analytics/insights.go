package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// AveragePerExpense is the grand total divided by the record count,
// rounded to the cent. Zero for an empty collection.
func AveragePerExpense(records []core.Expense) core.Money {
	if len(records) == 0 {
		return core.Money{}
	}
	avg := Total(records).Decimal().Div(decimal.NewFromInt(int64(len(records))))
	return core.MoneyFromDecimal(avg)
}

// BusiestWeekday returns the weekday holding the most records, earliest
// weekday (Sunday first) on ties. ok is false for an empty collection.
func BusiestWeekday(records []core.Expense) (day time.Weekday, ok bool) {
	var counts [7]int
	for _, e := range records {
		counts[e.Date.Weekday()]++
	}
	best := -1
	for d, c := range counts {
		if c > 0 && (best < 0 || c > counts[best]) {
			best = d
		}
	}
	if best < 0 {
		return time.Sunday, false
	}
	return time.Weekday(best), true
}

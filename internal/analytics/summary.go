package analytics

import (
	"time"

	"fintrack/internal/core"
)

const (
	recentLimit        = 5
	topCategoriesLimit = 5
)

// Summary bundles every figure the dashboard and analytics views show.
type Summary struct {
	AsOf             core.Date       `json:"asOf"`
	Count            int             `json:"count"`
	Total            core.Money      `json:"total"`
	Monthly          core.Money      `json:"monthly"`
	PriorMonth       core.Money      `json:"priorMonth"`
	Weekly           core.Money      `json:"weekly"`
	DailyAverage     core.Money      `json:"dailyAverage"`
	Trend            TrendResult     `json:"trend"`
	CategoryCount    int             `json:"categoryCount"`
	Categories       []CategoryShare `json:"categories"`
	TopCategories    []CategoryShare `json:"topCategories"`
	MonthlyBreakdown []MonthAmount   `json:"monthlyBreakdown"`
	Recent           []core.Expense  `json:"recent"`

	AveragePerExpense core.Money `json:"averagePerExpense"`
	// BusiestWeekday is empty when there are no records.
	BusiestWeekday string `json:"busiestWeekday,omitempty"`
}

func Summarize(records []core.Expense, now time.Time) Summary {
	categories := TopCategories(records, 0)
	top := categories
	if len(top) > topCategoriesLimit {
		top = top[:topCategoriesLimit]
	}
	s := Summary{
		AsOf:             core.DateOf(now),
		Count:            len(records),
		Total:            Total(records),
		Monthly:          MonthlyTotal(records, now),
		PriorMonth:       PriorMonthTotal(records, now),
		Weekly:           WeeklyTotal(records, now),
		DailyAverage:     DailyAverage(records, now),
		Trend:            Trend(records, now),
		CategoryCount:    len(categories),
		Categories:       categories,
		TopCategories:    top,
		MonthlyBreakdown: SortedBreakdown(records),
		Recent:           Recent(records, recentLimit),

		AveragePerExpense: AveragePerExpense(records),
	}
	if day, ok := BusiestWeekday(records); ok {
		s.BusiestWeekday = day.String()
	}
	return s
}

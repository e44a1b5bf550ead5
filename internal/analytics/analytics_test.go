package analytics

import (
	"math"
	"testing"
	"time"

	"fintrack/internal/core"
)

func exp(id string, cents int64, cat core.Category, date string) core.Expense {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Expense{ID: id, Amount: core.Cents(cents), Category: cat, Description: id, Date: d}
}

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

// scenario is the reference collection: two March food expenses and one
// February transport expense, evaluated on 2024-03-20.
func scenario() []core.Expense {
	return []core.Expense{
		exp("a", 5000, core.FoodDining, "2024-03-01"),
		exp("b", 3000, core.FoodDining, "2024-03-15"),
		exp("c", 2000, core.Transportation, "2024-02-20"),
	}
}

func TestScenario(t *testing.T) {
	records := scenario()
	now := at(2024, time.March, 20)

	if got := MonthlyTotal(records, now); got.Cents != 8000 {
		t.Fatalf("MonthlyTotal = %v, want 80", got)
	}

	cats := CategoryTotals(records)
	if len(cats) != 2 || cats[core.FoodDining].Cents != 8000 || cats[core.Transportation].Cents != 2000 {
		t.Fatalf("CategoryTotals = %v", cats)
	}

	months := MonthlyBreakdown(records)
	if len(months) != 2 || months["2024-03"].Cents != 8000 || months["2024-02"].Cents != 2000 {
		t.Fatalf("MonthlyBreakdown = %v", months)
	}

	tr := Trend(records, now)
	if tr.Direction != Up || tr.Percentage != 300 {
		t.Fatalf("Trend = %+v, want up 300", tr)
	}
}

func TestAggregatesDoNotMutateInput(t *testing.T) {
	records := scenario()
	before := append([]core.Expense(nil), records...)
	_ = Summarize(records, at(2024, time.March, 20))
	for i := range records {
		if records[i] != before[i] {
			t.Fatalf("input mutated at %d", i)
		}
	}
}

func TestEmptyCollection(t *testing.T) {
	now := at(2024, time.March, 20)
	s := Summarize(nil, now)
	if !s.Total.IsZero() || !s.Monthly.IsZero() || !s.Weekly.IsZero() || !s.DailyAverage.IsZero() {
		t.Fatalf("expected zero totals: %+v", s)
	}
	if s.Trend.Direction != Stable || s.Trend.Percentage != 0 {
		t.Fatalf("expected stable 0, got %+v", s.Trend)
	}
	if len(CategoryTotals(nil)) != 0 || len(MonthlyBreakdown(nil)) != 0 {
		t.Fatalf("expected empty groupings")
	}
}

func TestMonthlyTotalIgnoresOtherYears(t *testing.T) {
	records := []core.Expense{
		exp("a", 100, core.Other, "2024-03-05"),
		exp("b", 900, core.Other, "2023-03-05"),
	}
	if got := MonthlyTotal(records, at(2024, time.March, 20)); got.Cents != 100 {
		t.Fatalf("MonthlyTotal = %d", got.Cents)
	}
}

func TestWeeklyTotalBounds(t *testing.T) {
	now := at(2024, time.March, 20)
	records := []core.Expense{
		exp("edge-low", 100, core.Other, "2024-03-13"),
		exp("today", 200, core.Other, "2024-03-20"),
		exp("too-old", 400, core.Other, "2024-03-12"),
		exp("future", 800, core.Other, "2024-03-21"),
	}
	if got := WeeklyTotal(records, now); got.Cents != 300 {
		t.Fatalf("WeeklyTotal = %d, want 300", got.Cents)
	}
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name    string
		records []core.Expense
		now     time.Time
		dir     Direction
		pct     float64
	}{
		{
			name:    "prior zero is stable",
			records: []core.Expense{exp("a", 5000, core.Other, "2024-03-01")},
			now:     at(2024, time.March, 20),
			dir:     Stable,
			pct:     0,
		},
		{
			name: "down reported as absolute",
			records: []core.Expense{
				exp("a", 5000, core.Other, "2024-03-01"),
				exp("b", 10000, core.Other, "2024-02-01"),
			},
			now: at(2024, time.March, 20),
			dir: Down,
			pct: 50,
		},
		{
			name: "within threshold is stable",
			records: []core.Expense{
				exp("a", 10400, core.Other, "2024-03-01"),
				exp("b", 10000, core.Other, "2024-02-01"),
			},
			now: at(2024, time.March, 20),
			dir: Stable,
			pct: 4,
		},
		{
			name: "exactly five percent is stable",
			records: []core.Expense{
				exp("a", 9500, core.Other, "2024-03-01"),
				exp("b", 10000, core.Other, "2024-02-01"),
			},
			now: at(2024, time.March, 20),
			dir: Stable,
			pct: 5,
		},
		{
			name: "january compares with previous december",
			records: []core.Expense{
				exp("a", 3000, core.Other, "2025-01-10"),
				exp("b", 1000, core.Other, "2024-12-10"),
				exp("c", 9999, core.Other, "2025-12-10"),
			},
			now: at(2025, time.January, 15),
			dir: Up,
			pct: 200,
		},
		{
			name: "fractional percentage",
			records: []core.Expense{
				exp("a", 1000, core.Other, "2024-03-01"),
				exp("b", 300, core.Other, "2024-02-01"),
			},
			now: at(2024, time.March, 20),
			dir: Up,
			pct: 700.0 / 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Trend(tt.records, tt.now)
			if got.Direction != tt.dir || math.Abs(got.Percentage-tt.pct) > 1e-9 {
				t.Fatalf("Trend = %+v, want %s %v", got, tt.dir, tt.pct)
			}
		})
	}
}

func TestDailyAverageUsesMinimumDate(t *testing.T) {
	now := at(2024, time.March, 20)
	// Oldest record sits in the middle of the slice.
	records := []core.Expense{
		exp("a", 1000, core.Other, "2024-03-18"),
		exp("b", 1000, core.Other, "2024-03-10"),
		exp("c", 1000, core.Other, "2024-03-19"),
	}
	// 30.00 over 11 days, 2024-03-10 through 2024-03-20 inclusive.
	if got := DailyAverage(records, now); got.Cents != 273 {
		t.Fatalf("DailyAverage = %d, want 273", got.Cents)
	}

	// A record from yesterday spans two days.
	yesterday := []core.Expense{exp("a", 1000, core.Other, "2024-03-19")}
	if got := DailyAverage(yesterday, now); got.Cents != 500 {
		t.Fatalf("DailyAverage yesterday = %d, want 500", got.Cents)
	}

	// A future-dated record still divides by one.
	future := []core.Expense{exp("a", 1000, core.Other, "2024-04-01")}
	if got := DailyAverage(future, now); got.Cents != 1000 {
		t.Fatalf("DailyAverage future = %d, want 1000", got.Cents)
	}

	// Same-day record divides by one.
	if got := DailyAverage([]core.Expense{exp("a", 1234, core.Other, "2024-03-20")}, now); got.Cents != 1234 {
		t.Fatalf("DailyAverage same day = %d", got.Cents)
	}

	// Rounds half away from zero: 1.00 / 3 days = 0.333 -> 0.33.
	third := []core.Expense{exp("a", 100, core.Other, "2024-03-18")}
	if got := DailyAverage(third, now); got.Cents != 33 {
		t.Fatalf("DailyAverage rounding = %d, want 33", got.Cents)
	}
}

func TestTopCategories(t *testing.T) {
	records := []core.Expense{
		exp("a", 5000, core.FoodDining, "2024-03-01"),
		exp("b", 2500, core.Travel, "2024-03-01"),
		exp("c", 2500, core.Shopping, "2024-03-01"),
	}
	top := TopCategories(records, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2, got %d", len(top))
	}
	if top[0].Category != core.FoodDining || top[0].Percent != 50 {
		t.Fatalf("unexpected first: %+v", top[0])
	}
	if top[1].Category != core.Shopping || top[1].Percent != 25 {
		t.Fatalf("ties should break by name, got %+v", top[1])
	}
	if all := TopCategories(records, 0); len(all) != 3 {
		t.Fatalf("n=0 should return all, got %d", len(all))
	}
}

func TestRecentSortsByDateThenCreatedAt(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a := exp("a", 1, core.Other, "2024-03-01")
	a.CreatedAt = base.Add(3 * time.Hour)
	b := exp("b", 1, core.Other, "2024-03-05")
	b.CreatedAt = base
	c := exp("c", 1, core.Other, "2024-03-05")
	c.CreatedAt = base.Add(time.Hour)
	d := exp("d", 1, core.Other, "2024-02-01")

	got := Recent([]core.Expense{a, b, d, c}, 3)
	want := []string{"c", "b", "a"}
	if len(got) != len(want) {
		t.Fatalf("got %d records", len(got))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("position %d: got %s want %s", i, got[i].ID, want[i])
		}
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(scenario(), at(2024, time.March, 20))
	if s.Count != 3 || s.Total.Cents != 10000 || s.Monthly.Cents != 8000 || s.PriorMonth.Cents != 2000 {
		t.Fatalf("unexpected totals: %+v", s)
	}
	// 2024-03-15 falls inside the week, 2024-03-01 does not.
	if s.Weekly.Cents != 3000 {
		t.Fatalf("Weekly = %d", s.Weekly.Cents)
	}
	if s.CategoryCount != 2 || s.TopCategories[0].Category != core.FoodDining || s.TopCategories[0].Percent != 80 {
		t.Fatalf("unexpected categories: %+v", s.TopCategories)
	}
	if len(s.MonthlyBreakdown) != 2 || s.MonthlyBreakdown[0].Month != "2024-02" {
		t.Fatalf("breakdown not sorted: %+v", s.MonthlyBreakdown)
	}
	if len(s.Recent) != 3 || s.Recent[0].ID != "b" {
		t.Fatalf("unexpected recent: %+v", s.Recent)
	}
	// 100.00 over 30 days (2024-02-20 .. 2024-03-20 inclusive) = 3.333 -> 3.33
	if s.DailyAverage.Cents != 333 {
		t.Fatalf("DailyAverage = %d", s.DailyAverage.Cents)
	}
}

func TestInsights(t *testing.T) {
	// 100.00 over three records = 33.333 -> 33.33
	if got := AveragePerExpense(scenario()).Cents; got != 3333 {
		t.Fatalf("AveragePerExpense = %d", got)
	}
	if got := AveragePerExpense(nil).Cents; got != 0 {
		t.Fatalf("AveragePerExpense(nil) = %d", got)
	}

	// 2024-03-01 and 2024-03-15 are both Fridays.
	day, ok := BusiestWeekday(scenario())
	if !ok || day != time.Friday {
		t.Fatalf("BusiestWeekday = %v, %v", day, ok)
	}
	if _, ok := BusiestWeekday(nil); ok {
		t.Fatalf("empty collection has no busiest weekday")
	}

	// One Monday and one Tuesday: the earlier weekday wins.
	day, _ = BusiestWeekday([]core.Expense{
		exp("x", 100, core.Other, "2024-03-19"),
		exp("y", 100, core.Other, "2024-03-18"),
	})
	if day != time.Monday {
		t.Fatalf("tie should resolve to Monday, got %v", day)
	}

	s := Summarize(scenario(), at(2024, time.March, 20))
	if s.BusiestWeekday != "Friday" || s.AveragePerExpense.Cents != 3333 {
		t.Fatalf("summary insights: %q %d", s.BusiestWeekday, s.AveragePerExpense.Cents)
	}
}

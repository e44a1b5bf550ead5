package http

import (
	"net/url"
	"testing"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{1250, "$12.50"},
		{100000, "$1,000.00"},
		{123456789, "$1,234,567.89"},
		{-1250, "-$12.50"},
	}
	for _, tt := range tests {
		if got := formatMoney(core.Cents(tt.cents)); got != tt.want {
			t.Errorf("formatMoney(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestFilterFromQuery(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		want  core.Filter
		back  string
	}{
		{"empty", url.Values{}, core.Filter{}, ""},
		{"search trimmed", url.Values{"q": {"  bus "}}, core.Filter{Search: "bus"}, "?q=bus"},
		{"category case-insensitive", url.Values{"category": {"travel"}}, core.Filter{Category: core.Travel}, "?category=Travel"},
		{"unknown category ignored", url.Values{"category": {"Pets"}, "q": {"x"}}, core.Filter{Search: "x"}, "?q=x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterFromQuery(tt.query)
			if got != tt.want {
				t.Fatalf("filterFromQuery() = %+v, want %+v", got, tt.want)
			}
			if q := filterQuery(got); q != tt.back {
				t.Fatalf("filterQuery() = %q, want %q", q, tt.back)
			}
		})
	}
}

func TestMonthBars(t *testing.T) {
	bars := monthBars([]analytics.MonthAmount{
		{Month: "2024-01", Amount: core.Cents(1000)},
		{Month: "2024-02", Amount: core.Cents(10)},
		{Month: "2024-03", Amount: core.Cents(500)},
		{Month: "2024-04", Amount: core.Cents(0)},
	})
	want := []int{100, 2, 50, 0}
	for i, b := range bars {
		if b.Width != want[i] {
			t.Errorf("bar %s width = %d, want %d", b.Month, b.Width, want[i])
		}
	}
	if len(monthBars(nil)) != 0 {
		t.Error("expected no bars for an empty breakdown")
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{300, "300"},
		{700.0 / 3, "233.33"},
		{12.5, "12.5"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := formatPercent(tt.in); got != tt.want {
			t.Errorf("formatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatLabels(t *testing.T) {
	if got := formatMonthLabel("2024-03"); got != "Mar 2024" {
		t.Errorf("formatMonthLabel = %q", got)
	}
	if got := formatMonthLabel("bogus"); got != "bogus" {
		t.Errorf("formatMonthLabel should pass through unparsable input, got %q", got)
	}
	if got := formatDate(core.NewDate(2024, 3, 18)); got != "Mar 18, 2024" {
		t.Errorf("formatDate = %q", got)
	}
	if got := formatDate(core.Date{}); got != "" {
		t.Errorf("formatDate of zero = %q", got)
	}
}

package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func record(desc string, cents int64, cat core.Category, date string) core.Expense {
	d, _ := core.ParseDate(date)
	return core.Expense{ID: desc, Description: desc, Amount: core.Cents(cents), Category: cat, Date: d}
}

func TestCSVScenario(t *testing.T) {
	records := []core.Expense{
		record("Groceries", 5000, core.FoodDining, "2024-03-01"),
		record("Dinner", 3000, core.FoodDining, "2024-03-15"),
		record("Bus pass", 2000, core.Transportation, "2024-02-20"),
	}
	want := "Date,Description,Category,Amount\n" +
		"2024-03-01,\"Groceries\",Food & Dining,50\n" +
		"2024-03-15,\"Dinner\",Food & Dining,30\n" +
		"2024-02-20,\"Bus pass\",Transportation,20"

	got := CSV(records)
	if got != want {
		t.Fatalf("unexpected csv:\n%s\nwant:\n%s", got, want)
	}
	if strings.HasSuffix(got, "\n") {
		t.Fatalf("no trailing newline expected")
	}
	if lines := strings.Split(got, "\n"); len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
	}
}

func TestCSVEscapesDescription(t *testing.T) {
	got := CSV([]core.Expense{record(`He said "hi", then left`, 1250, core.Other, "2024-01-02")})
	want := "Date,Description,Category,Amount\n2024-01-02,\"He said \"\"hi\"\", then left\",Other,12.5"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	// Output stays parseable by a standard reader.
	rows, err := csv.NewReader(strings.NewReader(got)).ReadAll()
	if err != nil {
		t.Fatalf("csv parse: %v", err)
	}
	if rows[1][1] != `He said "hi", then left` || rows[1][3] != "12.5" {
		t.Fatalf("unexpected parsed row: %v", rows[1])
	}
}

func TestCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != csvHeader {
		t.Fatalf("expected header only, got %q", buf.String())
	}
}

// Package export renders expense listings for download.
package export

import (
	"io"
	"strings"

	"fintrack/internal/core"
)

const (
	csvHeader = "Date,Description,Category,Amount"
	// Filename is the suggested download name.
	Filename    = "expenses.csv"
	ContentType = "text/csv; charset=utf-8"
)

// CSV renders records as Date,Description,Category,Amount. The
// description is always quoted with embedded quotes doubled; the amount
// is written bare in major units. Rows are separated by "\n" with no
// trailing newline.
//
// encoding/csv only quotes fields that need it, so rows are built by hand
// to keep the description column quoted unconditionally.
func CSV(records []core.Expense) string {
	var b strings.Builder
	b.WriteString(csvHeader)
	for _, e := range records {
		b.WriteByte('\n')
		b.WriteString(e.Date.String())
		b.WriteByte(',')
		b.WriteString(quote(e.Description))
		b.WriteByte(',')
		b.WriteString(field(string(e.Category)))
		b.WriteByte(',')
		b.WriteString(e.Amount.String())
	}
	return b.String()
}

// WriteCSV writes CSV(records) to w.
func WriteCSV(w io.Writer, records []core.Expense) error {
	_, err := io.WriteString(w, CSV(records))
	return err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// field quotes s only when it holds a separator, quote or line break.
func field(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}

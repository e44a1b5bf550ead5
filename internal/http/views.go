package http

import (
	"bytes"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// View names, used for template selection and navigation highlighting.
const (
	viewDashboard = "dashboard"
	viewForm      = "form"
	viewList      = "expenses"
	viewAnalytics = "analytics"
)

var templateFuncs = template.FuncMap{
	"money":      formatMoney,
	"date":       formatDate,
	"monthLabel": formatMonthLabel,
	"percent":    formatPercent,
}

type pageMeta struct {
	Title string
	View  string
}

type dashboardView struct {
	pageMeta
	Summary analytics.Summary
}

type formView struct {
	pageMeta
	Editing    bool
	ID         string
	Input      core.ExpenseInput
	Categories []core.Category
	Error      string
	Field      string
}

type listView struct {
	pageMeta
	Expenses   []core.Expense
	Query      string
	Category   string
	Categories []core.Category
	Total      core.Money
	// HasAny distinguishes an empty collection from an empty search.
	HasAny    bool
	ExportURL string
}

type monthBar struct {
	Month  string
	Amount core.Money
	Width  int
}

type analyticsView struct {
	pageMeta
	Summary analytics.Summary
	Months  []monthBar
}

// render executes the named page into a buffer first so a template error
// still produces a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	logger := log.FromContext(r.Context())
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.ErrorContext(r.Context(), "Template execution failed",
			log.FieldOperation, log.OpRender, "template", name, log.FieldError, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// monthBars scales the breakdown against its largest month.
func monthBars(months []analytics.MonthAmount) []monthBar {
	var largest int64
	for _, m := range months {
		if m.Amount.Cents > largest {
			largest = m.Amount.Cents
		}
	}
	bars := make([]monthBar, 0, len(months))
	for _, m := range months {
		width := 0
		if largest > 0 && m.Amount.Cents > 0 {
			width = int((m.Amount.Cents*100 + largest/2) / largest)
			if width < 2 {
				width = 2
			}
		}
		bars = append(bars, monthBar{Month: m.Month, Amount: m.Amount, Width: width})
	}
	return bars
}

func formatDate(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("Jan 2, 2006")
}

// formatMonthLabel turns "2024-03" into "Mar 2024".
func formatMonthLabel(ym string) string {
	t, err := time.Parse("2006-01", ym)
	if err != nil {
		return ym
	}
	return t.Format("Jan 2006")
}

// formatPercent rounds to at most two decimals, dropping trailing zeros.
func formatPercent(p float64) string {
	return strconv.FormatFloat(math.Round(p*100)/100, 'f', -1, 64)
}

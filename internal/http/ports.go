package http

import (
	"context"
	"io"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
)

// ExpenseService is what the handlers need from the application layer.
type ExpenseService interface {
	List() []core.Expense
	Get(id string) (core.Expense, bool)
	Search(f core.Filter) []core.Expense
	Categories() []core.Category
	Today() core.Date
	Summary() analytics.Summary
	ExportCSV(ctx context.Context, w io.Writer, f core.Filter) (int, error)

	Create(ctx context.Context, in core.ExpenseInput) (core.Expense, error)
	Update(ctx context.Context, id string, in core.ExpenseInput) (core.Expense, error)
	Delete(ctx context.Context, id string) (bool, error)
}

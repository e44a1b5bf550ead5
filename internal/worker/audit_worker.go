// Package worker consumes expense change events.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
)

// Stats counts handled events by type.
type Stats struct {
	Created  int
	Updated  int
	Deleted  int
	LastSeen time.Time
}

// AuditWorker records every change event to the structured log.
type AuditWorker struct {
	logger *log.Logger

	mu    sync.Mutex
	stats Stats
}

func NewAuditWorker(logger *log.Logger) *AuditWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &AuditWorker{logger: logger.WithComponent(log.ComponentWorker)}
}

// HandleEvent writes one audit entry. It has the signature
// amqp.Client.ConsumeExpenseEvents expects.
func (w *AuditWorker) HandleEvent(ctx context.Context, ev *amqp.ExpenseEvent) error {
	fields := log.NewFields()
	fields[log.FieldEventType] = string(ev.Type)
	fields[log.FieldExpenseID] = ev.ID
	fields["event_time"] = ev.Timestamp.Format(time.RFC3339)

	w.mu.Lock()
	defer w.mu.Unlock()

	switch ev.Type {
	case amqp.EventExpenseCreated, amqp.EventExpenseUpdated:
		if ev.Expense == nil {
			return fmt.Errorf("%s event %s has no expense body", ev.Type, ev.ID)
		}
		fields.WithExpense(ev.ID, ev.Expense.Description, ev.Expense.Amount.Cents, string(ev.Expense.Category))
		fields[log.FieldDate] = ev.Expense.Date.String()
		if ev.Type == amqp.EventExpenseCreated {
			w.stats.Created++
		} else {
			w.stats.Updated++
		}
	case amqp.EventExpenseDeleted:
		w.stats.Deleted++
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	w.stats.LastSeen = ev.Timestamp

	w.logger.InfoContext(ctx, "Expense audit", fields.ToSlice()...)
	return nil
}

func (w *AuditWorker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

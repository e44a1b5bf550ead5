package worker

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

func TestAuditWorkerHandleEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Component: log.ComponentWorker, Handler: slog.NewTextHandler(&buf, nil)})
	w := NewAuditWorker(logger)
	ctx := context.Background()

	e := core.Expense{ID: "e1", Amount: core.Cents(1250), Category: core.Travel, Description: "Train", Date: core.NewDate(2024, 3, 1)}
	for _, ev := range []*amqp.ExpenseEvent{
		amqp.NewExpenseEvent(amqp.EventExpenseCreated, e),
		amqp.NewExpenseEvent(amqp.EventExpenseUpdated, e),
		amqp.NewExpenseDeletedEvent("e1"),
	} {
		if err := w.HandleEvent(ctx, ev); err != nil {
			t.Fatalf("handle %s: %v", ev.Type, err)
		}
	}

	st := w.Stats()
	if st.Created != 1 || st.Updated != 1 || st.Deleted != 1 || st.LastSeen.IsZero() {
		t.Fatalf("unexpected stats %+v", st)
	}
	out := buf.String()
	for _, want := range []string{"event_type=expense.created", "amount_cents=1250", "category=Travel", "event_type=expense.deleted"} {
		if !strings.Contains(out, want) {
			t.Fatalf("audit log missing %q:\n%s", want, out)
		}
	}
}

func TestAuditWorkerRejectsMalformedEvents(t *testing.T) {
	w := NewAuditWorker(nil)
	if err := w.HandleEvent(context.Background(), &amqp.ExpenseEvent{Type: amqp.EventExpenseCreated, ID: "x"}); err == nil {
		t.Fatalf("expected error for created event without body")
	}
	if err := w.HandleEvent(context.Background(), &amqp.ExpenseEvent{Type: "expense.archived", ID: "x"}); err == nil {
		t.Fatalf("expected error for unknown type")
	}
	if st := w.Stats(); st.Created+st.Updated+st.Deleted != 0 {
		t.Fatalf("rejected events must not be counted: %+v", st)
	}
}

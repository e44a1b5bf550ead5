package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// ExpenseService orchestrates the record store and the optional change
// event publisher. Events go out only after the store has persisted the
// change; a publish failure is logged and never fails the operation.
type ExpenseService struct {
	store     *store.Store
	publisher EventPublisher
	logger    *log.Logger
	now       func() time.Time
}

type ServiceOption func(*ExpenseService)

// WithPublisher enables change events. A nil publisher leaves them off.
func WithPublisher(p EventPublisher) ServiceOption {
	return func(s *ExpenseService) { s.publisher = p }
}

// WithNow sets the reference clock for summaries.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *ExpenseService) { s.now = now }
}

func NewExpenseService(st *store.Store, logger *log.Logger, opts ...ServiceOption) *ExpenseService {
	if logger == nil {
		logger = log.Discard()
	}
	s := &ExpenseService{
		store:  st,
		logger: logger.WithComponent(log.ComponentExpense),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted collection into the store.
func (s *ExpenseService) Load(ctx context.Context) error {
	records, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}
	s.logger.InfoContext(ctx, "Expense collection ready", log.FieldCount, len(records))
	return nil
}

func (s *ExpenseService) List() []core.Expense {
	return s.store.List()
}

func (s *ExpenseService) Get(id string) (core.Expense, bool) {
	return s.store.Get(id)
}

// Search applies f to the collection, preserving store order.
func (s *ExpenseService) Search(f core.Filter) []core.Expense {
	return f.Apply(s.store.List())
}

// Categories lists the categories present in the collection.
func (s *ExpenseService) Categories() []core.Category {
	return core.CategoriesIn(s.store.List())
}

func (s *ExpenseService) Today() core.Date {
	return core.DateOf(s.now())
}

// Summary recomputes every aggregate from the current collection.
func (s *ExpenseService) Summary() analytics.Summary {
	return analytics.Summarize(s.store.List(), s.now())
}

// ExportCSV writes the records matching f as CSV.
func (s *ExpenseService) ExportCSV(ctx context.Context, w io.Writer, f core.Filter) (int, error) {
	records := s.Search(f)
	if err := export.WriteCSV(w, records); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	s.logger.DebugContext(ctx, "Expenses exported", log.FieldOperation, log.OpExport, log.FieldCount, len(records))
	return len(records), nil
}

func (s *ExpenseService) Create(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	e, err := s.store.Add(ctx, in)
	if err != nil {
		s.logFailure(ctx, log.OpCreate, "", err)
		return core.Expense{}, err
	}
	s.logger.InfoContext(ctx, "Expense created", s.fields(log.OpCreate, e).ToSlice()...)
	s.publish(ctx, amqp.NewExpenseEvent(amqp.EventExpenseCreated, e))
	return e, nil
}

func (s *ExpenseService) Update(ctx context.Context, id string, in core.ExpenseInput) (core.Expense, error) {
	e, err := s.store.Update(ctx, id, in)
	if err != nil {
		s.logFailure(ctx, log.OpUpdate, id, err)
		return core.Expense{}, err
	}
	s.logger.InfoContext(ctx, "Expense updated", s.fields(log.OpUpdate, e).ToSlice()...)
	s.publish(ctx, amqp.NewExpenseEvent(amqp.EventExpenseUpdated, e))
	return e, nil
}

// Delete removes id. Removing an absent id is not an error and publishes
// nothing.
func (s *ExpenseService) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		s.logFailure(ctx, log.OpDelete, id, err)
		return false, err
	}
	if !removed {
		s.logger.DebugContext(ctx, "Delete of unknown expense ignored", log.FieldExpenseID, id)
		return false, nil
	}
	s.logger.InfoContext(ctx, "Expense deleted", log.FieldOperation, log.OpDelete, log.FieldExpenseID, id)
	s.publish(ctx, amqp.NewExpenseDeletedEvent(id))
	return true, nil
}

func (s *ExpenseService) publish(ctx context.Context, ev *amqp.ExpenseEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish expense event",
			log.FieldEventType, ev.Type, log.FieldExpenseID, ev.ID, log.FieldError, err)
	}
}

func (s *ExpenseService) fields(op string, e core.Expense) log.LogFields {
	return log.NewFields().
		WithOperation(op).
		WithExpense(e.ID, e.Description, e.Amount.Cents, string(e.Category))
}

func (s *ExpenseService) logFailure(ctx context.Context, op, id string, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		s.logger.DebugContext(ctx, "Expense rejected", log.FieldOperation, op, "field", verr.Field, log.FieldError, err)
	case errors.Is(err, core.ErrNotFound):
		s.logger.WarnContext(ctx, "Expense not found", log.FieldOperation, op, log.FieldExpenseID, id)
	default:
		s.logger.LogError(ctx, "Expense operation failed", err, op, log.NewFields().WithExpense(id, "", 0, ""))
	}
}

// Close releases the publisher if it holds resources.
func (s *ExpenseService) Close() error {
	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}

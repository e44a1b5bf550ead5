package services

import (
	"context"

	"fintrack/internal/amqp"
)

// EventPublisher announces persisted changes. amqp.Client implements it.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, ev *amqp.ExpenseEvent) error
}

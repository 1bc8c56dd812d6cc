package services

import (
	"context"
	"fmt"
	"log/slog"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	"kharcha/internal/storage"
)

// ExpenseService owns ledger writes and windowed aggregation.
type ExpenseService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	today      func() core.Date
}

func NewExpenseService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{
		storage:    storage,
		amqpClient: amqpClient,
		today:      core.Today,
	}
}

// Add validates a manual entry, appends it to the ledger and publishes
// an expense.created event. Defaults are filled before validation:
// source manual, date today, raw falls back to the description.
func (s *ExpenseService) Add(ctx context.Context, e core.Expense) (int64, error) {
	if e.Source == "" {
		e.Source = core.SourceManual
	}
	if e.Date.IsZero() {
		e.Date = s.today()
	}
	if e.Raw == "" {
		e.Raw = e.Description
	}
	if err := e.Validate(); err != nil {
		return 0, err
	}

	id, err := s.storage.InsertExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}

	// The event feed is best-effort; a broker outage never fails the
	// request once the row is written.
	if s.amqpClient != nil {
		if err := s.amqpClient.PublishExpenseCreated(ctx, id, string(e.Source), e.Amount); err != nil {
			slog.ErrorContext(ctx, "Failed to publish expense event",
				"id", id, "error", err)
		}
	}

	return id, nil
}

// Summarize aggregates the trailing window. days <= 0 covers all
// history; days = N covers today and the N-1 days before it, so the
// window holds exactly N calendar days. source filters to one
// ingestion source, core.SourceAll disables the filter.
func (s *ExpenseService) Summarize(ctx context.Context, days int, source core.Source) (core.Summary, error) {
	minDate := ""
	if days > 0 {
		minDate = s.today().AddDays(-(days - 1)).ISO()
	}

	expenses, err := s.storage.QueryExpenses(ctx, minDate, source)
	if err != nil {
		return core.Summary{}, fmt.Errorf("query expenses: %w", err)
	}

	return core.Summarize(expenses), nil
}

// Close closes both storage and AMQP connections
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}

	return nil
}

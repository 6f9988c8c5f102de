package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"pennywise/internal/amqp"
	"pennywise/internal/core"
	"pennywise/internal/storage"
)

// EventPublisher notifies external consumers about expense changes.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, ev *amqp.ExpenseEvent) error
}

// ExpenseService wraps the store with validation, aggregation and event
// publishing. All reads recompute from the store on every call; nothing is
// cached between calls.
type ExpenseService struct {
	store     storage.Store
	publisher EventPublisher
}

func NewExpenseService(store storage.Store, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{
		store:     store,
		publisher: publisher,
	}
}

// AddExpense validates and persists a new expense, returning its assigned id.
func (s *ExpenseService) AddExpense(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}

	s.publish(ctx, amqp.NewExpenseEvent(amqp.ActionCreated, id, e.UserID))
	return id, nil
}

// UpdateExpense overwrites amount, category, description and date of the
// expense identified by e.ID. The owning user never changes. A missing id
// surfaces as storage.ErrNotFound with no side effects.
func (s *ExpenseService) UpdateExpense(ctx context.Context, e core.Expense) error {
	existing, err := s.store.GetExpense(ctx, e.ID)
	if err != nil {
		return err
	}

	e.UserID = existing.UserID
	if err := e.Validate(); err != nil {
		return err
	}

	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}

	s.publish(ctx, amqp.NewExpenseEvent(amqp.ActionUpdated, e.ID, existing.UserID))
	return nil
}

// DeleteExpense removes the expense permanently; there is no soft delete.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	existing, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	s.publish(ctx, amqp.NewExpenseEvent(amqp.ActionDeleted, id, existing.UserID))
	return nil
}

func (s *ExpenseService) Expenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, userID)
}

func (s *ExpenseService) Categories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

// CategoryTotals sums the user's expenses per category name.
func (s *ExpenseService) CategoryTotals(ctx context.Context, userID int64) (map[string]core.Money, error) {
	var (
		expenses   []core.Expense
		categories []core.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.store.ListExpenses(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.store.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}

	return core.CategoryTotals(expenses, categories), nil
}

// MonthlySummary sums the user's expenses per calendar month ("YYYY-MM").
func (s *ExpenseService) MonthlySummary(ctx context.Context, userID int64) (map[string]core.Money, error) {
	expenses, err := s.store.ListExpenses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("monthly summary: %w", err)
	}
	return core.MonthlySummary(expenses), nil
}

func (s *ExpenseService) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// publish is best-effort: a failed or absent publisher never fails the
// operation, the row is already committed.
func (s *ExpenseService) publish(ctx context.Context, ev *amqp.ExpenseEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"action", ev.Action,
			"expense_id", ev.ExpenseID,
			"error", err)
	}
}

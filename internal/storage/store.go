package storage

import (
	"context"
	"errors"

	"pennywise/internal/core"
)

var (
	// ErrNotFound reports that an update or delete targeted an expense id
	// that does not exist. It is a normal outcome, not a failure.
	ErrNotFound = errors.New("expense not found")

	// ErrReferentialIntegrity reports a write referencing a user or
	// category row that does not exist.
	ErrReferentialIntegrity = errors.New("referential integrity violation")
)

// Store is the persistence boundary for expense data. Every mutating call
// commits durably before returning; there are no multi-operation transactions.
type Store interface {
	CreateExpense(ctx context.Context, e core.Expense) (int64, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)

	// UpdateExpense overwrites amount, category, description and date of
	// the row identified by e.ID. UserID and ID are never changed.
	UpdateExpense(ctx context.Context, e core.Expense) error

	DeleteExpense(ctx context.Context, id int64) error

	// ListExpenses returns all of a user's expenses ordered by date then id.
	ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error)

	ListCategories(ctx context.Context) ([]core.Category, error)

	// EnsureUser returns the id of the user with the given email, creating
	// the row on first run.
	EnsureUser(ctx context.Context, username, email, passwordHash string) (int64, error)

	Close() error
}

package memory

import (
	"context"
	"errors"
	"testing"

	"pennywise/internal/core"
	"pennywise/internal/storage"
)

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	s := NewWithDefaults()

	userID, err := s.EnsureUser(ctx, "demo_user", "demo@example.com", "hash")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}

	id, err := s.CreateExpense(ctx, core.Expense{
		UserID: userID, Amount: core.Money{Cents: 300}, CategoryID: 1, Date: core.NewDate(2024, 5, 5),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.CreateExpense(ctx, core.Expense{
		UserID: userID, Amount: core.Money{Cents: 300}, CategoryID: 999, Date: core.NewDate(2024, 5, 5),
	}); !errors.Is(err, storage.ErrReferentialIntegrity) {
		t.Fatalf("expected ErrReferentialIntegrity, got %v", err)
	}

	if err := s.UpdateExpense(ctx, core.Expense{
		ID: id + 50, Amount: core.Money{Cents: 1}, CategoryID: 1, Date: core.NewDate(2024, 5, 5),
	}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}

	if err := s.DeleteExpense(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteExpense(ctx, id); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat delete, got %v", err)
	}

	// Ids keep increasing after a delete.
	next, err := s.CreateExpense(ctx, core.Expense{
		UserID: userID, Amount: core.Money{Cents: 100}, CategoryID: 2, Date: core.NewDate(2024, 5, 6),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if next <= id {
		t.Fatalf("expected fresh id after delete, got %d <= %d", next, id)
	}
}

func TestListExpensesSorted(t *testing.T) {
	ctx := context.Background()
	s := NewWithDefaults()
	userID, _ := s.EnsureUser(ctx, "demo_user", "demo@example.com", "hash")

	for _, d := range []core.Date{core.NewDate(2024, 3, 1), core.NewDate(2024, 1, 1), core.NewDate(2024, 2, 1)} {
		if _, err := s.CreateExpense(ctx, core.Expense{
			UserID: userID, Amount: core.Money{Cents: 1}, CategoryID: 1, Date: d,
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := s.ListExpenses(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := 1; i < len(list); i++ {
		if list[i].Date.Before(list[i-1].Date.Time) {
			t.Fatalf("expenses not sorted by date: %+v", list)
		}
	}
}

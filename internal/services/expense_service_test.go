package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"pennywise/internal/amqp"
	"pennywise/internal/core"
	"pennywise/internal/storage"
	"pennywise/internal/storage/memory"
)

type recordingPublisher struct {
	events []*amqp.ExpenseEvent
	err    error
}

func (p *recordingPublisher) PublishExpenseEvent(_ context.Context, ev *amqp.ExpenseEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func newTestService(t *testing.T) (*ExpenseService, *recordingPublisher, int64) {
	t.Helper()
	store := memory.NewWithDefaults()
	userID, err := store.EnsureUser(context.Background(), "demo_user", "demo@example.com", "hash")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	pub := &recordingPublisher{}
	return NewExpenseService(store, pub), pub, userID
}

func TestAddExpenseRejectsInvalidInput(t *testing.T) {
	svc, pub, userID := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddExpense(ctx, core.Expense{
		UserID: userID, Amount: core.Money{Cents: -1}, CategoryID: 1, Date: core.NewDate(2024, 1, 1),
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	// Nothing was stored and no event went out.
	list, err := svc.Expenses(ctx, userID)
	if err != nil {
		t.Fatalf("expenses: %v", err)
	}
	if len(list) != 0 || len(pub.events) != 0 {
		t.Fatalf("invalid input left side effects: %d rows, %d events", len(list), len(pub.events))
	}
}

func TestAddExpensePublishesCreated(t *testing.T) {
	svc, pub, userID := newTestService(t)
	ctx := context.Background()

	id, err := svc.AddExpense(ctx, core.Expense{
		UserID: userID, Amount: core.Money{Cents: 1200}, CategoryID: 1,
		Description: "lunch", Date: core.NewDate(2024, 6, 10),
	})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	ev := pub.events[0]
	if ev.Action != amqp.ActionCreated || ev.ExpenseID != id || ev.UserID != userID {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestAddExpensePublishFailureDoesNotFail(t *testing.T) {
	svc, pub, userID := newTestService(t)
	pub.err = errors.New("broker down")
	ctx := context.Background()

	id, err := svc.AddExpense(ctx, core.Expense{
		UserID: userID, Amount: core.Money{Cents: 100}, CategoryID: 1, Date: core.NewDate(2024, 1, 1),
	})
	if err != nil {
		t.Fatalf("add expense should not fail on publish error: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected assigned id, got %d", id)
	}
}

func TestUpdateExpenseKeepsOwner(t *testing.T) {
	svc, pub, userID := newTestService(t)
	ctx := context.Background()

	id, err := svc.AddExpense(ctx, core.Expense{
		UserID: userID, Amount: core.Money{Cents: 500}, CategoryID: 1, Date: core.NewDate(2024, 1, 1),
	})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}

	// UserID on the update request is ignored, the row keeps its owner.
	err = svc.UpdateExpense(ctx, core.Expense{
		ID: id, UserID: 999, Amount: core.Money{Cents: 800}, CategoryID: 2,
		Description: "updated", Date: core.NewDate(2024, 2, 2),
	})
	if err != nil {
		t.Fatalf("update expense: %v", err)
	}

	list, err := svc.Expenses(ctx, userID)
	if err != nil {
		t.Fatalf("expenses: %v", err)
	}
	if len(list) != 1 || list[0].Amount.Cents != 800 || list[0].UserID != userID {
		t.Fatalf("unexpected row after update: %+v", list)
	}
	if last := pub.events[len(pub.events)-1]; last.Action != amqp.ActionUpdated || last.UserID != userID {
		t.Fatalf("unexpected update event: %+v", last)
	}
}

func TestUpdateExpenseNotFound(t *testing.T) {
	svc, pub, _ := newTestService(t)

	err := svc.UpdateExpense(context.Background(), core.Expense{
		ID: 12345, Amount: core.Money{Cents: 1}, CategoryID: 1, Date: core.NewDate(2024, 1, 1),
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("not-found update must not publish, got %d events", len(pub.events))
	}
}

func TestDeleteExpense(t *testing.T) {
	svc, pub, userID := newTestService(t)
	ctx := context.Background()

	id, err := svc.AddExpense(ctx, core.Expense{
		UserID: userID, Amount: core.Money{Cents: 100}, CategoryID: 1, Date: core.NewDate(2024, 1, 1),
	})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}

	if err := svc.DeleteExpense(ctx, id); err != nil {
		t.Fatalf("delete expense: %v", err)
	}
	if err := svc.DeleteExpense(ctx, id); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat delete, got %v", err)
	}
	if last := pub.events[len(pub.events)-1]; last.Action != amqp.ActionDeleted || last.ExpenseID != id {
		t.Fatalf("unexpected delete event: %+v", last)
	}
}

func TestAggregates(t *testing.T) {
	svc, _, userID := newTestService(t)
	ctx := context.Background()

	// Category 1 is "Food", category 2 is "Transport" in the default seed.
	seed := []core.Expense{
		{UserID: userID, Amount: core.Money{Cents: 2000}, CategoryID: 1, Date: core.NewDate(2024, 1, 5)},
		{UserID: userID, Amount: core.Money{Cents: 500}, CategoryID: 2, Date: core.NewDate(2024, 1, 20)},
		{UserID: userID, Amount: core.Money{Cents: 700}, CategoryID: 1, Date: core.NewDate(2024, 2, 1)},
	}
	for _, e := range seed {
		if _, err := svc.AddExpense(ctx, e); err != nil {
			t.Fatalf("add expense: %v", err)
		}
	}

	totals, err := svc.CategoryTotals(ctx, userID)
	if err != nil {
		t.Fatalf("category totals: %v", err)
	}
	wantTotals := map[string]core.Money{
		"Food":      {Cents: 2700},
		"Transport": {Cents: 500},
	}
	if !reflect.DeepEqual(totals, wantTotals) {
		t.Fatalf("expected %v, got %v", wantTotals, totals)
	}

	months, err := svc.MonthlySummary(ctx, userID)
	if err != nil {
		t.Fatalf("monthly summary: %v", err)
	}
	wantMonths := map[string]core.Money{
		"2024-01": {Cents: 2500},
		"2024-02": {Cents: 700},
	}
	if !reflect.DeepEqual(months, wantMonths) {
		t.Fatalf("expected %v, got %v", wantMonths, months)
	}

	// Reads are idempotent with no intervening writes.
	again, err := svc.CategoryTotals(ctx, userID)
	if err != nil {
		t.Fatalf("category totals: %v", err)
	}
	if !reflect.DeepEqual(totals, again) {
		t.Fatalf("totals changed between calls: %v vs %v", totals, again)
	}
}

func TestAggregatesEmptyUser(t *testing.T) {
	svc, _, userID := newTestService(t)
	ctx := context.Background()

	totals, err := svc.CategoryTotals(ctx, userID)
	if err != nil {
		t.Fatalf("category totals: %v", err)
	}
	if len(totals) != 0 {
		t.Fatalf("expected empty totals, got %v", totals)
	}

	months, err := svc.MonthlySummary(ctx, userID)
	if err != nil {
		t.Fatalf("monthly summary: %v", err)
	}
	if len(months) != 0 {
		t.Fatalf("expected empty summary, got %v", months)
	}
}

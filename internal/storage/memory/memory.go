// Package memory provides a map-backed Store for the demo backend and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"pennywise/internal/core"
	"pennywise/internal/storage"
)

type Store struct {
	mu         sync.Mutex
	users      map[int64]core.User
	categories []core.Category
	expenses   map[int64]core.Expense

	nextUserID    int64
	nextExpenseID int64 // ids are never reused, even after deletes
}

func New(categories []core.Category) *Store {
	return &Store{
		users:      make(map[int64]core.User),
		categories: append([]core.Category(nil), categories...),
		expenses:   make(map[int64]core.Expense),
	}
}

// NewWithDefaults seeds the same reference categories the SQLite migration does.
func NewWithDefaults() *Store {
	names := []string{"Food", "Transport", "Housing", "Utilities", "Healthcare", "Entertainment", "Shopping", "Other"}
	cats := make([]core.Category, len(names))
	for i, n := range names {
		cats[i] = core.Category{ID: int64(i + 1), Name: n}
	}
	return New(cats)
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[e.UserID]; !ok {
		return 0, storage.ErrReferentialIntegrity
	}
	if !s.hasCategory(e.CategoryID) {
		return 0, storage.ErrReferentialIntegrity
	}

	s.nextExpenseID++
	e.ID = s.nextExpenseID
	s.expenses[e.ID] = e
	return e.ID, nil
}

func (s *Store) GetExpense(_ context.Context, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, storage.ErrNotFound
	}
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.expenses[e.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if !s.hasCategory(e.CategoryID) {
		return storage.ErrReferentialIntegrity
	}

	existing.Amount = e.Amount
	existing.CategoryID = e.CategoryID
	existing.Description = e.Description
	existing.Date = e.Date
	s.expenses[e.ID] = existing
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

func (s *Store) ListExpenses(_ context.Context, userID int64) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Expense
	for _, e := range s.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sortExpenses(out)
	return out, nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.categories...), nil
}

func (s *Store) EnsureUser(_ context.Context, username, email, passwordHash string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if u.Email == email {
			return id, nil
		}
	}
	s.nextUserID++
	s.users[s.nextUserID] = core.User{
		ID:           s.nextUserID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
	return s.nextUserID, nil
}

func (s *Store) Close() error { return nil }

func (s *Store) hasCategory(id int64) bool {
	for _, c := range s.categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// sortExpenses matches the SQLite ordering: date ascending, then id.
func sortExpenses(expenses []core.Expense) {
	sort.Slice(expenses, func(i, j int) bool {
		if !expenses[i].Date.Equal(expenses[j].Date.Time) {
			return expenses[i].Date.Before(expenses[j].Date.Time)
		}
		return expenses[i].ID < expenses[j].ID
	})
}

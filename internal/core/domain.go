package core

import (
	"errors"
	"strings"
	"time"
)

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	User struct {
		ID           int64
		Username     string
		Email        string
		PasswordHash string
	}

	// Category is reference data: rows are seeded by migration and never
	// mutated by the application.
	Category struct {
		ID   int64
		Name string
	}

	Expense struct {
		ID          int64
		UserID      int64
		Amount      Money
		CategoryID  int64
		Description string // optional
		Date        Date
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidUser        = errors.New("invalid user id")
	ErrInvalidCategory    = errors.New("invalid category id")
	ErrInvalidDescription = errors.New("description too long")
)

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a calendar date in ISO form (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// AddDays shifts the date by n calendar days; n may be negative.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String returns the ISO calendar form used for storage and display.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MonthKey truncates the date to its calendar month, e.g. "2024-01".
// Lexicographic order of month keys is chronological order.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if e.UserID <= 0 {
		return ErrInvalidUser
	}
	if e.CategoryID <= 0 {
		return ErrInvalidCategory
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(e.Description) > 255 {
		return ErrInvalidDescription
	}
	return nil
}

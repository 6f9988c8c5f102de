package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"pennywise/internal/core"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepository implements Store over a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// foreign_keys is off by default in SQLite; the schema relies on it.
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	query := `INSERT INTO expenses (user_id, amount_cents, category_id, description, date)
	          VALUES (?, ?, ?, ?, ?) RETURNING expense_id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		e.UserID, e.Amount.Cents, e.CategoryID, e.Description, e.Date.String()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", classify(err))
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"user_id", e.UserID,
		"category_id", e.CategoryID,
		"amount_cents", e.Amount.Cents,
		"date", e.Date.String())

	return id, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	query := `SELECT expense_id, user_id, amount_cents, category_id, COALESCE(description, ''), date
	          FROM expenses WHERE expense_id = ?`

	e, err := scanExpense(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, ErrNotFound
		}
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	query := `UPDATE expenses
	          SET amount_cents = ?, category_id = ?, description = ?, date = ?
	          WHERE expense_id = ?`

	res, err := r.db.ExecContext(ctx, query,
		e.Amount.Cents, e.CategoryID, e.Description, e.Date.String(), e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update expense rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Expense updated", "id", e.ID, "amount_cents", e.Amount.Cents)
	return nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE expense_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	query := `SELECT expense_id, user_id, amount_cents, category_id, COALESCE(description, ''), date
	          FROM expenses WHERE user_id = ? ORDER BY date, expense_id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category_id, name FROM categories ORDER BY category_id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) EnsureUser(ctx context.Context, username, email, passwordHash string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM users WHERE email = ?`, email).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("look up user: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password) VALUES (?, ?, ?) RETURNING user_id`,
		username, email, passwordHash).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "id", id, "username", username, "email", email)
	return id, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e       core.Expense
		rawDate string
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.Amount.Cents, &e.CategoryID, &e.Description, &rawDate); err != nil {
		return core.Expense{}, err
	}
	d, err := core.ParseDate(rawDate)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse stored date %q: %w", rawDate, err)
	}
	e.Date = d
	return e, nil
}

// classify maps driver-level constraint failures onto the storage sentinels.
func classify(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return fmt.Errorf("%w: %v", ErrReferentialIntegrity, err)
	}
	return err
}

package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"pennywise/internal/core"
	"pennywise/internal/storage"
)

type totalRow struct {
	Name   string
	Amount string
	// Percent is the row's share of the grand total, 0-100, for the
	// proportion bar next to each category.
	Percent int
}

type expenseRow struct {
	ID          int64
	Amount      string
	CategoryID  int64
	Category    string
	Description string
	Date        string
}

type indexData struct {
	Categories []core.Category
	Expenses   []expenseRow
	ByCategory []totalRow
	ByMonth    []totalRow
	Error      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.renderIndex(w, r, "", http.StatusOK)
}

// renderIndex re-fetches everything and renders the full page. Mutating
// handlers call it with an error message instead of pretending success.
// A failed read must not pass for an empty state, so it overrides the
// message and status with a 500 of its own.
func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, errMsg string, status int) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	data := indexData{Error: errMsg}

	categories, err := s.svc.Categories(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Category list error", "error", err)
		data.Error = "Could not load categories"
		status = http.StatusInternalServerError
	}
	data.Categories = categories

	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	expenses, err := s.svc.Expenses(ctx, s.userID)
	if err != nil {
		slog.ErrorContext(ctx, "Expense list error", "error", err, "user_id", s.userID)
		data.Error = "Could not load expenses"
		status = http.StatusInternalServerError
	}
	for _, e := range expenses {
		name, ok := names[e.CategoryID]
		if !ok {
			name = "category #" + strconv.FormatInt(e.CategoryID, 10)
		}
		data.Expenses = append(data.Expenses, expenseRow{
			ID:          e.ID,
			Amount:      e.Amount.String(),
			CategoryID:  e.CategoryID,
			Category:    name,
			Description: e.Description,
			Date:        e.Date.String(),
		})
	}

	byCategory, byMonth, err := s.summaryRows(r)
	if err != nil {
		data.Error = "Could not load summaries"
		status = http.StatusInternalServerError
	}
	data.ByCategory, data.ByMonth = byCategory, byMonth

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(ctx, "Index template execution failed", "error", err, "template", "index.html")
	}
}

func (s *Server) summaryRows(r *http.Request) (byCategory, byMonth []totalRow, err error) {
	ctx := r.Context()

	totals, err := s.svc.CategoryTotals(ctx, s.userID)
	if err != nil {
		slog.ErrorContext(ctx, "Category totals error", "error", err, "user_id", s.userID)
		return nil, nil, err
	}
	var grand int64
	for _, m := range totals {
		grand += m.Cents
	}
	for _, name := range core.SortedKeys(totals) {
		row := totalRow{Name: name, Amount: totals[name].String()}
		if grand > 0 {
			row.Percent = int(totals[name].Cents * 100 / grand)
		}
		byCategory = append(byCategory, row)
	}

	months, err := s.svc.MonthlySummary(ctx, s.userID)
	if err != nil {
		slog.ErrorContext(ctx, "Monthly summary error", "error", err, "user_id", s.userID)
		return nil, nil, err
	}
	for _, key := range core.SortedKeys(months) {
		byMonth = append(byMonth, totalRow{Name: key, Amount: months[key].String()})
	}
	return byCategory, byMonth, nil
}

// handleSummary renders the aggregate tables as a standalone partial.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	byCategory, byMonth, err := s.summaryRows(r)
	if err != nil {
		http.Error(w, "Could not load summary", http.StatusInternalServerError)
		return
	}
	data := struct {
		ByCategory []totalRow
		ByMonth    []totalRow
	}{byCategory, byMonth}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "summary.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Summary template execution failed", "error", err, "template", "summary.html")
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		s.renderIndex(w, r, "Invalid request format", http.StatusBadRequest)
		return
	}

	e, msg := s.expenseFromForm(r)
	if msg != "" {
		s.renderIndex(w, r, msg, http.StatusUnprocessableEntity)
		return
	}
	e.UserID = s.userID

	if _, err := s.svc.AddExpense(r.Context(), e); err != nil {
		s.renderError(w, r, err, "Could not add expense")
		return
	}

	// Redirect so a refresh re-fetches instead of re-submitting.
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderIndex(w, r, "Invalid request format", http.StatusBadRequest)
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(r.Form.Get("expense_id")), 10, 64)
	if err != nil || id <= 0 {
		s.renderIndex(w, r, "Invalid expense id", http.StatusUnprocessableEntity)
		return
	}

	e, msg := s.expenseFromForm(r)
	if msg != "" {
		s.renderIndex(w, r, msg, http.StatusUnprocessableEntity)
		return
	}
	e.ID = id

	if err := s.svc.UpdateExpense(r.Context(), e); err != nil {
		s.renderError(w, r, err, "Could not update expense")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderIndex(w, r, "Invalid request format", http.StatusBadRequest)
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(r.Form.Get("expense_id")), 10, 64)
	if err != nil || id <= 0 {
		s.renderIndex(w, r, "Invalid expense id", http.StatusUnprocessableEntity)
		return
	}

	if err := s.svc.DeleteExpense(r.Context(), id); err != nil {
		s.renderError(w, r, err, "Could not delete expense")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// expenseFromForm parses the shared amount/category/description/date fields.
// It returns a user-facing message when the input is invalid.
func (s *Server) expenseFromForm(r *http.Request) (core.Expense, string) {
	var e core.Expense

	cents, err := core.ParseDecimalToCents(r.Form.Get("amount"))
	if err != nil {
		return e, "Invalid amount"
	}
	e.Amount = core.Money{Cents: cents}

	categoryID, err := strconv.ParseInt(strings.TrimSpace(r.Form.Get("category_id")), 10, 64)
	if err != nil || categoryID <= 0 {
		return e, "Invalid category"
	}
	e.CategoryID = categoryID

	date, err := core.ParseDate(r.Form.Get("date"))
	if err != nil {
		return e, "Invalid date"
	}
	e.Date = date

	e.Description = sanitizeInput(r.Form.Get("description"))
	if len(e.Description) > 255 {
		return e, "Description too long (max 255 characters)"
	}

	return e, ""
}

// renderError maps operation failures onto statuses and re-renders the page.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	ctx := r.Context()
	switch {
	case errors.Is(err, storage.ErrNotFound):
		slog.WarnContext(ctx, "Expense not found", "error", err, "url", r.URL.Path)
		s.renderIndex(w, r, "Expense not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrReferentialIntegrity):
		slog.WarnContext(ctx, "Referential integrity violation", "error", err, "url", r.URL.Path)
		s.renderIndex(w, r, "Unknown user or category", http.StatusUnprocessableEntity)
	case errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidUser), errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrInvalidDescription):
		s.renderIndex(w, r, msg, http.StatusUnprocessableEntity)
	default:
		slog.ErrorContext(ctx, "Operation failed", "error", err, "url", r.URL.Path)
		s.renderIndex(w, r, msg, http.StatusInternalServerError)
	}
}

// sanitizeInput removes control characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

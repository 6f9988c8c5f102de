package core

import (
	"sort"
	"strconv"
)

// CategoryTotals groups a user's expenses by category and sums the amounts,
// keying each group by the category's name. An expense whose category id is
// absent from categories is kept under a deterministic "category #<id>" label
// rather than dropped, so the totals always account for every row.
//
// Zero expenses yield an empty, non-nil map.
func CategoryTotals(expenses []Expense, categories []Category) map[string]Money {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	totals := make(map[string]Money)
	for _, e := range expenses {
		name, ok := names[e.CategoryID]
		if !ok {
			name = "category #" + strconv.FormatInt(e.CategoryID, 10)
		}
		t := totals[name]
		t.Cents += e.Amount.Cents
		totals[name] = t
	}
	return totals
}

// MonthlySummary groups expenses by calendar month ("YYYY-MM") and sums the
// amounts. Months without expenses do not appear; there is no zero-filling.
func MonthlySummary(expenses []Expense) map[string]Money {
	totals := make(map[string]Money)
	for _, e := range expenses {
		key := e.Date.MonthKey()
		t := totals[key]
		t.Cents += e.Amount.Cents
		totals[key] = t
	}
	return totals
}

// SortedKeys returns the map's keys in lexicographic order. For month keys
// this is chronological order.
func SortedKeys(m map[string]Money) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

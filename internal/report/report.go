// Package report implements the read-only aggregations over the ledger.
// Every function is pure over a full row slice: the caller fetches the
// rows, these functions never touch the store.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/danuwira/duitbot/internal/model"
)

// MatchLimit caps how many rows a search or category listing returns.
const MatchLimit = 10

// Totals holds the full-ledger income/expense aggregate.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// Sum computes the full-ledger totals. Rows with an unknown kind or a
// malformed amount contribute zero; they never abort the report.
func Sum(rows []model.Transaction) Totals {
	var t Totals
	for _, row := range rows {
		switch row.Kind {
		case model.KindIncome:
			t.Income = t.Income.Add(row.Amount)
		case model.KindExpense:
			t.Expense = t.Expense.Add(row.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}

// Entry pairs a transaction with its user-facing number and its sheet
// ordinal. Number 1 is the most recent row; Ordinal is the 1-based sheet
// position used by mutations.
type Entry struct {
	Tx      model.Transaction
	Number  int
	Ordinal int
}

// Recent returns up to n entries, most recent first. The Number field is
// what `.hapus`/`.edit` accept; OrdinalForNumber maps it back.
func Recent(rows []model.Transaction, n int) []Entry {
	if n > len(rows) {
		n = len(rows)
	}
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		ordinal := len(rows) - i
		entries = append(entries, Entry{
			Number:  i + 1,
			Ordinal: ordinal,
			Tx:      rows[ordinal-1],
		})
	}
	return entries
}

// OrdinalForNumber converts a user-facing number (1 = most recent) into a
// sheet ordinal. Returns 0 when the number is out of range.
func OrdinalForNumber(number, count int) int {
	if number < 1 || number > count {
		return 0
	}
	return count - number + 1
}

// SearchResult holds a capped keyword match set.
type SearchResult struct {
	Matches   []model.Transaction
	Total     int
	Remaining int
}

// Search finds rows whose note or category contains the keyword,
// case-insensitively. At most MatchLimit rows are returned; Remaining
// counts the rest.
func Search(rows []model.Transaction, keyword string) SearchResult {
	keyword = strings.ToLower(keyword)
	var result SearchResult
	for _, row := range rows {
		if !strings.Contains(strings.ToLower(row.Note), keyword) &&
			!strings.Contains(strings.ToLower(row.Category), keyword) {
			continue
		}
		result.Total++
		if len(result.Matches) < MatchLimit {
			result.Matches = append(result.Matches, row)
		}
	}
	result.Remaining = result.Total - len(result.Matches)
	return result
}

// CategoryResult holds a capped exact-category match set with a subtotal.
type CategoryResult struct {
	Matches   []model.Transaction
	Subtotal  decimal.Decimal
	Total     int
	Remaining int
}

// ByCategory finds rows whose category equals name, case-insensitively.
// The subtotal covers every match, including rows beyond the cap.
func ByCategory(rows []model.Transaction, name string) CategoryResult {
	var result CategoryResult
	for _, row := range rows {
		if !strings.EqualFold(row.Category, name) {
			continue
		}
		result.Total++
		result.Subtotal = result.Subtotal.Add(row.Amount)
		if len(result.Matches) < MatchLimit {
			result.Matches = append(result.Matches, row)
		}
	}
	result.Remaining = result.Total - len(result.Matches)
	return result
}

// PeriodKind selects the date window for a period report.
type PeriodKind int

const (
	// PeriodDay covers the current calendar day.
	PeriodDay PeriodKind = iota
	// PeriodWeek covers the current week, starting Sunday.
	PeriodWeek
	// PeriodMonth covers the current calendar month.
	PeriodMonth
)

// CategoryAmount is one row of a period breakdown.
type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
}

// PeriodSummary aggregates the rows falling inside a period.
type PeriodSummary struct {
	Income    decimal.Decimal
	Expense   decimal.Decimal
	Balance   decimal.Decimal
	Breakdown []CategoryAmount
	Count     int
}

// Period filters rows whose stored date falls in the period containing now
// and aggregates them. Rows whose date cell does not parse in the expected
// day-first format are skipped, not errors. The breakdown lists the top 5
// categories by summed amount, descending.
func Period(rows []model.Transaction, now time.Time, kind PeriodKind) PeriodSummary {
	var summary PeriodSummary
	byCategory := make(map[string]decimal.Decimal)

	for _, row := range rows {
		date, ok := model.ParseDisplayDate(row.Date)
		if !ok || !inPeriod(date, now, kind) {
			continue
		}

		summary.Count++
		switch row.Kind {
		case model.KindIncome:
			summary.Income = summary.Income.Add(row.Amount)
		case model.KindExpense:
			summary.Expense = summary.Expense.Add(row.Amount)
		}
		byCategory[row.Category] = byCategory[row.Category].Add(row.Amount)
	}

	summary.Balance = summary.Income.Sub(summary.Expense)

	for category, amount := range byCategory {
		summary.Breakdown = append(summary.Breakdown, CategoryAmount{Category: category, Amount: amount})
	}
	sort.Slice(summary.Breakdown, func(i, j int) bool {
		if !summary.Breakdown[i].Amount.Equal(summary.Breakdown[j].Amount) {
			return summary.Breakdown[i].Amount.GreaterThan(summary.Breakdown[j].Amount)
		}
		return summary.Breakdown[i].Category < summary.Breakdown[j].Category
	})
	if len(summary.Breakdown) > 5 {
		summary.Breakdown = summary.Breakdown[:5]
	}

	return summary
}

func inPeriod(date, now time.Time, kind PeriodKind) bool {
	loc := model.DisplayTimezone()
	date, now = date.In(loc), now.In(loc)
	switch kind {
	case PeriodDay:
		return model.SameDay(date, now)
	case PeriodWeek:
		start := model.WeekStart(now)
		return !date.Before(start) && date.Before(start.AddDate(0, 0, 7))
	case PeriodMonth:
		return date.Year() == now.Year() && date.Month() == now.Month()
	}
	return false
}

// Stats is the quick aggregate behind the .stats command.
type Stats struct {
	Income     decimal.Decimal
	Expense    decimal.Decimal
	Balance    decimal.Decimal
	Count      int
	TodayCount int
}

// Quick computes the .stats aggregate.
func Quick(rows []model.Transaction, now time.Time) Stats {
	totals := Sum(rows)
	stats := Stats{
		Income:  totals.Income,
		Expense: totals.Expense,
		Balance: totals.Balance,
		Count:   len(rows),
	}
	for _, row := range rows {
		if date, ok := model.ParseDisplayDate(row.Date); ok && model.SameDay(date, now) {
			stats.TodayCount++
		}
	}
	return stats
}

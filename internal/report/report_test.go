package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danuwira/duitbot/internal/model"
)

func tx(date string, kind model.Kind, category string, amount int64, note string) model.Transaction {
	return model.Transaction{
		Date:     date,
		Kind:     kind,
		Category: category,
		Amount:   decimal.NewFromInt(amount),
		Note:     note,
	}
}

func TestSum(t *testing.T) {
	t.Run("empty ledger", func(t *testing.T) {
		totals := Sum(nil)
		assert.True(t, totals.Income.IsZero())
		assert.True(t, totals.Expense.IsZero())
		assert.True(t, totals.Balance.IsZero())
	})

	t.Run("balance equals income minus expense", func(t *testing.T) {
		rows := []model.Transaction{
			tx("01/08/2026 09.00", model.KindIncome, "Gaji", 500000, "gaji"),
			tx("02/08/2026 12.00", model.KindExpense, "Makan", 25000, "makan siang"),
			tx("03/08/2026 12.00", model.KindExpense, "Tagihan", 100000, "listrik"),
		}
		totals := Sum(rows)
		assert.Equal(t, "500000", totals.Income.String())
		assert.Equal(t, "125000", totals.Expense.String())
		assert.Equal(t, "375000", totals.Balance.String())
		assert.True(t, totals.Balance.Equal(totals.Income.Sub(totals.Expense)))
	})

	t.Run("malformed amount contributes zero", func(t *testing.T) {
		rows := []model.Transaction{
			tx("01/08/2026 09.00", model.KindIncome, "Gaji", 500000, "gaji"),
			{Date: "02/08/2026 10.00", Kind: model.KindExpense, Category: "Makan", Amount: model.LenientAmount("rusak"), Note: "bad row"},
		}
		totals := Sum(rows)
		assert.Equal(t, "500000", totals.Balance.String())
	})

	t.Run("unknown kind ignored", func(t *testing.T) {
		rows := []model.Transaction{
			{Kind: model.Kind("Transfer"), Amount: decimal.NewFromInt(999)},
		}
		assert.True(t, Sum(rows).Balance.IsZero())
	})
}

func TestRecent(t *testing.T) {
	rows := []model.Transaction{
		tx("01/08/2026 09.00", model.KindIncome, "Gaji", 500000, "oldest"),
		tx("02/08/2026 09.00", model.KindExpense, "Makan", 25000, "middle"),
		tx("03/08/2026 09.00", model.KindExpense, "Tagihan", 100000, "newest"),
	}

	entries := Recent(rows, 2)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Number)
	assert.Equal(t, 3, entries[0].Ordinal)
	assert.Equal(t, "newest", entries[0].Tx.Note)
	assert.Equal(t, 2, entries[1].Number)
	assert.Equal(t, "middle", entries[1].Tx.Note)

	// Asking for more than exists returns everything.
	assert.Len(t, Recent(rows, 10), 3)
	assert.Empty(t, Recent(nil, 10))
}

func TestOrdinalForNumber(t *testing.T) {
	assert.Equal(t, 3, OrdinalForNumber(1, 3))
	assert.Equal(t, 1, OrdinalForNumber(3, 3))
	assert.Equal(t, 0, OrdinalForNumber(0, 3))
	assert.Equal(t, 0, OrdinalForNumber(4, 3))
	assert.Equal(t, 0, OrdinalForNumber(1, 0))
}

func TestSearch(t *testing.T) {
	rows := []model.Transaction{
		tx("01/08/2026 09.00", model.KindIncome, "Gaji", 500000, "Gaji bulan Agustus"),
		tx("02/08/2026 09.00", model.KindExpense, "Makan", 25000, "nasi goreng"),
		tx("03/08/2026 09.00", model.KindExpense, "Tagihan", 100000, "listrik"),
	}

	result := Search(rows, "gaji")
	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "Gaji bulan Agustus", result.Matches[0].Note)

	// Category names also match.
	result = Search(rows, "makan")
	assert.Equal(t, 1, result.Total)

	result = Search(rows, "tidakada")
	assert.Zero(t, result.Total)
	assert.Empty(t, result.Matches)
}

func TestSearchCap(t *testing.T) {
	rows := make([]model.Transaction, 0, 15)
	for i := 0; i < 15; i++ {
		rows = append(rows, tx("01/08/2026 09.00", model.KindExpense, "Makan", 10000, "bakso"))
	}

	result := Search(rows, "bakso")
	assert.Equal(t, 15, result.Total)
	assert.Len(t, result.Matches, MatchLimit)
	assert.Equal(t, 5, result.Remaining)
}

func TestByCategory(t *testing.T) {
	rows := []model.Transaction{
		tx("01/08/2026 09.00", model.KindExpense, "Makan", 25000, "a"),
		tx("02/08/2026 09.00", model.KindExpense, "Makan", 30000, "b"),
		tx("03/08/2026 09.00", model.KindExpense, "Tagihan", 100000, "c"),
	}

	result := ByCategory(rows, "makan")
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, "55000", result.Subtotal.String())

	// Substrings do not match; the comparison is exact.
	result = ByCategory(rows, "mak")
	assert.Zero(t, result.Total)
}

func TestPeriod(t *testing.T) {
	loc := model.DisplayTimezone()
	// Saturday 2026-08-29; week runs Sunday 23rd through Saturday 29th.
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, loc)

	rows := []model.Transaction{
		tx("29/08/2026 09.00", model.KindExpense, "Makan", 25000, "today"),
		tx("25/08/2026 09.00", model.KindExpense, "Transportasi", 15000, "this week"),
		tx("22/08/2026 09.00", model.KindIncome, "Gaji", 500000, "last week, this month"),
		tx("10/07/2026 09.00", model.KindExpense, "Tagihan", 99000, "last month"),
		{Date: "not a date", Kind: model.KindExpense, Category: "Makan", Amount: decimal.NewFromInt(7000)},
	}

	day := Period(rows, now, PeriodDay)
	assert.Equal(t, 1, day.Count)
	assert.Equal(t, "25000", day.Expense.String())

	week := Period(rows, now, PeriodWeek)
	assert.Equal(t, 2, week.Count)
	assert.Equal(t, "40000", week.Expense.String())
	assert.True(t, week.Income.IsZero())

	month := Period(rows, now, PeriodMonth)
	assert.Equal(t, 3, month.Count)
	assert.Equal(t, "500000", month.Income.String())
	assert.Equal(t, "40000", month.Expense.String())
	assert.Equal(t, "460000", month.Balance.String())

	// Breakdown is sorted by amount descending.
	require.NotEmpty(t, month.Breakdown)
	assert.Equal(t, "Gaji", month.Breakdown[0].Category)
}

func TestPeriodEmptyResult(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, model.DisplayTimezone())
	summary := Period(nil, now, PeriodDay)
	assert.Zero(t, summary.Count)
	assert.True(t, summary.Balance.IsZero())
	assert.Empty(t, summary.Breakdown)
}

func TestPeriodBreakdownTopFive(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, model.DisplayTimezone())
	categories := []string{"Makan", "Transportasi", "Belanja", "Tagihan", "Hiburan", "Kesehatan", "Pendidikan"}
	rows := make([]model.Transaction, 0, len(categories))
	for i, c := range categories {
		rows = append(rows, tx("29/08/2026 09.00", model.KindExpense, c, int64((i+1)*1000), c))
	}

	summary := Period(rows, now, PeriodDay)
	require.Len(t, summary.Breakdown, 5)
	assert.Equal(t, "Pendidikan", summary.Breakdown[0].Category)
	assert.Equal(t, "7000", summary.Breakdown[0].Amount.String())
	assert.Equal(t, "Belanja", summary.Breakdown[4].Category)
}

func TestQuick(t *testing.T) {
	loc := model.DisplayTimezone()
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, loc)

	rows := []model.Transaction{
		tx("29/08/2026 09.00", model.KindExpense, "Makan", 25000, "today"),
		tx("28/08/2026 09.00", model.KindIncome, "Gaji", 500000, "yesterday"),
	}

	stats := Quick(rows, now)
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, 1, stats.TodayCount)
	assert.Equal(t, "475000", stats.Balance.String())
}

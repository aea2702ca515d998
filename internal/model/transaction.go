// Package model defines the core domain types shared across the application.
package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind distinguishes money coming in from money going out. The values are
// the exact strings stored in the ledger's Jenis column.
type Kind string

const (
	// KindIncome marks a transaction that adds to the balance.
	KindIncome Kind = "Pemasukan"
	// KindExpense marks a transaction that subtracts from the balance.
	KindExpense Kind = "Pengeluaran"
)

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// DefaultCategory is used when a ledger row has an empty category column.
const DefaultCategory = "Lainnya"

// Transaction represents a single ledger row. Amounts are always positive;
// the sign is carried by Kind. Date holds the display-formatted timestamp
// exactly as stored in the sheet.
type Transaction struct {
	Date     string
	Kind     Kind
	Category string
	Note     string
	Amount   decimal.Decimal
}

// Summary renders a one-line description used in confirmations and listings.
func (t Transaction) Summary() string {
	return fmt.Sprintf("%s | %s | %s | %s | %s",
		t.Date, t.Kind, t.Category, FormatRupiah(t.Amount), t.Note)
}

// IncomeCategories and ExpenseCategories are the fixed category lists per
// transaction kind. Entry input is validated against these case-insensitively.
var (
	IncomeCategories  = []string{"Gaji", "Bonus", "Usaha", "Investasi", "Hadiah", "Lainnya"}
	ExpenseCategories = []string{"Makan", "Transportasi", "Belanja", "Tagihan", "Hiburan", "Kesehatan", "Pendidikan", "Lainnya"}
)

// CategoriesFor returns the valid category list for the given kind.
func CategoriesFor(kind Kind) []string {
	if kind == KindIncome {
		return IncomeCategories
	}
	return ExpenseCategories
}

// MatchCategory resolves a user-typed category against the list for the
// given kind, case-insensitively. It returns the canonical spelling and
// whether a match was found.
func MatchCategory(kind Kind, input string) (string, bool) {
	for _, c := range CategoriesFor(kind) {
		if strings.EqualFold(c, input) {
			return c, true
		}
	}
	return "", false
}

// ParseAmount parses a user-entered amount. It accepts plain digits and an
// optional decimal point, and rejects anything that is not strictly positive.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("jumlah bukan angka: %q", s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("jumlah harus lebih dari nol: %q", s)
	}
	return d, nil
}

// LenientAmount parses a stored amount cell, treating anything malformed or
// empty as zero. Report aggregation must never fail on a bad row.
func LenientAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatRupiah renders an amount as "Rp 1.234.567" with dot-grouped
// thousands and no decimal places.
func FormatRupiah(d decimal.Decimal) string {
	s := d.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "Rp -" + b.String()
	}
	return "Rp " + b.String()
}

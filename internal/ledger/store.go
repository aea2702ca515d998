// Package ledger provides the transaction persistence contract and its
// Google Sheets implementation. The sheet is the sole owner of the data;
// nothing is cached across requests and every read is a full scan.
package ledger

import (
	"context"
	"fmt"

	"github.com/danuwira/duitbot/internal/model"
)

// Header is the required first row of the ledger sheet.
var Header = []string{"Tanggal", "Jenis", "Kategori", "Jumlah", "Keterangan"}

// Store is the ledger persistence contract. Ordinals are 1-based positions
// in sheet order: ordinal 1 is the oldest row. Ordinal identity is unstable
// when writes interleave; callers accept last-listing semantics.
type Store interface {
	// EnsureHeader creates or repairs the header row.
	EnsureHeader(ctx context.Context) error
	// Append adds one transaction at the bottom of the sheet.
	Append(ctx context.Context, tx model.Transaction) error
	// List returns every data row in sheet order.
	List(ctx context.Context) ([]model.Transaction, error)
	// Update overwrites the row at the given ordinal. Returns
	// common.ErrNotFound when the ordinal is out of range.
	Update(ctx context.Context, ordinal int, tx model.Transaction) error
	// Delete removes the row at the given ordinal. Returns
	// common.ErrNotFound when the ordinal is out of range.
	Delete(ctx context.Context, ordinal int) error
}

// FromRow converts a raw sheet row into a Transaction. Missing cells and
// malformed amounts degrade to zero values instead of failing: a bad row
// must never abort a report.
func FromRow(cells []any) model.Transaction {
	get := func(i int) string {
		if i >= len(cells) {
			return ""
		}
		s, _ := cells[i].(string)
		return s
	}

	category := get(2)
	if category == "" {
		category = model.DefaultCategory
	}

	return model.Transaction{
		Date:     get(0),
		Kind:     model.Kind(get(1)),
		Category: category,
		Amount:   model.LenientAmount(get(3)),
		Note:     get(4),
	}
}

// ToRow converts a Transaction into the sheet's column order.
func ToRow(tx model.Transaction) []any {
	return []any{
		tx.Date,
		string(tx.Kind),
		tx.Category,
		tx.Amount.String(),
		tx.Note,
	}
}

// ValidateOrdinal checks a 1-based ordinal against the row count.
func ValidateOrdinal(ordinal, count int) error {
	if ordinal < 1 || ordinal > count {
		return fmt.Errorf("transaksi nomor %d tidak ada (total %d)", ordinal, count)
	}
	return nil
}

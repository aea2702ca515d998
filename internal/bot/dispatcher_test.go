package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danuwira/duitbot/internal/common"
	"github.com/danuwira/duitbot/internal/ledger"
	"github.com/danuwira/duitbot/internal/model"
	"github.com/danuwira/duitbot/internal/session"
)

const sender = "whatsapp:+6281234567890"

func testClock() time.Time {
	return time.Date(2026, 8, 30, 14, 5, 0, 0, model.DisplayTimezone())
}

func newTestDispatcher(store *ledger.MockStore) (*Dispatcher, *session.MemoryStore) {
	sessions := session.NewMemoryStore(time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := NewDispatcher(store, sessions, logger).WithClock(testClock)
	return d, sessions
}

// resolve runs the deferred phase, if any, and returns the final message.
func resolve(t *testing.T, result Result) string {
	t.Helper()
	if result.Deferred == nil {
		return result.Reply
	}
	msg, _ := result.Deferred(context.Background())
	return msg
}

func seedRows() []model.Transaction {
	return []model.Transaction{
		{Date: "01/08/2026 09.00", Kind: model.KindIncome, Category: "Gaji", Amount: decimal.NewFromInt(500000), Note: "Gaji bulan Agustus"},
		{Date: "15/08/2026 12.00", Kind: model.KindExpense, Category: "Makan", Amount: decimal.NewFromInt(25000), Note: "nasi goreng"},
		{Date: "30/08/2026 08.00", Kind: model.KindExpense, Category: "Tagihan", Amount: decimal.NewFromInt(150000), Note: "listrik"},
	}
}

func TestIncomeEntryFlow(t *testing.T) {
	store := ledger.NewMockStore()
	d, sessions := newTestDispatcher(store)
	ctx := context.Background()

	result := d.Dispatch(ctx, sender, "1")
	assert.Contains(t, result.Reply, "Isi Pemasukan")
	assert.Contains(t, result.Reply, "Gaji")
	assert.Nil(t, result.Deferred)
	assert.Equal(t, session.StateAwaitingIncome, sessions.Get(sender).State)

	result = d.Dispatch(ctx, sender, "500000 Gaji Gaji bulan Januari")
	assert.Equal(t, msgProcessing, result.Reply)
	require.NotNil(t, result.Deferred)

	// Input accepted: state is already back to idle before the append runs.
	assert.Equal(t, session.StateIdle, sessions.Get(sender).State)

	msg, err := result.Deferred(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg, "Berhasil dicatat")
	assert.Contains(t, msg, "Rp 500.000")
	assert.Contains(t, msg, "Gaji bulan Januari")

	require.Len(t, store.Rows, 1)
	row := store.Rows[0]
	assert.Equal(t, model.KindIncome, row.Kind)
	assert.Equal(t, "Gaji", row.Category)
	assert.Equal(t, "500000", row.Amount.String())
	assert.Equal(t, "Gaji bulan Januari", row.Note)
	assert.Equal(t, "30/08/2026 14.05", row.Date)
}

func TestExpenseEntryFlow(t *testing.T) {
	store := ledger.NewMockStore()
	d, sessions := newTestDispatcher(store)
	ctx := context.Background()

	d.Dispatch(ctx, sender, "2")
	assert.Equal(t, session.StateAwaitingExpense, sessions.Get(sender).State)

	result := d.Dispatch(ctx, sender, "25000 makan Makan siang di warteg")
	msg := resolve(t, result)
	assert.Contains(t, msg, "Pengeluaran")

	require.Len(t, store.Rows, 1)
	assert.Equal(t, model.KindExpense, store.Rows[0].Kind)
	// Category is canonicalized, note keeps its original casing.
	assert.Equal(t, "Makan", store.Rows[0].Category)
	assert.Equal(t, "Makan siang di warteg", store.Rows[0].Note)
}

func TestEntryValidation(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantReply string
	}{
		{name: "too few tokens", input: "50000 Gaji", wantReply: "Format salah"},
		{name: "non-numeric amount", input: "banyak Gaji catatan", wantReply: "angka"},
		{name: "zero amount", input: "0 Gaji catatan", wantReply: "angka"},
		{name: "negative amount", input: "-500 Gaji catatan", wantReply: "angka"},
		{name: "unknown category", input: "50000 Bensin catatan", wantReply: "Kategori tidak dikenali"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := ledger.NewMockStore()
			d, sessions := newTestDispatcher(store)
			ctx := context.Background()

			d.Dispatch(ctx, sender, "1")
			result := d.Dispatch(ctx, sender, tt.input)

			assert.Contains(t, result.Reply, tt.wantReply)
			assert.Nil(t, result.Deferred)
			// Malformed input keeps the sender in the flow and never writes.
			assert.Equal(t, session.StateAwaitingIncome, sessions.Get(sender).State)
			assert.Zero(t, store.AppendCalls)
		})
	}
}

func TestEntryStoreFailureClearsState(t *testing.T) {
	store := ledger.NewMockStore()
	store.AppendFunc = func(context.Context, model.Transaction) error {
		return errors.New("sheets down")
	}
	d, sessions := newTestDispatcher(store)
	ctx := context.Background()

	d.Dispatch(ctx, sender, "1")
	result := d.Dispatch(ctx, sender, "50000 Gaji catatan")

	msg, err := result.Deferred(ctx)
	require.Error(t, err)
	assert.Empty(t, msg)
	// The transport reads the apology off the error itself.
	assert.Equal(t, MsgUpstreamError, common.UserMessage(err, "fallback"))
	assert.Equal(t, session.StateIdle, sessions.Get(sender).State)
}

func TestMenuResetsAnyState(t *testing.T) {
	ctx := context.Background()

	states := []session.Session{
		{State: session.StateAwaitingIncome},
		{State: session.StateAwaitingExpense},
		{State: session.StateEditing, EditOrdinal: 2, EditKind: string(model.KindExpense)},
		{State: session.StateIdle},
	}

	for _, initial := range states {
		store := ledger.NewMockStore(seedRows()...)
		d, sessions := newTestDispatcher(store)
		sessions.Set(sender, initial)

		result := d.Dispatch(ctx, sender, ".menu")
		assert.Equal(t, msgMenu, result.Reply)
		assert.Nil(t, result.Deferred)
		assert.Equal(t, session.StateIdle, sessions.Get(sender).State)
	}
}

func TestGreetingAliases(t *testing.T) {
	store := ledger.NewMockStore()
	d, _ := newTestDispatcher(store)
	ctx := context.Background()

	for _, greeting := range []string{"halo", "Hai", "MENU", "hello"} {
		result := d.Dispatch(ctx, sender, greeting)
		assert.Equal(t, msgMenu, result.Reply, "greeting %q", greeting)
	}

	result := d.Dispatch(ctx, sender, ".bantuan")
	assert.Equal(t, msgHelp, result.Reply)
}

func TestTotalsReportEmptyStore(t *testing.T) {
	store := ledger.NewMockStore()
	d, _ := newTestDispatcher(store)

	result := d.Dispatch(context.Background(), sender, "3")
	msg := resolve(t, result)
	assert.Contains(t, msg, "Total Pemasukan: Rp 0")
	assert.Contains(t, msg, "Total Pengeluaran: Rp 0")
	assert.Contains(t, msg, "Total Uang Sekarang: Rp 0")
}

func TestTotalsReport(t *testing.T) {
	store := ledger.NewMockStore(seedRows()...)
	d, _ := newTestDispatcher(store)

	msg := resolve(t, d.Dispatch(context.Background(), sender, "3"))
	assert.Contains(t, msg, "Total Pemasukan: Rp 500.000")
	assert.Contains(t, msg, "Total Pengeluaran: Rp 175.000")
	assert.Contains(t, msg, "Rp 325.000")
}

func TestRecentListing(t *testing.T) {
	store := ledger.NewMockStore(seedRows()...)
	d, _ := newTestDispatcher(store)
	ctx := context.Background()

	for _, command := range []string{"4", ".terakhir"} {
		msg := resolve(t, d.Dispatch(ctx, sender, command))
		assert.Contains(t, msg, "Transaksi Terakhir")
		// Number 1 is the most recent row.
		assert.Contains(t, msg, "*1*. 30/08/2026 08.00")
		assert.Contains(t, msg, "listrik")
		assert.Contains(t, msg, ".hapus")
		assert.Contains(t, msg, ".edit")
	}
}

func TestRecentListingEmpty(t *testing.T) {
	store := ledger.NewMockStore()
	d, _ := newTestDispatcher(store)
	msg := resolve(t, d.Dispatch(context.Background(), sender, "4"))
	assert.Equal(t, msgEmptyLedger, msg)
}

func TestSearch(t *testing.T) {
	store := ledger.NewMockStore(seedRows()...)
	d, _ := newTestDispatcher(store)
	ctx := context.Background()

	msg := resolve(t, d.Dispatch(ctx, sender, ".cari gaji"))
	assert.Contains(t, msg, "1 transaksi")
	assert.Contains(t, msg, "Gaji bulan Agustus")

	msg = resolve(t, d.Dispatch(ctx, sender, ".cari tidakada"))
	assert.Contains(t, msg, "Tidak ada transaksi")

	// Empty keyword prompts for one without touching the store.
	listCalls := store.ListCalls
	result := d.Dispatch(ctx, sender, ".cari")
	assert.Equal(t, msgSearchPrompt, result.Reply)
	assert.Nil(t, result.Deferred)
	assert.Equal(t, listCalls, store.ListCalls)
}

func TestCategoryFilter(t *testing.T) {
	store := ledger.NewMockStore(seedRows()...)
	d, _ := newTestDispatcher(store)
	ctx := context.Background()

	msg := resolve(t, d.Dispatch(ctx, sender, ".kategori makan"))
	assert.Contains(t, msg, "1 transaksi")
	assert.Contains(t, msg, "Subtotal: Rp 25.000")

	msg = resolve(t, d.Dispatch(ctx, sender, ".kategori Investasi"))
	assert.Contains(t, msg, "Tidak ada transaksi")
}

func TestDelete(t *testing.T) {
	store := ledger.NewMockStore(seedRows()...)
	d, _ := newTestDispatcher(store)
	ctx := context.Background()

	// Number 1 is the most recent row ("listrik").
	msg := resolve(t, d.Dispatch(ctx, sender, ".hapus 1"))
	assert.Contains(t, msg, "dihapus")
	assert.Contains(t, msg, "listrik")
	require.Len(t, store.Rows, 2)
	assert.Equal(t, "nasi goreng", store.Rows[1].Note)
}

func TestDeleteOutOfRange(t *testing.T) {
	store := ledger.NewMockStore(seedRows()...)
	d, _ := newTestDispatcher(store)
	ctx := context.Background()

	msg := resolve(t, d.Dispatch(ctx, sender, ".hapus 9"))
	assert.Contains(t, msg, "tidak ditemukan")
	assert.Len(t, store.Rows, 3)
	assert.Zero(t, store.DeleteCalls)
}

func TestDeleteNonNumeric(t *testing.T) {
	store := ledger.NewMockStore(seedRows()...)
	d, _ := newTestDispatcher(store)

	result := d.Dispatch(context.Background(), sender, ".hapus abc")
	assert.Contains(t, result.Reply, "angka")
	assert.Nil(t, result.Deferred)
	assert.Len(t, store.Rows, 3)
}

func TestEditFlow(t *testing.T) {
	store := ledger.NewMockStore(seedRows()...)
	d, sessions := newTestDispatcher(store)
	ctx := context.Background()

	// Number 2 is the middle row ("nasi goreng", sheet ordinal 2).
	result := d.Dispatch(ctx, sender, ".edit 2")
	msg, err := result.Deferred(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg, "nasi goreng")
	assert.Contains(t, msg, "nilai pengganti")

	sess := sessions.Get(sender)
	assert.Equal(t, session.StateEditing, sess.State)
	assert.Equal(t, 2, sess.EditOrdinal)
	assert.Equal(t, string(model.KindExpense), sess.EditKind)

	result = d.Dispatch(ctx, sender, "30000 Makan nasi padang")
	msg, err = result.Deferred(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg, "berhasil diubah")

	assert.Equal(t, session.StateIdle, sessions.Get(sender).State)
	require.Len(t, store.Rows, 3)
	updated := store.Rows[1]
	assert.Equal(t, "30000", updated.Amount.String())
	assert.Equal(t, "nasi padang", updated.Note)
	// Edits keep the original date of the row.
	assert.Equal(t, "15/08/2026 12.00", updated.Date)
}

func TestEditMalformedInputClearsState(t *testing.T) {
	store := ledger.NewMockStore(seedRows()...)
	d, sessions := newTestDispatcher(store)
	ctx := context.Background()

	resolve(t, d.Dispatch(ctx, sender, ".edit 1"))
	require.Equal(t, session.StateEditing, sessions.Get(sender).State)

	result := d.Dispatch(ctx, sender, "bukan angka")
	assert.Contains(t, result.Reply, "Format salah")
	// Editing gives up on malformed input instead of holding the row.
	assert.Equal(t, session.StateIdle, sessions.Get(sender).State)
	assert.Zero(t, store.UpdateCalls)
}

func TestEditOutOfRange(t *testing.T) {
	store := ledger.NewMockStore(seedRows()...)
	d, sessions := newTestDispatcher(store)
	ctx := context.Background()

	msg := resolve(t, d.Dispatch(ctx, sender, ".edit 7"))
	assert.Contains(t, msg, "tidak ditemukan")
	assert.Equal(t, session.StateIdle, sessions.Get(sender).State)
}

func TestPeriodReports(t *testing.T) {
	store := ledger.NewMockStore(seedRows()...)
	d, _ := newTestDispatcher(store)
	ctx := context.Background()

	// The clock reads 30/08/2026; only the "listrik" row is from today.
	msg := resolve(t, d.Dispatch(ctx, sender, ".hari"))
	assert.Contains(t, msg, "Laporan Hari Ini")
	assert.Contains(t, msg, "Jumlah transaksi: 1")
	assert.Contains(t, msg, "Tagihan")

	msg = resolve(t, d.Dispatch(ctx, sender, ".bulan"))
	assert.Contains(t, msg, "Laporan Bulan Ini")
	assert.Contains(t, msg, "Jumlah transaksi: 3")
	assert.Contains(t, msg, "Pemasukan: Rp 500.000")
}

func TestPeriodReportEmpty(t *testing.T) {
	store := ledger.NewMockStore()
	d, _ := newTestDispatcher(store)
	msg := resolve(t, d.Dispatch(context.Background(), sender, ".minggu"))
	assert.Equal(t, msgEmptyPeriod, msg)
}

func TestStats(t *testing.T) {
	store := ledger.NewMockStore(seedRows()...)
	d, _ := newTestDispatcher(store)

	msg := resolve(t, d.Dispatch(context.Background(), sender, ".stats"))
	assert.Contains(t, msg, "Jumlah transaksi: 3")
	assert.Contains(t, msg, "Transaksi hari ini: 1")
	assert.Contains(t, msg, "Saldo: Rp 325.000")
}

func TestExport(t *testing.T) {
	store := ledger.NewMockStore(seedRows()...)
	d, _ := newTestDispatcher(store)

	msg := resolve(t, d.Dispatch(context.Background(), sender, ".export"))
	assert.Contains(t, msg, "3 baris")
	assert.Contains(t, msg, "Gaji bulan Agustus")
	assert.Contains(t, msg, "listrik")
	assert.Contains(t, msg, "Saldo: Rp 325.000")
}

func TestUnknownCommand(t *testing.T) {
	store := ledger.NewMockStore()
	d, _ := newTestDispatcher(store)

	for _, input := range []string{"apa ini", "5", ".tidakada", ""} {
		result := d.Dispatch(context.Background(), sender, input)
		assert.Equal(t, msgUnknown, result.Reply, "input %q", input)
		assert.Nil(t, result.Deferred)
	}
}

func TestListFailureDuringQuery(t *testing.T) {
	store := ledger.NewMockStore()
	store.ListFunc = func(context.Context) ([]model.Transaction, error) {
		return nil, errors.New("sheets down")
	}
	d, _ := newTestDispatcher(store)

	result := d.Dispatch(context.Background(), sender, "3")
	msg, err := result.Deferred(context.Background())
	require.Error(t, err)
	assert.Empty(t, msg)
	assert.Equal(t, MsgUpstreamError, common.UserMessage(err, "fallback"))
}

func TestParseEntryValidationErrors(t *testing.T) {
	d, _ := newTestDispatcher(ledger.NewMockStore())

	tests := []struct {
		name      string
		input     string
		wantReply string
	}{
		{name: "too few tokens", input: "50000 Gaji", wantReply: "Format salah"},
		{name: "bad amount", input: "banyak Gaji catatan", wantReply: "angka"},
		{name: "unknown category", input: "50000 Bensin catatan", wantReply: "Kategori tidak dikenali"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.parseEntry(tt.input, model.KindIncome)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrValidation)
			assert.Contains(t, common.UserMessage(err, ""), tt.wantReply)
		})
	}
}

package bot

import (
	"fmt"
	"strings"

	"github.com/danuwira/duitbot/internal/model"
	"github.com/danuwira/duitbot/internal/report"
)

// Fixed replies. The copy mirrors the tone of the WhatsApp bot this service
// grew out of: short Indonesian messages with WhatsApp *bold* markers.
const (
	msgMenu = "Selamat datang di Bot Keuangan! 👋\n\n" +
		"Silakan pilih menu:\n" +
		"*1*. Isi Pemasukan 💰\n" +
		"*2*. Isi Pengeluaran 💸\n" +
		"*3*. Tampilkan Laporan 📊\n" +
		"*4*. Transaksi Terakhir 🧾\n\n" +
		"Perintah lain:\n" +
		"`.cari <kata>` : cari transaksi\n" +
		"`.kategori <nama>` : filter per kategori\n" +
		"`.hari` / `.minggu` / `.bulan` : laporan periode\n" +
		"`.stats` : ringkasan cepat\n" +
		"`.export` : semua transaksi\n" +
		"`.hapus <n>` / `.edit <n>` : hapus/ubah transaksi\n" +
		"`.bantuan` : bantuan"

	msgHelp = "Bantuan Bot Keuangan 📖\n\n" +
		"Ketik *1* lalu kirim `<jumlah> <kategori> <keterangan>` untuk mencatat pemasukan.\n" +
		"Ketik *2* untuk pengeluaran dengan format yang sama.\n" +
		"Contoh: `500000 Gaji Gaji bulan Januari`\n\n" +
		"Ketik `.menu` kapan saja untuk kembali ke menu utama."

	msgUnknown = "Perintah tidak dikenali. Ketik `.menu` untuk melihat pilihan yang tersedia."

	msgProcessing = "⏳ Sedang diproses..."

	// MsgUpstreamError is the generic apology for failed operations. The
	// transport falls back to it when an error carries no chat-safe message.
	MsgUpstreamError = "Maaf, terjadi kesalahan di pihak server. 😔"

	msgEmptyLedger = "Belum ada transaksi yang tercatat."

	msgEmptyPeriod = "Tidak ada transaksi pada periode ini."

	msgSearchPrompt = "Masukkan kata kunci pencarian. Contoh: `.cari gaji`"
)

func categoryLine(kind model.Kind) string {
	return strings.Join(model.CategoriesFor(kind), ", ")
}

func entryInstructions(kind model.Kind) string {
	title, example := "Isi Pemasukan 💰", "`500000 Gaji Gaji bulan Januari`"
	if kind == model.KindExpense {
		title, example = "Isi Pengeluaran 💸", "`25000 Makan Makan siang di warteg`"
	}
	return fmt.Sprintf("Anda memilih *%s*.\n\n"+
		"Silakan kirim dengan format:\n`<jumlah> <kategori> <keterangan>`\n\n"+
		"Kategori: %s\n\nContoh: %s", title, categoryLine(kind), example)
}

func formatError(kind model.Kind) string {
	return fmt.Sprintf("Format salah. Kirim dengan format:\n`<jumlah> <kategori> <keterangan>`\n\n"+
		"Kategori: %s", categoryLine(kind))
}

func amountError() string {
	return "Jumlah harus berupa angka lebih dari nol.\nContoh: `50000 Makan Makan siang`"
}

func categoryError(kind model.Kind) string {
	return fmt.Sprintf("Kategori tidak dikenali. Pilih salah satu:\n%s", categoryLine(kind))
}

func confirmation(tx model.Transaction) string {
	return fmt.Sprintf("✅ Berhasil dicatat:\n*%s:* %s\nKategori: %s\nKeterangan: %s\nTanggal: %s",
		tx.Kind, model.FormatRupiah(tx.Amount), tx.Category, tx.Note, tx.Date)
}

func updateConfirmation(number int, tx model.Transaction) string {
	return fmt.Sprintf("✅ Transaksi nomor %d berhasil diubah:\n*%s:* %s\nKategori: %s\nKeterangan: %s",
		number, tx.Kind, model.FormatRupiah(tx.Amount), tx.Category, tx.Note)
}

func totalsReport(t report.Totals) string {
	return fmt.Sprintf("Laporan Keuangan Anda 📊\n\n"+
		"Total Pemasukan: %s\nTotal Pengeluaran: %s\n\n"+
		"*Total Uang Sekarang: %s*",
		model.FormatRupiah(t.Income), model.FormatRupiah(t.Expense), model.FormatRupiah(t.Balance))
}

func recentList(entries []report.Entry) string {
	if len(entries) == 0 {
		return msgEmptyLedger
	}
	var b strings.Builder
	b.WriteString("Transaksi Terakhir 🧾\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "\n*%d*. %s", e.Number, e.Tx.Summary())
	}
	b.WriteString("\n\nKetik `.hapus <nomor>` atau `.edit <nomor>` untuk mengubah.")
	return b.String()
}

func searchReport(keyword string, result report.SearchResult) string {
	if result.Total == 0 {
		return fmt.Sprintf("Tidak ada transaksi yang cocok dengan %q.", keyword)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hasil pencarian %q (%d transaksi):\n", keyword, result.Total)
	for i, tx := range result.Matches {
		fmt.Fprintf(&b, "\n*%d*. %s", i+1, tx.Summary())
	}
	if result.Remaining > 0 {
		fmt.Fprintf(&b, "\n\n...dan %d transaksi lainnya.", result.Remaining)
	}
	return b.String()
}

func categoryReport(name string, result report.CategoryResult) string {
	if result.Total == 0 {
		return fmt.Sprintf("Tidak ada transaksi dengan kategori %q.", name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Kategori %q (%d transaksi):\n", name, result.Total)
	for i, tx := range result.Matches {
		fmt.Fprintf(&b, "\n*%d*. %s", i+1, tx.Summary())
	}
	if result.Remaining > 0 {
		fmt.Fprintf(&b, "\n\n...dan %d transaksi lainnya.", result.Remaining)
	}
	fmt.Fprintf(&b, "\n\n*Subtotal: %s*", model.FormatRupiah(result.Subtotal))
	return b.String()
}

func periodReport(title string, summary report.PeriodSummary) string {
	if summary.Count == 0 {
		return msgEmptyPeriod
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s 📊\n\n", title)
	fmt.Fprintf(&b, "Pemasukan: %s\n", model.FormatRupiah(summary.Income))
	fmt.Fprintf(&b, "Pengeluaran: %s\n", model.FormatRupiah(summary.Expense))
	fmt.Fprintf(&b, "Selisih: %s\n", model.FormatRupiah(summary.Balance))
	fmt.Fprintf(&b, "Jumlah transaksi: %d\n", summary.Count)
	if len(summary.Breakdown) > 0 {
		b.WriteString("\nKategori teratas:")
		for _, c := range summary.Breakdown {
			fmt.Fprintf(&b, "\n- %s: %s", c.Category, model.FormatRupiah(c.Amount))
		}
	}
	return b.String()
}

func statsReport(s report.Stats) string {
	return fmt.Sprintf("Statistik 📈\n\n"+
		"Total Pemasukan: %s\n"+
		"Total Pengeluaran: %s\n"+
		"Saldo: %s\n"+
		"Jumlah transaksi: %d\n"+
		"Transaksi hari ini: %d",
		model.FormatRupiah(s.Income), model.FormatRupiah(s.Expense),
		model.FormatRupiah(s.Balance), s.Count, s.TodayCount)
}

func exportReport(rows []model.Transaction) string {
	if len(rows) == 0 {
		return msgEmptyLedger
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Export Semua Transaksi (%d baris) 🗂\n", len(rows))
	for i, tx := range rows {
		fmt.Fprintf(&b, "\n%d. %s", i+1, tx.Summary())
	}
	totals := report.Sum(rows)
	fmt.Fprintf(&b, "\n\nTotal Pemasukan: %s\nTotal Pengeluaran: %s\n*Saldo: %s*",
		model.FormatRupiah(totals.Income), model.FormatRupiah(totals.Expense), model.FormatRupiah(totals.Balance))
	return b.String()
}

func deletedReport(number int, tx model.Transaction) string {
	return fmt.Sprintf("🗑 Transaksi nomor %d dihapus:\n%s", number, tx.Summary())
}

func notFoundReport(number int) string {
	return fmt.Sprintf("Transaksi nomor %d tidak ditemukan. Ketik *4* untuk melihat daftar terakhir.", number)
}

func editPrompt(number int, tx model.Transaction) string {
	return fmt.Sprintf("Mengubah transaksi nomor %d:\n%s\n\n"+
		"Kirim nilai pengganti dengan format `<jumlah> <kategori> <keterangan>`.\n"+
		"Kategori: %s",
		number, tx.Summary(), categoryLine(tx.Kind))
}

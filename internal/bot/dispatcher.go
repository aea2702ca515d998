// Package bot implements the conversational state machine that turns
// inbound chat messages into ledger operations and replies.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/danuwira/duitbot/internal/common"
	"github.com/danuwira/duitbot/internal/ledger"
	"github.com/danuwira/duitbot/internal/model"
	"github.com/danuwira/duitbot/internal/report"
	"github.com/danuwira/duitbot/internal/session"
)

// recentLimit is how many rows the recent-transactions listing shows.
const recentLimit = 10

// Result is the dispatcher's answer to one inbound message. Reply goes back
// inline in the webhook response. Deferred, when set, performs the actual
// ledger operation and produces a second message that the transport delivers
// with a proactive send. On failure Deferred returns an empty message and a
// common.UserError; the transport derives the outbound text from the error
// with common.UserMessage.
type Result struct {
	Deferred func(ctx context.Context) (string, error)
	Reply    string
	Command  string
}

// Dispatcher routes inbound messages based on per-sender conversation state.
type Dispatcher struct {
	store    ledger.Store
	sessions session.Store
	logger   *slog.Logger
	now      func() time.Time
}

// NewDispatcher creates a dispatcher. The clock defaults to time.Now and is
// injectable for tests.
func NewDispatcher(store ledger.Store, sessions session.Store, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:    store,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the dispatcher's clock.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Dispatch handles one inbound message. Text comparison is case-insensitive
// but the original casing is preserved for anything that ends up stored.
func (d *Dispatcher) Dispatch(_ context.Context, senderID, text string) Result {
	raw := strings.TrimSpace(text)
	lower := strings.ToLower(raw)

	// Hard interrupts work from every state.
	switch lower {
	case ".menu", "menu", "halo", "hai", "hi", "hello":
		d.sessions.Clear(senderID)
		return Result{Reply: msgMenu, Command: "menu"}
	case ".bantuan", ".help":
		d.sessions.Clear(senderID)
		return Result{Reply: msgHelp, Command: "help"}
	}

	sess := d.sessions.Get(senderID)
	switch sess.State {
	case session.StateAwaitingIncome:
		return d.handleEntry(senderID, raw, model.KindIncome)
	case session.StateAwaitingExpense:
		return d.handleEntry(senderID, raw, model.KindExpense)
	case session.StateEditing:
		return d.handleEditing(senderID, raw, sess)
	case session.StateIdle:
	}

	return d.handleIdle(senderID, raw, lower)
}

// handleEntry parses `<amount> <category> <note...>` while awaiting an
// income or expense entry. Malformed input never clears the state: the
// user stays in the flow and sees what was expected.
func (d *Dispatcher) handleEntry(senderID, raw string, kind model.Kind) Result {
	tx, err := d.parseEntry(raw, kind)
	if err != nil {
		return Result{Reply: common.UserMessage(err, MsgUpstreamError), Command: "entry_invalid"}
	}

	// Input accepted: the flow is done regardless of how the append goes.
	d.sessions.Clear(senderID)
	d.logger.Debug("accepted entry", "sender", senderID, "kind", kind, "category", tx.Category)

	return Result{
		Reply:   msgProcessing,
		Command: "entry",
		Deferred: func(ctx context.Context) (string, error) {
			if err := d.store.Append(ctx, tx); err != nil {
				return "", common.NewUserError(MsgUpstreamError, err)
			}
			return confirmation(tx), nil
		},
	}
}

// handleEditing parses the replacement values for the row being edited.
// Unlike the entry flow, editing state clears on every outcome so a failed
// edit never wedges the sender.
func (d *Dispatcher) handleEditing(senderID, raw string, sess session.Session) Result {
	d.sessions.Clear(senderID)

	kind := model.Kind(sess.EditKind)
	if !kind.Valid() {
		kind = model.KindExpense
	}

	tx, err := d.parseEntry(raw, kind)
	if err != nil {
		return Result{Reply: common.UserMessage(err, MsgUpstreamError), Command: "edit_invalid"}
	}

	ordinal := sess.EditOrdinal
	return Result{
		Reply:   msgProcessing,
		Command: "edit",
		Deferred: func(ctx context.Context) (string, error) {
			rows, err := d.store.List(ctx)
			if err != nil {
				return "", common.NewUserError(MsgUpstreamError, err)
			}
			if ledger.ValidateOrdinal(ordinal, len(rows)) != nil {
				return notFoundReport(ordinal), nil
			}

			// The replacement keeps the original row's date.
			tx.Date = rows[ordinal-1].Date

			if err := d.store.Update(ctx, ordinal, tx); err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return notFoundReport(ordinal), nil
				}
				return "", common.NewUserError(MsgUpstreamError, err)
			}
			number := report.OrdinalForNumber(ordinal, len(rows))
			return updateConfirmation(number, tx), nil
		},
	}
}

// parseEntry validates `<amount> <category> <note...>` and builds the
// transaction. Validation failures come back as a common.UserError wrapping
// common.ErrValidation; no store call happens before this passes.
func (d *Dispatcher) parseEntry(raw string, kind model.Kind) (model.Transaction, error) {
	tokens := strings.Fields(raw)
	if len(tokens) < 3 {
		return model.Transaction{}, common.NewUserError(formatError(kind), common.ErrValidation)
	}

	amount, err := model.ParseAmount(tokens[0])
	if err != nil {
		return model.Transaction{}, common.NewUserError(amountError(), fmt.Errorf("%w: %v", common.ErrValidation, err))
	}

	category, ok := model.MatchCategory(kind, tokens[1])
	if !ok {
		return model.Transaction{}, common.NewUserError(categoryError(kind), common.ErrValidation)
	}

	return model.Transaction{
		Date:     model.FormatDisplayDate(d.now()),
		Kind:     kind,
		Category: category,
		Amount:   amount,
		Note:     strings.Join(tokens[2:], " "),
	}, nil
}

func (d *Dispatcher) handleIdle(senderID, raw, lower string) Result {
	switch lower {
	case "1":
		d.sessions.Set(senderID, session.Session{State: session.StateAwaitingIncome})
		return Result{Reply: entryInstructions(model.KindIncome), Command: "begin_income"}
	case "2":
		d.sessions.Set(senderID, session.Session{State: session.StateAwaitingExpense})
		return Result{Reply: entryInstructions(model.KindExpense), Command: "begin_expense"}
	case "3":
		return d.queryResult("report", func(rows []model.Transaction) string {
			return totalsReport(report.Sum(rows))
		})
	case "4", ".terakhir":
		return d.queryResult("recent", func(rows []model.Transaction) string {
			return recentList(report.Recent(rows, recentLimit))
		})
	case ".hari":
		return d.periodResult("Laporan Hari Ini", report.PeriodDay)
	case ".minggu":
		return d.periodResult("Laporan Minggu Ini", report.PeriodWeek)
	case ".bulan":
		return d.periodResult("Laporan Bulan Ini", report.PeriodMonth)
	case ".stats":
		now := d.now()
		return d.queryResult("stats", func(rows []model.Transaction) string {
			return statsReport(report.Quick(rows, now))
		})
	case ".export":
		return d.queryResult("export", exportReport)
	}

	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Result{Reply: msgUnknown, Command: "unknown"}
	}
	arg := strings.Join(fields[1:], " ")

	switch strings.ToLower(fields[0]) {
	case ".cari":
		if arg == "" {
			return Result{Reply: msgSearchPrompt, Command: "search_prompt"}
		}
		return d.queryResult("search", func(rows []model.Transaction) string {
			return searchReport(arg, report.Search(rows, arg))
		})
	case ".kategori":
		if arg == "" {
			return Result{Reply: "Format: `.kategori <nama>`. Contoh: `.kategori Makan`", Command: "category_prompt"}
		}
		return d.queryResult("category", func(rows []model.Transaction) string {
			return categoryReport(arg, report.ByCategory(rows, arg))
		})
	case ".hapus":
		number, err := strconv.Atoi(arg)
		if err != nil {
			return Result{Reply: "Nomor transaksi harus berupa angka. Contoh: `.hapus 1`", Command: "delete_invalid"}
		}
		return d.deleteResult(number)
	case ".edit":
		number, err := strconv.Atoi(arg)
		if err != nil {
			return Result{Reply: "Nomor transaksi harus berupa angka. Contoh: `.edit 1`", Command: "edit_invalid"}
		}
		return d.editResult(senderID, number)
	}

	return Result{Reply: msgUnknown, Command: "unknown"}
}

// queryResult wraps a read-only aggregation: list the ledger in the
// deferred phase, render with the given formatter.
func (d *Dispatcher) queryResult(command string, render func([]model.Transaction) string) Result {
	return Result{
		Reply:   msgProcessing,
		Command: command,
		Deferred: func(ctx context.Context) (string, error) {
			rows, err := d.store.List(ctx)
			if err != nil {
				return "", common.NewUserError(MsgUpstreamError, err)
			}
			return render(rows), nil
		},
	}
}

func (d *Dispatcher) periodResult(title string, kind report.PeriodKind) Result {
	now := d.now()
	return d.queryResult("period", func(rows []model.Transaction) string {
		return periodReport(title, report.Period(rows, now, kind))
	})
}

func (d *Dispatcher) deleteResult(number int) Result {
	return Result{
		Reply:   msgProcessing,
		Command: "delete",
		Deferred: func(ctx context.Context) (string, error) {
			rows, err := d.store.List(ctx)
			if err != nil {
				return "", common.NewUserError(MsgUpstreamError, err)
			}
			ordinal := report.OrdinalForNumber(number, len(rows))
			if ordinal == 0 {
				return notFoundReport(number), nil
			}
			removed := rows[ordinal-1]
			if err := d.store.Delete(ctx, ordinal); err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return notFoundReport(number), nil
				}
				return "", common.NewUserError(MsgUpstreamError, err)
			}
			return deletedReport(number, removed), nil
		},
	}
}

func (d *Dispatcher) editResult(senderID string, number int) Result {
	return Result{
		Reply:   msgProcessing,
		Command: "edit_begin",
		Deferred: func(ctx context.Context) (string, error) {
			rows, err := d.store.List(ctx)
			if err != nil {
				return "", common.NewUserError(MsgUpstreamError, err)
			}
			ordinal := report.OrdinalForNumber(number, len(rows))
			if ordinal == 0 {
				return notFoundReport(number), nil
			}
			row := rows[ordinal-1]
			d.sessions.Set(senderID, session.Session{
				State:       session.StateEditing,
				EditOrdinal: ordinal,
				EditKind:    string(row.Kind),
			})
			return editPrompt(number, row), nil
		},
	}
}
